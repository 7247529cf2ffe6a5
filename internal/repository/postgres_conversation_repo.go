package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatclone-backend/internal/models"
)

type PostgresConversationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresConversationRepo(pool *pgxpool.Pool) *PostgresConversationRepo {
	return &PostgresConversationRepo{pool: pool}
}

func (r *PostgresConversationRepo) Insert(ctx context.Context, t *models.Turn) error {
	query := `INSERT INTO conversations (user_id, chat_id, user_message, gpt_response, date_group, model)
		VALUES ($1, $2, $3, $4, $5::date, $6) RETURNING id, timestamp`

	return r.pool.QueryRow(ctx, query,
		t.UserID, t.ChatID, t.UserMessage, t.ModelResponse, t.DateGroup, string(t.Model),
	).Scan(&t.ID, &t.Timestamp)
}

func (r *PostgresConversationRepo) ListByScope(ctx context.Context, scope models.Scope) ([]models.TranscriptEntry, error) {
	query := `SELECT user_message, gpt_response, date_group::text, chat_id
		FROM conversations WHERE user_id = $1`
	args := []interface{}{scope.UserID}

	if scope.HasChat() {
		query += " AND chat_id = $2"
		args = append(args, scope.ChatID)
	}
	query += " ORDER BY timestamp ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.TranscriptEntry, 0)
	for rows.Next() {
		var e models.TranscriptEntry
		if err := rows.Scan(&e.UserMessage, &e.ModelResponse, &e.DateGroup, &e.ChatID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresConversationRepo) DeleteByScope(ctx context.Context, scope models.Scope) (int64, error) {
	query := "DELETE FROM conversations WHERE user_id = $1"
	args := []interface{}{scope.UserID}

	if scope.HasChat() {
		query += " AND chat_id = $2"
		args = append(args, scope.ChatID)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresConversationRepo) Close() {
	r.pool.Close()
}
