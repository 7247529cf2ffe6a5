package repository

import (
	"context"
	"database/sql"
	"time"

	"chatclone-backend/internal/models"
)

// SQLiteConversationRepo stores turns in a local SQLite file. Used for
// development and tests; production runs on PostgreSQL.
type SQLiteConversationRepo struct {
	db *sql.DB
}

func NewSQLiteConversationRepo(db *sql.DB) *SQLiteConversationRepo {
	return &SQLiteConversationRepo{db: db}
}

func (r *SQLiteConversationRepo) Insert(ctx context.Context, t *models.Turn) error {
	query := `INSERT INTO conversations (user_id, chat_id, user_message, gpt_response, date_group, model)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, timestamp`

	var ts string
	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.ChatID, t.UserMessage, t.ModelResponse, t.DateGroup, string(t.Model),
	).Scan(&t.ID, &ts)
	if err != nil {
		return err
	}

	t.Timestamp, err = parseSQLiteTimestamp(ts)
	return err
}

func (r *SQLiteConversationRepo) ListByScope(ctx context.Context, scope models.Scope) ([]models.TranscriptEntry, error) {
	query := `SELECT user_message, gpt_response, date_group, chat_id
		FROM conversations WHERE user_id = ?`
	args := []interface{}{scope.UserID}

	if scope.HasChat() {
		query += " AND chat_id = ?"
		args = append(args, scope.ChatID)
	}
	query += " ORDER BY timestamp ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.TranscriptEntry, 0)
	for rows.Next() {
		var (
			e      models.TranscriptEntry
			chatID sql.NullString
		)
		if err := rows.Scan(&e.UserMessage, &e.ModelResponse, &e.DateGroup, &chatID); err != nil {
			return nil, err
		}
		if chatID.Valid {
			e.ChatID = &chatID.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteConversationRepo) DeleteByScope(ctx context.Context, scope models.Scope) (int64, error) {
	query := "DELETE FROM conversations WHERE user_id = ?"
	args := []interface{}{scope.UserID}

	if scope.HasChat() {
		query += " AND chat_id = ?"
		args = append(args, scope.ChatID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteConversationRepo) Close() {
	r.db.Close()
}

// sqliteTimestampLayout matches the strftime format of the timestamp column
// default.
const sqliteTimestampLayout = "2006-01-02 15:04:05.000"

func parseSQLiteTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(sqliteTimestampLayout, value, time.UTC)
}
