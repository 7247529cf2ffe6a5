package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chatclone-backend/internal/repository"
)

// OpenConversationRepo connects to the database named by databaseURL and
// returns the matching repository. postgres:// and postgresql:// URLs use
// PostgreSQL (with migrations applied); sqlite: and file: URLs use SQLite.
func OpenConversationRepo(ctx context.Context, databaseURL string, maxConns int, logger *zap.Logger) (repository.ConversationRepository, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pool, err := NewPostgresPool(ctx, databaseURL, maxConns)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return repository.NewPostgresConversationRepo(pool), nil

	case strings.HasPrefix(databaseURL, "sqlite:"), strings.HasPrefix(databaseURL, "file:"):
		db, err := OpenSQLite(sqlitePath(databaseURL))
		if err != nil {
			return nil, err
		}
		return repository.NewSQLiteConversationRepo(db), nil

	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", databaseURL)
	}
}

func sqlitePath(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "file:") {
		return databaseURL
	}
	return strings.TrimPrefix(databaseURL, "sqlite:")
}
