package repository

import (
	"context"

	"chatclone-backend/internal/models"
)

// ConversationRepository is the raw persistence boundary for turns. Every
// method reports failure through its error; callers decide how to degrade.
type ConversationRepository interface {
	Insert(ctx context.Context, turn *models.Turn) error
	ListByScope(ctx context.Context, scope models.Scope) ([]models.TranscriptEntry, error)
	DeleteByScope(ctx context.Context, scope models.Scope) (int64, error)
	Close()
}
