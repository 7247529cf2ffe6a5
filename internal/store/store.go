// Package store is the conversation store: an append-only log of turns keyed
// by user and chat.
//
// Persistence failures never reach callers. Save and Clear degrade to no-ops
// and LoadOrdered to an empty transcript; each failure is logged and counted.
// Writes are best effort and nothing here serializes a Clear against a
// concurrent Save of the same scope.
package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatclone-backend/internal/metrics"
	"chatclone-backend/internal/models"
	"chatclone-backend/internal/repository"
)

type Store struct {
	repo   repository.ConversationRepository
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used to derive date groups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(repo repository.ConversationRepository, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the date group a turn saved now would get.
func (s *Store) Today() string {
	return s.now().Format(models.DateGroupLayout)
}

// Save appends one turn to scope and returns it with the date group it was
// stored under. The date group is frozen at call time. ok is false when the
// write failed; the failure has already been logged.
func (s *Store) Save(ctx context.Context, scope models.Scope, userMessage, modelResponse string, model models.Model) (turn models.Turn, ok bool) {
	turn = models.Turn{
		UserID:        scope.UserID,
		UserMessage:   userMessage,
		ModelResponse: modelResponse,
		Model:         model,
		DateGroup:     s.Today(),
	}
	if scope.HasChat() {
		chatID := scope.ChatID
		turn.ChatID = &chatID
	}

	if err := s.repo.Insert(ctx, &turn); err != nil {
		s.failed("save", scope, err)
		return turn, false
	}

	s.succeeded("save")
	s.logger.Debug("conversation saved",
		zap.Int64("id", turn.ID),
		zap.String("user_id", scope.UserID),
		zap.String("chat_id", scope.ChatID),
		zap.String("model", string(model)))
	return turn, true
}

// LoadOrdered returns the transcript of scope, oldest first.
func (s *Store) LoadOrdered(ctx context.Context, scope models.Scope) []models.TranscriptEntry {
	entries, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		s.failed("load", scope, err)
		return []models.TranscriptEntry{}
	}

	s.succeeded("load")
	return entries
}

// Clear deletes every turn of the user, or only those of the chat when the
// scope names one.
func (s *Store) Clear(ctx context.Context, scope models.Scope) {
	deleted, err := s.repo.DeleteByScope(ctx, scope)
	if err != nil {
		s.failed("clear", scope, err)
		return
	}

	s.succeeded("clear")
	s.logger.Info("conversations cleared",
		zap.String("user_id", scope.UserID),
		zap.String("chat_id", scope.ChatID),
		zap.Int64("deleted", deleted))
}

func (s *Store) failed(op string, scope models.Scope, err error) {
	metrics.StoreOperationsTotal.WithLabelValues(op, "error").Inc()
	s.logger.Error("conversation store operation failed",
		zap.String("operation", op),
		zap.String("user_id", scope.UserID),
		zap.String("chat_id", scope.ChatID),
		zap.Error(err))
}

func (s *Store) succeeded(op string) {
	metrics.StoreOperationsTotal.WithLabelValues(op, "ok").Inc()
}
