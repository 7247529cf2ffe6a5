package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatclone-backend/internal/formatter"
	"chatclone-backend/internal/models"
	"chatclone-backend/internal/store"
)

// Publisher fans transcript events out to a user's open clients.
type Publisher interface {
	Publish(ctx context.Context, userID string, msg models.WSMessage)
}

type responder interface {
	Respond(ctx context.Context, model models.Model, prompt string) string
}

type ChatService struct {
	responder responder
	formatter *formatter.Formatter
	store     *store.Store
	publisher Publisher
	logger    *zap.Logger
}

func NewChatService(responder *Responder, f *formatter.Formatter, s *store.Store, publisher Publisher, logger *zap.Logger) *ChatService {
	return &ChatService{
		responder: responder,
		formatter: f,
		store:     s,
		publisher: publisher,
		logger:    logger,
	}
}

// Send generates a reply to message, formats it, persists the turn and
// returns the formatted reply. It always returns something renderable. The
// turn_saved event is only published for a turn that was stored.
func (c *ChatService) Send(ctx context.Context, scope models.Scope, message string, model models.Model) string {
	raw := c.responder.Respond(ctx, model, message)
	formatted := c.formatter.Format(raw)

	turn, ok := c.store.Save(ctx, scope, message, formatted, model)
	if ok && c.publisher != nil {
		c.publisher.Publish(ctx, scope.UserID, models.WSMessage{
			Type: models.WSTurnSaved,
			Payload: models.TurnSavedEvent{
				ChatID:        scope.ChatID,
				UserMessage:   message,
				ModelResponse: formatted,
				Model:         model,
				DateGroup:     turn.DateGroup,
			},
		})
	}

	return formatted
}

func (c *ChatService) Transcript(ctx context.Context, scope models.Scope) []models.TranscriptEntry {
	return c.store.LoadOrdered(ctx, scope)
}

func (c *ChatService) Clear(ctx context.Context, scope models.Scope) {
	c.store.Clear(ctx, scope)

	if c.publisher != nil {
		c.publisher.Publish(ctx, scope.UserID, models.WSMessage{
			Type:    models.WSChatCleared,
			Payload: models.ChatClearedEvent{ChatID: scope.ChatID},
		})
	}
}

// NewChatID mints an opaque identifier for a fresh conversation.
func NewChatID() string {
	return uuid.NewString()
}

// GroupByDate buckets entries by date group for the sidebar, keeping the
// transcript order inside each bucket.
func GroupByDate(entries []models.TranscriptEntry) map[string][]models.TranscriptEntry {
	groups := make(map[string][]models.TranscriptEntry)
	for _, e := range entries {
		groups[e.DateGroup] = append(groups[e.DateGroup], e)
	}
	return groups
}
