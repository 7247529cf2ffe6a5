package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chatclone-backend/internal/middleware"
	"chatclone-backend/internal/models"
	"chatclone-backend/internal/services"
)

type chatService interface {
	Send(ctx context.Context, scope models.Scope, message string, model models.Model) string
	Transcript(ctx context.Context, scope models.Scope) []models.TranscriptEntry
	Clear(ctx context.Context, scope models.Scope)
}

type sessionStore interface {
	Save(w http.ResponseWriter, sess middleware.Session) error
}

type ChatHandler struct {
	chat         chatService
	sessions     sessionStore
	defaultModel models.Model
	newChatID    func() string
	logger       *zap.Logger
}

func NewChatHandler(chat chatService, sessions sessionStore, defaultModel models.Model, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:         chat,
		sessions:     sessions,
		defaultModel: defaultModel,
		newChatID:    services.NewChatID,
		logger:       logger,
	}
}

// Index returns the transcript of the open conversation, starting one when
// the session has none.
func (h *ChatHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := h.ensureChat(w, r)
	scope := models.Scope{UserID: sess.UserID, ChatID: sess.ChatID}

	entries := h.chat.Transcript(r.Context(), scope)
	writeJSON(w, http.StatusOK, models.TranscriptResponse{
		Conversations:        entries,
		SidebarConversations: services.GroupByDate(entries),
		CurrentChatID:        sess.ChatID,
		DefaultModel:         h.defaultModel,
	})
}

// SendMessage accepts {message, model} as JSON or form fields and replies
// with the formatted model response.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess := h.ensureChat(w, r)

	req, err := decodeChatRequest(r, h.defaultModel)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	scope := models.Scope{UserID: sess.UserID, ChatID: sess.ChatID}
	reply := h.chat.Send(r.Context(), scope, req.Message, req.Model)

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// ClearHistory deletes the user's turns; a chat_id in the body limits the
// deletion to that conversation.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	var req models.ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	sess := middleware.GetSession(r.Context())
	if sess.UserID != "" {
		h.chat.Clear(r.Context(), models.Scope{UserID: sess.UserID, ChatID: req.ChatID})
	}

	writeJSON(w, http.StatusOK, models.ActionResponse{Status: "success", Action: "clear_chat"})
}

// NewChat switches the session to a freshly minted conversation.
func (h *ChatHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	sess.ChatID = h.newChatID()
	h.saveSession(w, sess)

	writeJSON(w, http.StatusOK, models.ActionResponse{Status: "success", Action: "new_chat", ChatID: sess.ChatID})
}

// LoadChat returns the transcript of the chat in the URL and makes it the
// session's open conversation. Unknown ids yield an empty transcript.
func (h *ChatHandler) LoadChat(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	sess.ChatID = chi.URLParam(r, "chat_id")

	entries := h.chat.Transcript(r.Context(), models.Scope{UserID: sess.UserID, ChatID: sess.ChatID})
	h.saveSession(w, sess)

	writeJSON(w, http.StatusOK, models.ChatTranscriptResponse{Conversations: entries})
}

// Conversations returns the open conversation with its sidebar grouping.
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess.ChatID == "" {
		writeJSON(w, http.StatusOK, models.TranscriptResponse{
			Conversations:        []models.TranscriptEntry{},
			SidebarConversations: map[string][]models.TranscriptEntry{},
		})
		return
	}

	entries := h.chat.Transcript(r.Context(), models.Scope{UserID: sess.UserID, ChatID: sess.ChatID})
	writeJSON(w, http.StatusOK, models.TranscriptResponse{
		Conversations:        entries,
		SidebarConversations: services.GroupByDate(entries),
		CurrentChatID:        sess.ChatID,
	})
}

func (h *ChatHandler) ensureChat(w http.ResponseWriter, r *http.Request) middleware.Session {
	sess := middleware.GetSession(r.Context())
	if sess.ChatID == "" {
		sess.ChatID = h.newChatID()
		h.saveSession(w, sess)
	}
	return sess
}

// saveSession must run before the response body is written.
func (h *ChatHandler) saveSession(w http.ResponseWriter, sess middleware.Session) {
	if err := h.sessions.Save(w, sess); err != nil {
		h.logger.Error("failed to save session", zap.String("user_id", sess.UserID), zap.Error(err))
	}
}

// decodeChatRequest reads the message payload. Only an absent model field
// takes defaultModel; an explicit empty one is kept.
func decodeChatRequest(r *http.Request, defaultModel models.Model) (models.ChatRequest, error) {
	req := models.ChatRequest{Model: defaultModel}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Message string        `json:"message"`
			Model   *models.Model `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req, err
		}
		req.Message = body.Message
		if body.Model != nil {
			req.Model = *body.Model
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Message = r.PostFormValue("message")
	if model, ok := r.PostForm["model"]; ok && len(model) > 0 {
		req.Model = models.Model(model[0])
	}
	return req, nil
}
