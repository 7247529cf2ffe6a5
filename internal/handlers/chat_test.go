package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chatclone-backend/internal/middleware"
	"chatclone-backend/internal/models"
)

type sendCall struct {
	scope   models.Scope
	message string
	model   models.Model
}

type stubChatService struct {
	reply   string
	entries []models.TranscriptEntry
	sends   []sendCall
	loaded  []models.Scope
	cleared []models.Scope
}

func (s *stubChatService) Send(ctx context.Context, scope models.Scope, message string, model models.Model) string {
	s.sends = append(s.sends, sendCall{scope: scope, message: message, model: model})
	return s.reply
}

func (s *stubChatService) Transcript(ctx context.Context, scope models.Scope) []models.TranscriptEntry {
	s.loaded = append(s.loaded, scope)
	if s.entries == nil {
		return []models.TranscriptEntry{}
	}
	return s.entries
}

func (s *stubChatService) Clear(ctx context.Context, scope models.Scope) {
	s.cleared = append(s.cleared, scope)
}

type stubSessions struct {
	saved []middleware.Session
}

func (s *stubSessions) Save(w http.ResponseWriter, sess middleware.Session) error {
	s.saved = append(s.saved, sess)
	return nil
}

func newTestHandler(svc *stubChatService, sessions *stubSessions) *ChatHandler {
	h := NewChatHandler(svc, sessions, models.ModelGemini, zap.NewNop())
	h.newChatID = func() string { return "minted" }
	return h
}

func withSession(req *http.Request, sess middleware.Session) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), sess))
}

func TestChatHandler_Index_MintsChatID(t *testing.T) {
	svc := &stubChatService{}
	sessions := &stubSessions{}
	h := newTestHandler(svc, sessions)

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), middleware.Session{UserID: "1"})
	rr := httptest.NewRecorder()
	h.Index(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(sessions.saved) != 1 || sessions.saved[0].ChatID != "minted" {
		t.Fatalf("expected session saved with minted chat id, got %+v", sessions.saved)
	}

	var resp models.TranscriptResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CurrentChatID != "minted" {
		t.Fatalf("expected current_chat_id minted, got %q", resp.CurrentChatID)
	}
	if resp.DefaultModel != models.ModelGemini {
		t.Fatalf("expected default model gemini, got %q", resp.DefaultModel)
	}
	if resp.SidebarConversations == nil {
		t.Fatalf("expected sidebar_conversations to be present")
	}
}

func TestChatHandler_Index_KeepsExistingChat(t *testing.T) {
	svc := &stubChatService{}
	sessions := &stubSessions{}
	h := newTestHandler(svc, sessions)

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), middleware.Session{UserID: "1", ChatID: "abc"})
	h.Index(httptest.NewRecorder(), req)

	if len(sessions.saved) != 0 {
		t.Fatalf("session should not be rewritten when a chat is open")
	}
	if len(svc.loaded) != 1 || svc.loaded[0] != (models.Scope{UserID: "1", ChatID: "abc"}) {
		t.Fatalf("expected transcript loaded for chat abc, got %+v", svc.loaded)
	}
}

func TestChatHandler_SendMessage_JSON(t *testing.T) {
	svc := &stubChatService{reply: "<strong>oi</strong>"}
	h := newTestHandler(svc, &stubSessions{})

	body := strings.NewReader(`{"message":"olá","model":"gpt"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", "application/json")
	req = withSession(req, middleware.Session{UserID: "1", ChatID: "abc"})

	rr := httptest.NewRecorder()
	h.SendMessage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(svc.sends) != 1 {
		t.Fatalf("expected one send, got %d", len(svc.sends))
	}
	call := svc.sends[0]
	if call.message != "olá" || call.model != models.ModelGPT || call.scope.ChatID != "abc" {
		t.Fatalf("unexpected send call %+v", call)
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Response != "<strong>oi</strong>" {
		t.Fatalf("unexpected response %q", resp.Response)
	}
}

func TestChatHandler_SendMessage_FormDefaultsModel(t *testing.T) {
	svc := &stubChatService{reply: "ok"}
	sessions := &stubSessions{}
	h := newTestHandler(svc, sessions)

	form := url.Values{"message": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withSession(req, middleware.Session{UserID: "1"})

	rr := httptest.NewRecorder()
	h.SendMessage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	call := svc.sends[0]
	if call.model != models.ModelGemini {
		t.Fatalf("expected default model gemini, got %q", call.model)
	}
	if call.scope.ChatID != "minted" {
		t.Fatalf("expected minted chat id, got %q", call.scope.ChatID)
	}
	if len(sessions.saved) != 1 {
		t.Fatalf("expected session to be saved once")
	}
}

func TestChatHandler_SendMessage_MalformedJSON(t *testing.T) {
	svc := &stubChatService{}
	h := newTestHandler(svc, &stubSessions{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":`))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(req, middleware.Session{UserID: "1", ChatID: "abc"})

	rr := httptest.NewRecorder()
	h.SendMessage(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if len(svc.sends) != 0 {
		t.Fatalf("send should not run for malformed body")
	}
}

func TestChatHandler_ClearHistory(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.Scope
	}{
		{name: "empty body clears all chats", body: "", want: models.Scope{UserID: "1"}},
		{name: "chat id limits scope", body: `{"chat_id":"abc"}`, want: models.Scope{UserID: "1", ChatID: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubChatService{}
			h := newTestHandler(svc, &stubSessions{})

			req := httptest.NewRequest(http.MethodPost, "/clear", strings.NewReader(tt.body))
			req = withSession(req, middleware.Session{UserID: "1", ChatID: "current"})

			rr := httptest.NewRecorder()
			h.ClearHistory(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			if len(svc.cleared) != 1 || svc.cleared[0] != tt.want {
				t.Fatalf("expected clear of %+v, got %+v", tt.want, svc.cleared)
			}

			var resp models.ActionResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != "success" || resp.Action != "clear_chat" {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}

func TestChatHandler_NewChat(t *testing.T) {
	sessions := &stubSessions{}
	h := newTestHandler(&stubChatService{}, sessions)

	req := withSession(httptest.NewRequest(http.MethodPost, "/new", nil), middleware.Session{UserID: "1", ChatID: "old"})
	rr := httptest.NewRecorder()
	h.NewChat(rr, req)

	var resp models.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Action != "new_chat" || resp.ChatID != "minted" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(sessions.saved) != 1 || sessions.saved[0].ChatID != "minted" {
		t.Fatalf("expected session switched to minted chat, got %+v", sessions.saved)
	}
}

func TestChatHandler_LoadChat(t *testing.T) {
	svc := &stubChatService{entries: []models.TranscriptEntry{{UserMessage: "hi", ModelResponse: "hello", DateGroup: "2024-05-01"}}}
	sessions := &stubSessions{}
	h := newTestHandler(svc, sessions)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("chat_id", "xyz")

	req := httptest.NewRequest(http.MethodGet, "/chat/xyz", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	req = withSession(req, middleware.Session{UserID: "1", ChatID: "abc"})

	rr := httptest.NewRecorder()
	h.LoadChat(rr, req)

	if svc.loaded[0] != (models.Scope{UserID: "1", ChatID: "xyz"}) {
		t.Fatalf("expected transcript for chat xyz, got %+v", svc.loaded[0])
	}
	if len(sessions.saved) != 1 || sessions.saved[0].ChatID != "xyz" {
		t.Fatalf("expected session switched to xyz, got %+v", sessions.saved)
	}

	var resp models.ChatTranscriptResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Conversations) != 1 || resp.Conversations[0].UserMessage != "hi" {
		t.Fatalf("unexpected conversations %+v", resp.Conversations)
	}
}

func TestChatHandler_Conversations_NoChat(t *testing.T) {
	svc := &stubChatService{}
	h := newTestHandler(svc, &stubSessions{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/conversations", nil), middleware.Session{UserID: "1"})
	rr := httptest.NewRecorder()
	h.Conversations(rr, req)

	if len(svc.loaded) != 0 {
		t.Fatalf("transcript should not be loaded without an open chat")
	}
	if !strings.Contains(rr.Body.String(), `"conversations":[]`) {
		t.Fatalf("expected empty conversations, got %s", rr.Body.String())
	}
}

func TestChatHandler_Conversations_GroupsSidebar(t *testing.T) {
	svc := &stubChatService{entries: []models.TranscriptEntry{
		{UserMessage: "a", DateGroup: "2024-05-01"},
		{UserMessage: "b", DateGroup: "2024-05-02"},
		{UserMessage: "c", DateGroup: "2024-05-01"},
	}}
	h := newTestHandler(svc, &stubSessions{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/conversations", nil), middleware.Session{UserID: "1", ChatID: "abc"})
	rr := httptest.NewRecorder()
	h.Conversations(rr, req)

	var resp models.TranscriptResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.SidebarConversations["2024-05-01"]) != 2 || len(resp.SidebarConversations["2024-05-02"]) != 1 {
		t.Fatalf("unexpected sidebar grouping %+v", resp.SidebarConversations)
	}
	if resp.CurrentChatID != "abc" {
		t.Fatalf("expected current chat abc, got %q", resp.CurrentChatID)
	}
}

func TestChatHandler_SendMessage_ExplicitEmptyModelKept(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "json", contentType: "application/json", body: `{"message":"oi","model":""}`},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "message=oi&model="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubChatService{reply: "Modelo inválido."}
			h := newTestHandler(svc, &stubSessions{})

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			req = withSession(req, middleware.Session{UserID: "1", ChatID: "abc"})

			rr := httptest.NewRecorder()
			h.SendMessage(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			if len(svc.sends) != 1 {
				t.Fatalf("expected one send, got %d", len(svc.sends))
			}
			if svc.sends[0].model != "" {
				t.Fatalf("expected explicit empty model to be kept, got %q", svc.sends[0].model)
			}
		})
	}
}

func TestChatHandler_SendMessage_JSONMissingModelDefaults(t *testing.T) {
	svc := &stubChatService{reply: "ok"}
	h := newTestHandler(svc, &stubSessions{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"oi"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(req, middleware.Session{UserID: "1", ChatID: "abc"})

	h.SendMessage(httptest.NewRecorder(), req)

	if len(svc.sends) != 1 || svc.sends[0].model != models.ModelGemini {
		t.Fatalf("expected default model gemini, got %+v", svc.sends)
	}
}
