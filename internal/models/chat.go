package models

// ChatRequest is the payload sent to the message endpoint.
type ChatRequest struct {
	Message string `json:"message"`
	Model   Model  `json:"model"`
}

// ChatResponse carries the formatted model reply.
type ChatResponse struct {
	Response string `json:"response"`
}

type ClearRequest struct {
	ChatID string `json:"chat_id"`
}

type ActionResponse struct {
	Status string `json:"status"`
	Action string `json:"action"`
	ChatID string `json:"chat_id,omitempty"`
}

// TranscriptResponse is returned by the index and conversation endpoints.
// The sidebar groups the same entries by date.
type TranscriptResponse struct {
	Conversations        []TranscriptEntry            `json:"conversations"`
	SidebarConversations map[string][]TranscriptEntry `json:"sidebar_conversations"`
	CurrentChatID        string                       `json:"current_chat_id,omitempty"`
	DefaultModel         Model                        `json:"default_model,omitempty"`
}

type ChatTranscriptResponse struct {
	Conversations []TranscriptEntry `json:"conversations"`
}
