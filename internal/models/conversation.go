package models

import "time"

// Model names a text-generation backend. Values outside the known set are
// still persisted verbatim.
type Model string

const (
	ModelGPT    Model = "gpt"
	ModelGemini Model = "gemini"
)

// Scope selects the turns a store operation applies to. An empty ChatID
// covers every chat of the user.
type Scope struct {
	UserID string
	ChatID string
}

// HasChat reports whether the scope is restricted to a single chat.
func (s Scope) HasChat() bool {
	return s.ChatID != ""
}

// Turn is one persisted user-message/model-response pair.
type Turn struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	ChatID        *string   `json:"chat_id"`
	UserMessage   string    `json:"user_message"`
	ModelResponse string    `json:"gpt_response"`
	Model         Model     `json:"model"`
	Timestamp     time.Time `json:"timestamp"`
	DateGroup     string    `json:"date_group"` // YYYY-MM-DD
}

type TranscriptEntry struct {
	UserMessage   string  `json:"user_message"`
	ModelResponse string  `json:"gpt_response"`
	DateGroup     string  `json:"date_group"`
	ChatID        *string `json:"chat_id"`
}

const DateGroupLayout = "2006-01-02"
