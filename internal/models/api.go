package models

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSTurnSaved   = "turn_saved"
	WSChatCleared = "chat_cleared"
)

type TurnSavedEvent struct {
	ChatID        string `json:"chat_id"`
	UserMessage   string `json:"user_message"`
	ModelResponse string `json:"gpt_response"`
	Model         Model  `json:"model"`
	DateGroup     string `json:"date_group"`
}

type ChatClearedEvent struct {
	ChatID string `json:"chat_id,omitempty"`
}

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
