package services

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned by a backend constructed without credentials.
	ErrMissingAPIKey = errors.New("API key not configured")
	ErrEmptyResponse = errors.New("model returned no text")
	ErrUnknownModel  = errors.New("unknown model")
)

// Backend generates text for a prompt using one model provider.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
