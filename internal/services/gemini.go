package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiBackend creates a backend bound to apiKey. With an empty key the
// backend is created anyway and fails every call with ErrMissingAPIKey.
func NewGeminiBackend(ctx context.Context, apiKey, modelName string) (*GeminiBackend, error) {
	if apiKey == "" {
		return &GeminiBackend{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (b *GeminiBackend) Close() {
	if b.client != nil {
		b.client.Close()
	}
}

func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.model == nil {
		return "", ErrMissingAPIKey
	}

	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Gemini: %w (finish reason %s)", ErrEmptyResponse, finishReason(resp))
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func finishReason(resp *genai.GenerateContentResponse) genai.FinishReason {
	if resp == nil || len(resp.Candidates) == 0 {
		return genai.FinishReasonUnspecified
	}
	return resp.Candidates[0].FinishReason
}
