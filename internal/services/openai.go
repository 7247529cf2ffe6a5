package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const gptSystemPrompt = "Você é um assistente útil."

type OpenAIBackend struct {
	llm llms.Model
}

// NewOpenAIBackend creates a chat-completion backend. baseURL may be empty to
// use the public endpoint; an empty apiKey yields a backend that fails every
// call with ErrMissingAPIKey.
func NewOpenAIBackend(apiKey, model, baseURL string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return &OpenAIBackend{}, nil
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &OpenAIBackend{llm: llm}, nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.llm == nil {
		return "", ErrMissingAPIKey
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, gptSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := b.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("OpenAI: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Content, nil
}
