package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chatclone-backend/internal/metrics"
	"chatclone-backend/internal/models"
)

// User-facing replies substituted for a failed generation.
const (
	GeminiFallback       = "Desculpe, não consegui entender sua pergunta, por favor, reformule"
	GPTFallback          = "Erro ao obter resposta do GPT-4 (verifique a chave da API)."
	InvalidModelFallback = "Modelo inválido."
)

type route struct {
	backend  Backend
	fallback string
}

// Responder routes a prompt to the selected backend and never fails: a
// generation error is replaced by the backend's fixed fallback reply.
type Responder struct {
	routes map[models.Model]route
	logger *zap.Logger
}

func NewResponder(gpt, gemini Backend, logger *zap.Logger) *Responder {
	return &Responder{
		routes: map[models.Model]route{
			models.ModelGPT:    {backend: gpt, fallback: GPTFallback},
			models.ModelGemini: {backend: gemini, fallback: GeminiFallback},
		},
		logger: logger,
	}
}

// Generate calls the backend for model and reports its failure as is.
func (r *Responder) Generate(ctx context.Context, model models.Model, prompt string) (string, error) {
	rt, ok := r.routes[model]
	if !ok || rt.backend == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	start := time.Now()
	text, err := rt.backend.Generate(ctx, prompt)
	metrics.GenerationDuration.WithLabelValues(string(model)).Observe(time.Since(start).Seconds())
	return text, err
}

// Respond is Generate with the failure branch mapped to the fallback reply.
func (r *Responder) Respond(ctx context.Context, model models.Model, prompt string) string {
	text, err := r.Generate(ctx, model, prompt)
	if err == nil {
		metrics.GenerationsTotal.WithLabelValues(string(model), "ok").Inc()
		return text
	}

	metrics.GenerationsTotal.WithLabelValues(string(model), "fallback").Inc()
	r.logger.Warn("generation failed, using fallback reply",
		zap.String("model", string(model)),
		zap.Error(err))

	if rt, ok := r.routes[model]; ok {
		return rt.fallback
	}
	return InvalidModelFallback
}

// DefaultModel picks the backend preselected in the UI: gemini when only the
// Gemini key is configured, gpt otherwise.
func DefaultModel(geminiConfigured, gptConfigured bool) models.Model {
	if geminiConfigured && !gptConfigured {
		return models.ModelGemini
	}
	return models.ModelGPT
}
