package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chatclone-backend/internal/handlers"
	"chatclone-backend/internal/metrics"
	"chatclone-backend/internal/middleware"
	"chatclone-backend/internal/websocket"
)

func New(
	logger *zap.Logger,
	sessions *middleware.Sessions,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ──── Chat Routes (session cookie) ────
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", chatHandler.Index)
		r.Post("/", chatHandler.SendMessage)
		r.Post("/clear", chatHandler.ClearHistory)
		r.Post("/new", chatHandler.NewChat)
		r.Get("/chat/{chat_id}", chatHandler.LoadChat)
		r.Get("/conversations", chatHandler.Conversations)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
