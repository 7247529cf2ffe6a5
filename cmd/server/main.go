package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatclone-backend/internal/config"
	"chatclone-backend/internal/database"
	"chatclone-backend/internal/formatter"
	"chatclone-backend/internal/handlers"
	"chatclone-backend/internal/logger"
	"chatclone-backend/internal/middleware"
	"chatclone-backend/internal/router"
	"chatclone-backend/internal/services"
	"chatclone-backend/internal/store"
	"chatclone-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if cfg.IsProduction() {
		config.MustRequire("SESSION_SECRET")
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer zl.Sync()
	zl.Info("starting chatclone backend", zap.String("env", cfg.Env))

	ctx := context.Background()

	// ──── Step 2: Open Conversation Store ────
	repo, err := database.OpenConversationRepo(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer repo.Close()
	zl.Info("conversation store ready")

	// ──── Step 3: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			zl.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisClients.Close()
		zl.Info("redis connected")
	}

	// ──── Step 4: Initialize Model Backends ────
	gemini, err := services.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		zl.Fatal("gemini client initialization failed", zap.Error(err))
	}
	defer gemini.Close()

	gpt, err := services.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	if err != nil {
		zl.Fatal("openai client initialization failed", zap.Error(err))
	}

	defaultModel := services.DefaultModel(cfg.GeminiAPIKey != "", cfg.OpenAIAPIKey != "")
	zl.Info("model backends initialized",
		zap.Bool("gemini", cfg.GeminiAPIKey != ""),
		zap.Bool("gpt", cfg.OpenAIAPIKey != ""),
		zap.String("default_model", string(defaultModel)))

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients, cfg.FrontendURL, zl)

	// ──── Initialize Services ────
	responder := services.NewResponder(gpt, gemini, zl)
	chatService := services.NewChatService(
		responder,
		formatter.New(formatter.HTML),
		store.New(repo, zl),
		wsHub,
		zl,
	)
	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.DefaultUserID, cfg.IsProduction(), zl)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService, sessions, defaultModel, zl)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(zl, sessions, chatHandler, wsHub)

	server := newServer(cfg.Port, r)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zl.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	zl.Info("chatclone backend ready", zap.String("addr", "http://localhost:"+cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		zl.Fatal("server error", zap.Error(err))
	}
}

// newServer leaves WriteTimeout unset: a message request blocks for as long
// as the model takes to answer.
func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        fmt.Sprintf(":%s", port),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}
