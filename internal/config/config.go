package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL      string
	DatabaseMaxConns int

	// Redis (optional, enables cross-instance transcript updates)
	RedisURL string

	// Session
	SessionSecret string
	DefaultUserID string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8000"),
		Env:              getEnvOrDefault("ENV", "development"),
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", "sqlite:chatclone.db"),
		DatabaseMaxConns: getEnvAsIntOrDefault("DATABASE_MAX_CONNS", 10),
		RedisURL:         getEnvOrDefault("REDIS_URL", ""),
		SessionSecret:    getEnvOrDefault("SESSION_SECRET", ""),
		DefaultUserID:    getEnvOrDefault("DEFAULT_USER_ID", "1"),
		GeminiAPIKey:     getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:      getEnvOrDefault("GEMINI_MODEL", "gemini-pro"),
		OpenAIAPIKey:     getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnvOrDefault("OPENAI_MODEL", "gpt-4"),
		OpenAIBaseURL:    getEnvOrDefault("OPENAI_BASE_URL", ""),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:8000"),
	}

	// A fresh secret per process invalidates old session cookies on restart.
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// MustRequire panics unless every named variable is set, for deployments
// that refuse to start without their credentials.
func MustRequire(keys ...string) {
	for _, key := range keys {
		mustGetEnv(key)
	}
}

func randomSecret() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return hex.EncodeToString(buf)
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
