package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Engine  EngineConfig
	Session SessionConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port     string
	LogLevel string
}

// EngineConfig holds translation engine configuration
type EngineConfig struct {
	// Type selects the engine: gemini, libretranslate or stub.
	Type string
	// GeminiModel is the generative model used for translate-and-detect.
	GeminiModel string
	// GeminiBaseURL points at the generative-language API.
	GeminiBaseURL string
	// GeminiAPIKey is the credential; its absence surfaces as a
	// missing-credential error in sessions, never as a startup failure.
	GeminiAPIKey string
	// LibreTranslateURL points at a LibreTranslate instance.
	LibreTranslateURL string
	// LibreTranslateAPIKey is optional; public instances accept none.
	LibreTranslateAPIKey string
}

// SessionConfig holds session behavior configuration
type SessionConfig struct {
	DebounceMS    int
	TTL           time.Duration
	DefaultSource string
	DefaultTarget string
	DefaultLocale string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("TRADUTOR_PORT", "8080"),
			LogLevel: getEnv("TRADUTOR_LOG_LEVEL", "info"),
		},
		Engine: EngineConfig{
			Type:                 getEnv("TRADUTOR_ENGINE", "gemini"),
			GeminiModel:          getEnv("TRADUTOR_GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiBaseURL:        getEnv("TRADUTOR_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
			LibreTranslateURL:    getEnv("TRADUTOR_LIBRETRANSLATE_URL", "http://localhost:5000"),
			LibreTranslateAPIKey: getEnv("TRADUTOR_LIBRETRANSLATE_API_KEY", ""),
		},
		Session: SessionConfig{
			DebounceMS:    getEnvAsInt("TRADUTOR_DEBOUNCE_MS", 800),
			TTL:           getEnvAsDuration("TRADUTOR_SESSION_TTL", 30*time.Minute),
			DefaultSource: getEnv("TRADUTOR_DEFAULT_SOURCE", "pt"),
			DefaultTarget: getEnv("TRADUTOR_DEFAULT_TARGET", "en"),
			DefaultLocale: getEnv("TRADUTOR_DEFAULT_LOCALE", "en"),
		},
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

// Debounce returns the debounce quiet period as a duration
func (c *SessionConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
