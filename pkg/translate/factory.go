package translate

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// EngineType represents the type of translation engine to use.
type EngineType string

const (
	// EngineGemini uses the Google generative-language API as the backend.
	EngineGemini EngineType = "gemini"
	// EngineLibreTranslate uses LibreTranslate as the backend.
	EngineLibreTranslate EngineType = "libretranslate"
	// EngineStub uses the offline deterministic stub (demo mode, tests).
	EngineStub EngineType = "stub"
)

// Config holds configuration for creating a Translator instance.
type Config struct {
	// Engine specifies which translation engine to use.
	Engine EngineType
	// BaseURL is the base URL for the engine's API. Defaults to the
	// engine's well-known URL when empty.
	BaseURL string
	// Model is the generative model name (Gemini only).
	Model string
	// APIKey is the engine credential. Gemini requires one; LibreTranslate
	// treats it as optional.
	APIKey string
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// NewTranslator creates a new Translator instance based on the configuration.
// This factory function allows switching between engines without changing
// the session orchestration.
func NewTranslator(cfg Config) (Translator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	cfg.Logger.WithFields(logrus.Fields{
		"engine":   cfg.Engine,
		"base_url": cfg.BaseURL,
		"has_key":  cfg.APIKey != "",
	}).Info("Creating translator instance")

	switch cfg.Engine {
	case EngineGemini:
		return NewGeminiClient(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Logger), nil
	case EngineLibreTranslate:
		return NewLibreTranslateClient(cfg.BaseURL, cfg.APIKey, cfg.Logger), nil
	case EngineStub:
		return NewStubTranslator(nil), nil
	default:
		cfg.Logger.WithFields(logrus.Fields{
			"engine": cfg.Engine,
		}).Error("Unknown translation engine")
		return nil, fmt.Errorf("unknown translation engine: %s", cfg.Engine)
	}
}

// ParseEngineType parses a string into an EngineType.
// Returns an error if the string is not a valid engine type.
func ParseEngineType(s string) (EngineType, error) {
	switch s {
	case "gemini", "Gemini", "GEMINI":
		return EngineGemini, nil
	case "libretranslate", "LibreTranslate", "LIBRETRANSLATE":
		return EngineLibreTranslate, nil
	case "stub", "Stub", "STUB":
		return EngineStub, nil
	default:
		return "", fmt.Errorf("unknown engine type: %s (supported: gemini, libretranslate, stub)", s)
	}
}
