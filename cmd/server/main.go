package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/config"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/i18n"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/server"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/session"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/translate"
)

var (
	// Server configuration flags (override environment configuration)
	port     = flag.String("port", "", "HTTP server port (overrides TRADUTOR_PORT)")
	logLevel = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides TRADUTOR_LOG_LEVEL)")

	// Translation engine configuration
	engine    = flag.String("engine", "", "Translation engine: gemini, libretranslate or stub (overrides TRADUTOR_ENGINE)")
	engineURL = flag.String("engine-url", "", "Base URL for the translation engine API")

	// Session behavior configuration
	debounceMS = flag.Int("debounce-ms", 0, "Debounce quiet period in milliseconds (overrides TRADUTOR_DEBOUNCE_MS)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Flags win over environment
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}
	if *engine != "" {
		cfg.Engine.Type = *engine
	}
	if *debounceMS > 0 {
		cfg.Session.DebounceMS = *debounceMS
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	// Set log level
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.WithFields(logrus.Fields{
		"port":      cfg.Server.Port,
		"engine":    cfg.Engine.Type,
		"debounce":  cfg.Session.Debounce().String(),
		"log_level": level.String(),
	}).Info("Starting Tradutor Inteligente server")

	// Parse translation engine type
	engineType, err := translate.ParseEngineType(cfg.Engine.Type)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse translation engine type")
	}

	var baseURL, model, apiKey string
	switch engineType {
	case translate.EngineGemini:
		baseURL = cfg.Engine.GeminiBaseURL
		model = cfg.Engine.GeminiModel
		apiKey = cfg.Engine.GeminiAPIKey
	case translate.EngineLibreTranslate:
		baseURL = cfg.Engine.LibreTranslateURL
		apiKey = cfg.Engine.LibreTranslateAPIKey
	}
	if *engineURL != "" {
		baseURL = *engineURL
	}

	// Create translator instance
	translator, err := translate.NewTranslator(translate.Config{
		Engine:  engineType,
		BaseURL: baseURL,
		Model:   model,
		APIKey:  apiKey,
		Logger:  logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create translator")
	}

	// Verify translator is healthy
	healthCtx, healthCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer healthCancel()

	logger.Info("Checking translator health...")
	if err := translator.CheckHealth(healthCtx); err != nil {
		logger.WithError(err).Warn("Translator health check failed, but continuing anyway")
		logger.Warn("Server will start, but translation requests may fail until the engine is ready")
	} else {
		logger.Info("Translator health check passed")
	}

	messages := i18n.NewMessages(cfg.Session.DefaultLocale, logger)

	manager := session.NewManager(session.ManagerConfig{
		Translator:    translator,
		Messages:      messages,
		DebounceDelay: cfg.Session.Debounce(),
		Logger:        logger,
	})

	httpServer := server.NewHTTPServer(server.Config{
		Manager:       manager,
		Logger:        logger,
		Port:          cfg.Server.Port,
		EngineName:    translator.Name(),
		DefaultSource: language.Code(cfg.Session.DefaultSource),
		DefaultTarget: language.Code(cfg.Session.DefaultTarget),
		DefaultLocale: cfg.Session.DefaultLocale,
	})

	// Start periodic cleanup goroutine for idle sessions
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				manager.CleanupIdleSessions(cfg.Session.TTL)
			case <-cleanupCtx.Done():
				return
			}
		}
	}()
	logger.WithFields(logrus.Fields{
		"cleanup_interval": "1 minute",
		"session_ttl":      cfg.Session.TTL.String(),
	}).Info("Started session cleanup goroutine")

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.WithError(err).Fatal("Server error")
	case sig := <-sigChan:
		logger.WithFields(logrus.Fields{
			"signal": sig.String(),
		}).Info("Received signal, shutting down gracefully...")

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Graceful shutdown failed, connections were dropped")
		} else {
			logger.Info("Server stopped gracefully")
		}

		// Tear down sessions so pending timers are cancelled
		manager.CloseAll()
		logger.Info("All sessions closed")
	}
}
