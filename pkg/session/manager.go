package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/i18n"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/translate"
)

// ManagerConfig holds the collaborators shared by all sessions.
type ManagerConfig struct {
	// Translator is the engine handed to every session.
	Translator translate.Translator
	// Messages renders localized error messages.
	Messages *i18n.Messages
	// DebounceDelay overrides the per-session debounce default.
	DebounceDelay time.Duration
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// Manager tracks the live sessions a server hands out to widgets.
type Manager struct {
	translator translate.Translator
	messages   *i18n.Messages
	logger     *logrus.Logger
	delay      time.Duration

	sessionsMu sync.RWMutex
	sessions   map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Messages == nil {
		cfg.Messages = i18n.NewMessages("en", cfg.Logger)
	}
	return &Manager{
		translator: cfg.Translator,
		messages:   cfg.Messages,
		logger:     cfg.Logger,
		delay:      cfg.DebounceDelay,
		sessions:   make(map[string]*Session),
	}
}

// Create starts a new session with the given language pair and UI locale.
// Empty codes take the defaults.
func (m *Manager) Create(source, target language.Code, locale string) (*Session, error) {
	sess, err := NewSession("", Config{
		Source:        source,
		Target:        target,
		Locale:        locale,
		DebounceDelay: m.delay,
		Translator:    m.translator,
		Messages:      m.messages,
		Logger:        m.logger,
	})
	if err != nil {
		return nil, err
	}

	m.sessionsMu.Lock()
	m.sessions[sess.ID] = sess
	sessionsActive.Set(float64(len(m.sessions)))
	m.sessionsMu.Unlock()

	sessionsCreatedTotal.Inc()
	return sess, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return len(m.sessions)
}

// Close tears down the session with the given ID. Returns false when no
// such session exists.
func (m *Manager) Close(id string) bool {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return false
	}
	sess.Close()
	delete(m.sessions, id)
	sessionsActive.Set(float64(len(m.sessions)))
	return true
}

// CloseAll tears down every live session. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	for id, sess := range m.sessions {
		sess.Close()
		delete(m.sessions, id)
	}
	sessionsActive.Set(0)
}

// CleanupIdleSessions closes sessions with no activity for maxIdle or
// longer. Returns the number of sessions removed.
func (m *Manager) CleanupIdleSessions(maxIdle time.Duration) int {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	now := time.Now()
	removed := 0

	for id, sess := range m.sessions {
		if now.Sub(sess.LastActivity()) > maxIdle {
			sess.Close()
			delete(m.sessions, id)
			removed++
		}
	}
	sessionsActive.Set(float64(len(m.sessions)))

	if removed > 0 {
		m.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": len(m.sessions),
		}).Info("Cleaned up idle sessions")
	}
	return removed
}
