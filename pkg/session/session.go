package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/i18n"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/translate"
)

// DefaultDebounceDelay is the quiet period after the last edit before the
// input text is submitted for translation.
const DefaultDebounceDelay = 800 * time.Millisecond

var (
	// ErrSameLanguages is returned when a requested selection would leave
	// source and target equal.
	ErrSameLanguages = errors.New("source and target languages must be different")
	// ErrUnsupportedLanguage is returned when a requested selection is
	// outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language code")
)

// Snapshot is the observable state of a session at one point in time.
// Delivered to subscribers after every state change.
type Snapshot struct {
	ID             string        `json:"id"`
	SourceLang     language.Code `json:"source_lang"`
	TargetLang     language.Code `json:"target_lang"`
	InputText      string        `json:"input_text"`
	TranslatedText string        `json:"translated_text"`
	Loading        bool          `json:"loading"`
	Error          *SessionError `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Config holds the collaborators and initial selection for a session.
type Config struct {
	// Source and Target are the initial language pair. Empty values take
	// the defaults (pt -> en). They must not be equal.
	Source language.Code
	Target language.Code
	// Locale selects the language of user-facing error messages.
	Locale string
	// DebounceDelay overrides the 800ms default, mainly for tests.
	DebounceDelay time.Duration
	// Translator is the remote translate-and-detect collaborator.
	Translator translate.Translator
	// Messages renders localized error messages. If nil, a default
	// English catalog is created.
	Messages *i18n.Messages
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// Session holds the transient state of one translation widget: the language
// pair, the text buffers, the loading flag and the error state. All mutations
// go through its methods; every mutation is pushed to subscribers.
type Session struct {
	ID        string
	CreatedAt time.Time

	translator translate.Translator
	messages   *i18n.Messages
	locale     string
	logger     *logrus.Entry
	delay      time.Duration

	debounce debouncer

	mu             sync.Mutex
	sourceLang     language.Code
	targetLang     language.Code
	inputText      string
	translatedText string
	loading        bool
	errState       *SessionError
	lastSubmitted  string
	generation     uint64
	lastActivity   time.Time
	closed         bool
	subscribers    map[chan Snapshot]struct{}
}

// NewSession creates a session with the given ID (a fresh UUID when empty).
// Fails when the initial language pair is unsupported or equal.
func NewSession(id string, cfg Config) (*Session, error) {
	if cfg.Source == "" {
		cfg.Source = language.DefaultSource
	}
	if cfg.Target == "" {
		cfg.Target = language.DefaultTarget
	}
	if !language.IsSupported(cfg.Source) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, cfg.Source)
	}
	if !language.IsSupported(cfg.Target) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, cfg.Target)
	}
	if cfg.Source == cfg.Target {
		return nil, ErrSameLanguages
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Messages == nil {
		cfg.Messages = i18n.NewMessages("en", cfg.Logger)
	}
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		translator:   cfg.Translator,
		messages:     cfg.Messages,
		locale:       cfg.Locale,
		logger:       cfg.Logger.WithField("session_id", id),
		delay:        cfg.DebounceDelay,
		sourceLang:   cfg.Source,
		targetLang:   cfg.Target,
		lastActivity: now,
		subscribers:  make(map[chan Snapshot]struct{}),
	}

	s.logger.WithFields(logrus.Fields{
		"source_lang": s.sourceLang,
		"target_lang": s.targetLang,
		"engine":      cfg.Translator.Name(),
	}).Info("Session created")

	return s, nil
}

// SetInput records a text edit and (re)starts the debounce timer. Only the
// most recent text after a full quiet period is submitted; edits before the
// timer fires replace the pending submission.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.inputText = text
	s.generation++
	gen := s.generation
	// Any in-flight request is superseded now; its response will be dropped.
	s.loading = false
	s.touchLocked()
	s.broadcastLocked()

	// Armed under the lock: concurrent edits arm in generation order, so
	// the pending timer always carries the newest text.
	s.debounce.Arm(s.delay, func() {
		s.submit(text, gen)
	})
}

// Swap exchanges source and target languages together with the text buffers,
// atomically. The previous output becomes the new input and vice versa, so
// the swapped pair is immediately consistent without a new translation cycle.
func (s *Session) Swap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.generation++
	s.debounce.Stop()

	s.sourceLang, s.targetLang = s.targetLang, s.sourceLang
	s.inputText, s.translatedText = s.translatedText, s.inputText
	s.errState = nil
	s.loading = false
	s.touchLocked()

	s.logger.WithFields(logrus.Fields{
		"source_lang": s.sourceLang,
		"target_lang": s.targetLang,
	}).Debug("Swapped language pair")

	s.broadcastLocked()
}

// Clear resets the input, the output and the error state together and
// cancels any pending submission.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.generation++
	s.debounce.Stop()

	s.inputText = ""
	s.translatedText = ""
	s.errState = nil
	s.loading = false
	s.lastSubmitted = ""
	s.touchLocked()
	s.broadcastLocked()
}

// Retry resubmits the last submitted text immediately, skipping the debounce
// delay. This is the recovery affordance for translation failures.
func (s *Session) Retry() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.generation++
	gen := s.generation
	text := s.lastSubmitted
	s.debounce.Stop()
	s.loading = false
	s.touchLocked()
	s.mu.Unlock()

	go s.submit(text, gen)
}

// SetLanguages applies a manual selector change. An empty code leaves that
// side unchanged. Assigning one side the other's current value moves the
// displaced value to the opposite slot, so the pair never collides. When
// input text is present the translation re-runs through the debounce path.
func (s *Session) SetLanguages(source, target language.Code) error {
	if source != "" && !language.IsSupported(source) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, source)
	}
	if target != "" && !language.IsSupported(target) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, target)
	}
	if source != "" && source == target {
		return ErrSameLanguages
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if source == "" && target == "" {
		s.mu.Unlock()
		return nil
	}

	prevSource, prevTarget := s.sourceLang, s.targetLang
	switch {
	case source != "" && target != "":
		s.sourceLang, s.targetLang = source, target
	case source != "":
		if source == prevTarget {
			s.targetLang = prevSource
		}
		s.sourceLang = source
	default:
		if target == prevSource {
			s.sourceLang = prevTarget
		}
		s.targetLang = target
	}

	s.generation++
	gen := s.generation
	s.debounce.Stop()
	s.errState = nil
	s.loading = false
	s.touchLocked()

	s.logger.WithFields(logrus.Fields{
		"source_lang": s.sourceLang,
		"target_lang": s.targetLang,
	}).Debug("Language pair changed")

	s.broadcastLocked()

	if text := s.inputText; strings.TrimSpace(text) != "" {
		s.debounce.Arm(s.delay, func() {
			s.submit(text, gen)
		})
	}
	s.mu.Unlock()
	return nil
}

// Subscribe registers a listener for state snapshots. The returned cancel
// function must be called when the listener goes away. Slow listeners lose
// intermediate snapshots, never the stream.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 8)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastActivity returns the time of the most recent state change.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Close tears the session down: the pending timer is cancelled, in-flight
// responses are discarded and all subscriber channels are closed. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.closed = true
	s.generation++
	s.debounce.Stop()
	s.loading = false

	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	s.logger.Info("Session closed")
}

// submit runs when the debounce timer fires (or on retry). gen identifies
// the edit that scheduled it; any newer edit supersedes this submission.
func (s *Session) submit(text string, gen uint64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if gen != s.generation {
		s.mu.Unlock()
		debounceSubmitsTotal.WithLabelValues(submitResultSuperseded).Inc()
		return
	}

	s.lastSubmitted = text
	if strings.TrimSpace(text) == "" {
		// Nothing to translate: clear the output and error without any
		// network call.
		s.translatedText = ""
		s.errState = nil
		s.loading = false
		s.touchLocked()
		s.broadcastLocked()
		s.mu.Unlock()
		debounceSubmitsTotal.WithLabelValues(submitResultEmpty).Inc()
		return
	}

	s.loading = true
	s.errState = nil
	s.touchLocked()
	targetCode := s.targetLang
	s.broadcastLocked()
	s.mu.Unlock()

	debounceSubmitsTotal.WithLabelValues(submitResultTranslated).Inc()
	s.logger.WithFields(logrus.Fields{
		"target_lang": targetCode,
		"text_length": len(text),
	}).Debug("Submitting text for translation")

	// Timeout policy lives in the engine's HTTP client.
	start := time.Now()
	res, err := s.translator.TranslateAndDetect(context.Background(), text, targetCode.String(), targetCode.Name())
	translate.RecordTranslationRequest(s.translator.Name(), time.Since(start), err, len(text), len(res.TranslatedText))

	s.fold(gen, res, err)
}

// fold merges one translation response (or fault) into session state,
// dropping it when a newer submission has superseded it.
func (s *Session) fold(gen uint64, res translate.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if gen != s.generation {
		staleResponsesDroppedTotal.Inc()
		s.logger.Debug("Dropping stale translation response")
		return
	}

	s.loading = false
	s.touchLocked()

	if err != nil {
		if errors.Is(err, translate.ErrMissingCredential) {
			// The previous output stays; only the error state changes.
			s.errState = &SessionError{
				Kind:    ErrorMissingCredential,
				Message: s.messages.MissingCredential(s.locale),
			}
			s.logger.Warn("Translation engine has no credential configured")
		} else {
			s.errState = &SessionError{
				Kind:    ErrorTranslationFailure,
				Message: s.messages.TranslationFailure(s.locale),
			}
			s.logger.WithError(err).Error("Translation request failed")
		}
		s.broadcastLocked()
		return
	}

	s.translatedText = res.TranslatedText

	source, target, outcome := reconcile(res.DetectedLanguage, s.sourceLang, s.targetLang)
	detectionOutcomesTotal.WithLabelValues(string(outcome)).Inc()

	if outcome == outcomeUnsupported {
		s.translatedText = ""
		s.errState = &SessionError{
			Kind:    ErrorTranslationFailure,
			Message: s.messages.UnsupportedLanguage(s.locale, language.DisplayName(res.DetectedLanguage)),
		}
		s.logger.WithFields(logrus.Fields{
			"detected_lang": res.DetectedLanguage,
		}).Warn("Detected language is not supported")
	} else {
		s.sourceLang, s.targetLang = source, target
	}

	s.logger.WithFields(logrus.Fields{
		"detected_lang": res.DetectedLanguage,
		"outcome":       outcome,
		"source_lang":   s.sourceLang,
		"target_lang":   s.targetLang,
	}).Debug("Translation response folded into session state")

	s.broadcastLocked()
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:             s.ID,
		SourceLang:     s.sourceLang,
		TargetLang:     s.targetLang,
		InputText:      s.inputText,
		TranslatedText: s.translatedText,
		Loading:        s.loading,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.lastActivity,
	}
	if s.errState != nil {
		e := *s.errState
		snap.Error = &e
	}
	return snap
}

// broadcastLocked delivers the current snapshot to every subscriber without
// blocking: a full channel drops its oldest snapshot to make room.
func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
