package translate

import (
	"context"
	"errors"
)

// ErrMissingCredential is returned when the configured engine requires an
// API credential and none is present. The UI surfaces this as a
// configuration problem rather than a retryable failure.
var ErrMissingCredential = errors.New("translate: no API credential configured")

// Result is the outcome of one translate-and-detect call.
type Result struct {
	// DetectedLanguage is the ISO 639-1 style code of the input text as
	// identified by the engine. It may be empty (undetermined input) or a
	// code outside the UI's supported set; callers decide what to do with it.
	DetectedLanguage string
	// TranslatedText is the translation into the requested target language.
	TranslatedText string
}

// Translator defines the interface for remote translate-and-detect backends.
// This abstraction allows us to switch between different engines
// (Gemini, LibreTranslate, the offline stub) without changing the session
// orchestration.
type Translator interface {
	// TranslateAndDetect translates text into the target language and
	// reports the language the engine detected the text to be in.
	// targetCode is an ISO 639-1 code (e.g. "en"); targetName is its
	// human-readable display name, which prompt-based engines embed in
	// their instructions.
	TranslateAndDetect(ctx context.Context, text string, targetCode, targetName string) (Result, error)

	// CheckHealth verifies that the engine is ready and operational.
	CheckHealth(ctx context.Context) error

	// Name identifies the engine in logs and metrics.
	Name() string
}
