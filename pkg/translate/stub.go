package translate

import (
	"context"
	"time"
	"unicode"
)

// StubEntry is one canned phrase in the stub dictionary.
type StubEntry struct {
	// Detected is the language code the stub reports for the phrase.
	Detected string
	// Translations maps target language codes to the canned translation.
	Translations map[string]string
}

// StubTranslatorConfig configures the stub translator behavior.
type StubTranslatorConfig struct {
	// ProcessingDelay simulates remote call latency.
	ProcessingDelay time.Duration
	// Dictionary maps source phrases to canned results. Phrases not in the
	// dictionary get a "[target] " prefix and heuristic detection.
	Dictionary map[string]StubEntry
}

// DefaultStubTranslatorConfig returns sensible defaults for demos and tests.
func DefaultStubTranslatorConfig() *StubTranslatorConfig {
	return &StubTranslatorConfig{
		ProcessingDelay: 10 * time.Millisecond,
		Dictionary: map[string]StubEntry{
			"Olá": {
				Detected:     "pt",
				Translations: map[string]string{"en": "Hello", "es": "Hola", "fr": "Salut"},
			},
			"Olá, mundo!": {
				Detected:     "pt",
				Translations: map[string]string{"en": "Hello, world!", "es": "¡Hola, mundo!"},
			},
			"Hello": {
				Detected:     "en",
				Translations: map[string]string{"pt": "Olá", "es": "Hola", "de": "Hallo"},
			},
			"Good morning": {
				Detected:     "en",
				Translations: map[string]string{"pt": "Bom dia", "es": "Buenos días", "it": "Buongiorno"},
			},
			"Obrigado pela ajuda": {
				Detected:     "pt",
				Translations: map[string]string{"en": "Thank you for the help"},
			},
		},
	}
}

// StubTranslator is an offline Translator with deterministic output. It
// backs tests and the credential-free demo mode of the server.
type StubTranslator struct {
	config *StubTranslatorConfig
}

// NewStubTranslator creates a stub translator with the given config; nil
// selects the defaults.
func NewStubTranslator(config *StubTranslatorConfig) *StubTranslator {
	if config == nil {
		config = DefaultStubTranslatorConfig()
	}
	return &StubTranslator{config: config}
}

// TranslateAndDetect returns the canned translation when the phrase is in
// the dictionary and a "[target] " prefixed echo otherwise. Detection uses
// the dictionary entry when available, falling back to a script/diacritic
// heuristic.
func (s *StubTranslator) TranslateAndDetect(ctx context.Context, text string, targetCode, targetName string) (Result, error) {
	if s.config.ProcessingDelay > 0 {
		select {
		case <-time.After(s.config.ProcessingDelay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	if entry, ok := s.config.Dictionary[text]; ok {
		translated, ok := entry.Translations[targetCode]
		if !ok {
			translated = "[" + targetCode + "] " + text
		}
		return Result{
			DetectedLanguage: entry.Detected,
			TranslatedText:   translated,
		}, nil
	}

	return Result{
		DetectedLanguage: detectHeuristic(text),
		TranslatedText:   "[" + targetCode + "] " + text,
	}, nil
}

// CheckHealth always succeeds; the stub has no remote dependency.
func (s *StubTranslator) CheckHealth(ctx context.Context) error {
	return nil
}

// Name identifies the engine in logs and metrics.
func (s *StubTranslator) Name() string {
	return "stub"
}

// detectHeuristic performs a lightweight script/diacritic detection good
// enough for demos. Returns an ISO 639-1 code or "" when undetermined.
func detectHeuristic(s string) string {
	var letters, ascii, kana, han, hangul, cyrillic, arabic, devanagari int
	var pt, es, de, fr int

	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			ascii++
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case r >= 0x00C0 && r <= 0x017F:
			// Diacritic hints for the Latin-script languages.
			switch r {
			case 'ã', 'õ', 'Ã', 'Õ':
				pt++
			case 'ñ', 'Ñ', 'í', 'Í':
				es++
			case 'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü', 'ß':
				de++
			case 'è', 'ê', 'ù', 'È', 'Ê', 'Ù':
				fr++
			}
		}
	}

	if letters == 0 {
		return ""
	}

	switch {
	case kana > 0:
		return "ja"
	case hangul > 0:
		return "ko"
	case han > 0:
		return "zh"
	case cyrillic > 0:
		return "ru"
	case arabic > 0:
		return "ar"
	case devanagari > 0:
		return "hi"
	}

	switch {
	case pt > es && pt > de && pt > fr:
		return "pt"
	case es > pt && es > de && es > fr:
		return "es"
	case de > pt && de > es && de > fr:
		return "de"
	case fr > pt && fr > es && fr > de:
		return "fr"
	}

	// Predominantly ASCII letters: assume English.
	if ascii*100/letters > 80 {
		return "en"
	}
	return ""
}
