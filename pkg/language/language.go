// Package language defines the closed set of languages the translator UI
// offers as source/target selections, along with display-name resolution
// and normalization of detector output.
package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Code is an ISO 639-1 style language code (e.g. "en", "pt").
type Code string

const (
	// DefaultSource is the source selection a fresh session starts with.
	DefaultSource Code = "pt"
	// DefaultTarget is the target selection a fresh session starts with.
	DefaultTarget Code = "en"
)

// supported is the fixed set of selectable languages, in display order.
// The set is closed at process start; detection results outside it are
// reported as unsupported rather than added dynamically.
var supported = []Code{
	"en", "pt", "es", "fr", "de", "it", "ja", "ru", "zh", "hi", "ar", "ko",
}

var supportedSet = func() map[Code]struct{} {
	m := make(map[Code]struct{}, len(supported))
	for _, c := range supported {
		m[c] = struct{}{}
	}
	return m
}()

// Supported returns the selectable language codes in display order.
func Supported() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether code is a member of the supported set.
func IsSupported(code Code) bool {
	_, ok := supportedSet[code]
	return ok
}

// Normalize converts a detector- or API-supplied language code to the base
// ISO 639-1 form used internally.
// Examples:
//   - "EN"    -> "en"
//   - "pt-BR" -> "pt"
//   - "zh_CN" -> "zh"
func Normalize(raw string) Code {
	lang := strings.ToLower(strings.TrimSpace(raw))

	// Handle BCP 47 tags by taking the base subtag before "-" or "_".
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}

	return Code(lang)
}

// String implements fmt.Stringer.
func (c Code) String() string {
	return string(c)
}

// Name returns the English display name for the code (e.g. "pt" ->
// "Portuguese"). Codes that cannot be resolved fall back to the raw code, so
// the UI always has something to show.
func (c Code) Name() string {
	return DisplayName(string(c))
}

// NativeName returns the language's name in itself (e.g. "pt" ->
// "português"), falling back to the raw code when unresolvable.
func (c Code) NativeName() string {
	tag, err := xlang.Parse(string(c))
	if err != nil {
		return string(c)
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return string(c)
}

// DisplayName resolves an arbitrary language code to an English display
// name. It accepts codes outside the supported set (used when naming an
// unsupported detected language in an error message) and falls back to the
// raw code when resolution fails.
func DisplayName(raw string) string {
	if raw == "" {
		return ""
	}
	tag, err := xlang.Parse(raw)
	if err != nil {
		return raw
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return raw
}
