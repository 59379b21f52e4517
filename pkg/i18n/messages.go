// Package i18n renders the widget's user-facing messages (error banners,
// affordance hints) in the session's UI locale.
package i18n

import (
	"embed"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	xlang "golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// DefaultLocale is used when a session does not specify a UI locale.
const DefaultLocale = "en"

// Messages is a thin wrapper around go-i18n's Bundle/Localizer for the
// fixed catalog of widget messages.
type Messages struct {
	bundle      *goi18n.Bundle
	defaultLang xlang.Tag
	logger      *logrus.Logger
}

// NewMessages builds a Messages catalog backed by the embedded
// active.*.toml files, using defaultLocale (e.g. "en") as the fallback.
func NewMessages(defaultLocale string, logger *logrus.Logger) *Messages {
	if logger == nil {
		logger = logrus.New()
	}

	tag, err := xlang.Parse(defaultLocale)
	if err != nil {
		tag = xlang.English
	}

	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.pt.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"file": file,
			}).Error("Failed to load embedded locale file")
		}
	}

	return &Messages{
		bundle:      bundle,
		defaultLang: tag,
		logger:      logger,
	}
}

// MissingCredential is the banner shown when no API credential is
// configured; it points the user at credential setup.
func (m *Messages) MissingCredential(locale string) string {
	return m.t(locale, "ErrMissingAPIKey", nil)
}

// TranslationFailure is the generic retryable failure banner.
func (m *Messages) TranslationFailure(locale string) string {
	return m.t(locale, "ErrTranslationFailed", nil)
}

// UnsupportedLanguage names the detected-but-unsupported language in the
// failure banner. languageName should already be display-resolved.
func (m *Messages) UnsupportedLanguage(locale, languageName string) string {
	return m.t(locale, "ErrUnsupportedLanguage", map[string]any{
		"Language": languageName,
	})
}

// t renders the message identified by key for the given locale, falling
// back to the default locale and finally to the key itself.
func (m *Messages) t(locale, key string, data map[string]any) string {
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, m.defaultLang.String())

	localizer := goi18n.NewLocalizer(m.bundle, languages...)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"key":     key,
			"locales": languages,
		}).Warn("Message localization failed")
		return key
	}
	return msg
}
