package session

// ErrorKind classifies a session-level fault.
type ErrorKind string

const (
	// ErrorMissingCredential means no API credential is configured for the
	// translation engine. Not recoverable from the widget; the user has to
	// set up a credential.
	ErrorMissingCredential ErrorKind = "missing_credential"
	// ErrorTranslationFailure covers transport errors, malformed engine
	// responses and unsupported detected languages. Recoverable via retry.
	ErrorTranslationFailure ErrorKind = "translation_failure"
)

// SessionError is the visible error state of a session. Message is already
// localized for the session's UI locale.
type SessionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Retryable reports whether resubmitting the last text can clear the error.
func (e *SessionError) Retryable() bool {
	return e != nil && e.Kind == ErrorTranslationFailure
}
