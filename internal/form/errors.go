package form

import (
	"errors"
	"time"
)

// ConfigurationError is a fatal, non-recoverable configuration failure.
// It halts the quiz flow; the only recovery is reloading a corrected
// document.
type ConfigurationError struct {
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func configError(msg string, details map[string]any) *ConfigurationError {
	return &ConfigurationError{
		Message:   msg,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// Session operation errors. Field validation failures are never
// surfaced this way; they land in the session's per-question error map.
var (
	ErrUnknownQuestion    = errors.New("response does not target the current question")
	ErrSessionComplete    = errors.New("session is already complete")
	ErrSessionNotComplete = errors.New("session has unanswered questions")
	ErrInvalidResponse    = errors.New("current response failed validation")
	ErrFinalizeInProgress = errors.New("finalize already in progress")
)

// SubmissionErrorKey is the reserved error-map key for session-level
// submission failures.
const SubmissionErrorKey = "submission"
