package thought

import (
	"errors"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
)

// Kind classifies every failure the service reports.
type Kind string

const (
	KindValidationFailed Kind = "ValidationFailed"
	KindNotFound         Kind = "NotFound"
	KindMalformedInput   Kind = "MalformedInput"
	KindStorageFailed    Kind = "StorageFailed"
)

// Error is the stable, serializable failure shape.
type Error struct {
	Kind    Kind                `json:"kind"`
	Message string              `json:"message"`
	Fields  []thought.Violation `json:"fields,omitempty"`

	cause error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// ValidationFailed wraps a rule violation.
func ValidationFailed(verr *thought.ValidationError) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Message: verr.Error(),
		Fields:  verr.Violations,
		cause:   verr,
	}
}

// NotFound reports a missing thought.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "thought not found", cause: thought.ErrNotFound}
}

// MalformedInput reports input that could not be understood.
func MalformedInput(message string, cause error) *Error {
	return &Error{Kind: KindMalformedInput, Message: message, cause: cause}
}

// StorageFailed hides driver details behind a generic message; the cause
// stays reachable through errors.Unwrap for logging.
func StorageFailed(cause error) *Error {
	return &Error{Kind: KindStorageFailed, Message: "storage operation failed", cause: cause}
}

// KindOf returns the kind of err, or KindStorageFailed for foreign errors.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindStorageFailed
}
