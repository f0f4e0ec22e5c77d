// Package apperror defines the failure type shared by every pipeline stage.
// A failure carries the HTTP status and the client-facing message; the error
// translator is the only place that turns one into a response.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates the failure variants.
type Kind string

const (
	KindAuthRequired     Kind = "auth_required"
	KindAuthInvalid      Kind = "auth_invalid"
	KindValidationFailed Kind = "validation_failed"
	KindNotFound         Kind = "not_found"
	KindUnexpected       Kind = "unexpected"
)

// DefaultMessage is sent whenever a failure has no message of its own, and
// for every unexpected failure.
const DefaultMessage = "Something went wrong!"

// Error is a typed failure condition.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Err is the underlying cause. It is logged, never sent to the client.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AuthRequired reports a missing credential.
func AuthRequired(message string) *Error {
	return &Error{Kind: KindAuthRequired, Status: http.StatusUnauthorized, Message: message}
}

// AuthInvalid reports a credential that does not match the configured secret.
func AuthInvalid(message string) *Error {
	return &Error{Kind: KindAuthInvalid, Status: http.StatusForbidden, Message: message}
}

// ValidationFailed reports a payload rejected by shape, type or range checks.
func ValidationFailed(message string, cause error) *Error {
	return &Error{Kind: KindValidationFailed, Status: http.StatusBadRequest, Message: message, Err: cause}
}

// NotFound reports that no product matches the requested id.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unexpected wraps a defect. The message shown to clients is always DefaultMessage.
func Unexpected(cause error) *Error {
	return &Error{Kind: KindUnexpected, Status: http.StatusInternalServerError, Message: DefaultMessage, Err: cause}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindNotFound
}

// StatusOf returns the status associated with err, defaulting to 500.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
