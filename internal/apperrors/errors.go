package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable error category returned to clients.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization_error"
	KindSelfParent    Kind = "self_parent"
	KindCrossBot      Kind = "cross_bot"
	KindCycle         Kind = "cycle"
	KindHasDependents Kind = "has_dependents"
	KindStorage       Kind = "storage_error"
)

// Error carries a stable kind plus a human message. Storage failures wrap
// the underlying cause; everything else is detected locally and final.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to the status code of the REST surface.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindSelfParent, KindCrossBot, KindCycle:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindHasDependents:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", what)}
}

// Forbidden never discloses whether the target exists, only that access
// was denied.
func Forbidden() *Error {
	return &Error{Kind: KindAuthorization, Message: "forbidden"}
}

func SelfParent() *Error {
	return &Error{Kind: KindSelfParent, Message: "a folder cannot be its own parent"}
}

func CrossBot() *Error {
	return &Error{Kind: KindCrossBot, Message: "parent folder belongs to a different bot"}
}

func Cycle() *Error {
	return &Error{Kind: KindCycle, Message: "move would create a cycle in the folder tree"}
}

func HasDependents(message string) *Error {
	return &Error{Kind: KindHasDependents, Message: message}
}

func Storage(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, cause: cause}
}

// AsError extracts an *Error from err, or wraps err as a storage error so
// handlers always have a kind to report.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Storage("unexpected error", err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
