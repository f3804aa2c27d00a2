// Package apperror defines the typed errors that cross the HTTP boundary.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the client without exposing backend detail.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindDecode     Kind = "decode_error"
	KindIO         Kind = "io_error"
	KindStorage    Kind = "storage_error"
	KindInternal   Kind = "internal_error"
)

// Error is a classified failure. Message is safe to show to clients,
// Internal is only ever logged.
type Error struct {
	Kind     Kind
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// StatusCode is the HTTP status for the error. Every kind, validation
// included, is reported as a 500; clients tell failures apart by Kind.
func (e *Error) StatusCode() int {
	return http.StatusInternalServerError
}

// Validation reports a malformed or incomplete request.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Decode wraps a payload decoding failure.
func Decode(err error, message string) *Error {
	return &Error{Kind: KindDecode, Message: message, Internal: err}
}

// IO wraps a local filesystem failure.
func IO(err error, message string) *Error {
	return &Error{Kind: KindIO, Message: message, Internal: err}
}

// Storage wraps a failure reported by the object-storage backend.
func Storage(err error, message string) *Error {
	return &Error{Kind: KindStorage, Message: message, Internal: err}
}

// From returns err as an *Error, classifying unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Internal: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
