// Package apperr defines the closed set of error kinds the API reports.
//
// Every error that crosses a service boundary is an *Error with one of the Kind
// constants below. Handlers translate the kind into an HTTP status and never
// expose the wrapped cause to clients.
package apperr

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUpstream     Kind = "upstream"
	KindInternal     Kind = "internal"
)

// Error is the API error value.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages
	Fields map[string]string
	// Redirect is the client route to follow instead of retrying
	Redirect string
	cause    error
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

// WithRedirect returns a copy of e pointing the client at route.
func (e *Error) WithRedirect(route string) *Error {
	cp := *e
	cp.Redirect = route
	return &cp
}

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause. The cause gets a stack trace
// attached so that zerolog can print it.
func Wrap(cause error, kind Kind, message string) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// Validation builds a validation error with field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }

// Internal wraps an unexpected failure.
func Internal(cause error, message string) *Error {
	return Wrap(cause, KindInternal, message)
}

// Upstream wraps a failure of an external HTTP service.
func Upstream(cause error, message string) *Error {
	return Wrap(cause, KindUpstream, message)
}

// As extracts an *Error from err. Errors that are not *Error become internal errors.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err, "internal server error")
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	return As(err).Kind
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
