// Package apperr defines the application error taxonomy. Every failure a
// handler can surface maps to one of these kinds, and the kind decides the
// HTTP status code at the response boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// Validation covers missing or invalid input: absent approver emails,
	// invalid access codes, oversized attachments.
	Validation Kind = iota + 1
	// Auth covers bad credentials, inactive or banned accounts, and
	// company mismatches.
	Auth
	// NotFound covers absent tenants, profiles, tasks and requests.
	NotFound
	// Conflict covers states that already moved on: duplicate registrations,
	// already-decided requests, tasks no longer awaiting verification.
	Conflict
	// Backend covers transport or store failures.
	Backend
)

// Error carries a kind, a user-presentable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err; unknown errors are Backend failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Backend
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the handler should return
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the user-presentable message for an error. Backend
// causes are not leaked to clients.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
