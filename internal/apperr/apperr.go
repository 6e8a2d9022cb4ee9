// Package apperr defines the discriminated error kinds callers match on
// instead of inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Malformed input, rejected before any persistence.
	KindValidation Kind = "VALIDATION"
	// Unknown request/route/vehicle combination; no state change.
	KindNotFound Kind = "NOT_FOUND"
	// Routing provider unreachable or returned a failure.
	KindProvider Kind = "PROVIDER"
	// The persistent store rejected a read or write.
	KindPersistence Kind = "PERSISTENCE"
	// Missing or unverifiable credentials.
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindInternal     Kind = "INTERNAL"
)

// Error carries a kind alongside the message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Provider(message string, err error) *Error {
	return Wrap(KindProvider, message, err)
}

func Persistence(message string, err error) *Error {
	return Wrap(KindPersistence, message, err)
}

func Unauthorized(message string, err error) *Error {
	return Wrap(KindUnauthorized, message, err)
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
