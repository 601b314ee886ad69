package services

import (
	"errors"

	"github.com/biciguard/biciguard-backend/internal/store"
)

// Kind is the machine-checkable error classification shared by all services.
// The HTTP layer maps kinds to status codes; services never emit status codes
// themselves.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalid      Kind = "validation_failure"
	KindUnauthorized Kind = "unauthorized"
	KindPartial      Kind = "partial_failure"
	KindStore        Kind = "store_failure"
)

// Error is the tagged error every service method returns on failure.
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

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Invalid(msg string) *Error      { return &Error{Kind: KindInvalid, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Partial marks a multi-step operation where a later step failed after an
// earlier write committed. Operators should run reconciliation rather than
// retry blindly.
func Partial(msg string, err error) *Error {
	return &Error{Kind: KindPartial, Message: msg, Err: err}
}

func StoreFailure(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

// KindOf extracts the kind from any error; unclassified errors count as
// store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// fromStore classifies a store error: missing documents become NotFound with
// the given message, duplicate keys become Conflict, anything else is a
// store failure.
func fromStore(err error, notFoundMsg, conflictMsg string) *Error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return NotFound(notFoundMsg)
	case errors.Is(err, store.ErrDuplicate):
		return Conflict(conflictMsg)
	default:
		return StoreFailure("store operation failed", err)
	}
}
