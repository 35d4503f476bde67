// Package apperr defines the error categories surfaced by the API. Callers
// branch on the kind, never on the message text.
package apperr

import "errors"

// Kind classifies a failure.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidArgument Kind = "invalid_argument"
	KindInternal        Kind = "internal"
)

// Error is a categorized failure with a human-readable message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NotFound reports a missing entity.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a uniqueness violation, e.g. a slug collision.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// InvalidArgument reports rejected input.
func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

// Internal reports an unexpected failure.
func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// KindOf extracts the kind from err, defaulting to KindInternal for errors
// that did not originate from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
