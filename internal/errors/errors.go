// Package errors defines the typed error kinds meta-secret propagates
// across layer boundaries, per the error handling design: cryptographic,
// invalid event cast, conflict, not found, transport, and semantic-policy
// failures each carry a distinct sentinel so callers can branch on kind
// without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for retry/propagation decisions.
type Kind string

const (
	KindCryptographic  Kind = "cryptographic"
	KindInvalidCast    Kind = "invalid_event_cast"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindTransport      Kind = "transport"
	KindSemanticPolicy Kind = "semantic_policy"
)

// Error wraps an underlying cause with a Kind and a message, so that
// higher layers can decide whether to retry (Transport), surface to the
// user (NotFound, SemanticPolicy), or reject outright (InvalidCast,
// Conflict, Cryptographic).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

var (
	ErrConflict          = New(KindConflict, "artifact id is not the current free id")
	ErrNotFound          = New(KindNotFound, "resource not found")
	ErrInsufficientShares = New(KindCryptographic, "insufficient shares to recover secret")
	ErrNotAMember        = New(KindSemanticPolicy, "sender is not a vault member")
)
