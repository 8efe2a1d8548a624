// Package dispatch implements the handle context and dispatcher: the
// façade every handler runs behind, and the fixed functionality -> handler
// lookup table that drives it.
package dispatch

import (
	"errors"

	"github.com/hedera-core/txcore/core/status"
)

// Kind is the dispatch error taxonomy. Every recoverable kind converts
// locally into a record status at the handle context boundary; StateError
// is the only kind that escapes to the round executor.
type Kind int

const (
	KindPreCheck Kind = iota
	KindHandle
	KindResourceLimit
	KindState
	KindAuthorization
	KindSolvency
	KindUnknownFunctionality
)

// Error wraps a record status with the taxonomy kind that produced it.
// KindState is the only kind that is fatal to a round rather than a
// single transaction.
type Error struct {
	Kind   Kind
	Status status.Code
	msg    string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Status.String()
}

// IsFatal reports whether e must abort the round (StateError).
func (e *Error) IsFatal() bool { return e.Kind == KindState }

func newError(kind Kind, s status.Code, msg string) *Error {
	return &Error{Kind: kind, Status: s, msg: msg}
}

// PreCheckError converts to a record with the specific response code; no
// state mutation precedes it.
func PreCheckError(s status.Code, msg string) *Error { return newError(KindPreCheck, s, msg) }

// HandleError reverts the current savepoint; propagates status to the
// record.
func HandleError(s status.Code, msg string) *Error { return newError(KindHandle, s, msg) }

// ResourceLimitError is terminal for the current user transaction; reverts
// all its descendants.
func ResourceLimitError(s status.Code, msg string) *Error {
	return newError(KindResourceLimit, s, msg)
}

// StateError is a programming error: abort the round and flag ISS.
func StateError(msg string) *Error { return newError(KindState, status.HandlerFailure, msg) }

// AuthorizationError converts to a record with the appropriate
// authorization status.
func AuthorizationError(s status.Code, msg string) *Error {
	return newError(KindAuthorization, s, msg)
}

// SolvencyError converts to a record; no handler invocation follows it.
func SolvencyError(s status.Code, msg string) *Error { return newError(KindSolvency, s, msg) }

// UnknownFunctionalityError is raised by the dispatcher for an
// unrecognised body; it always carries InvalidTransactionBody.
func UnknownFunctionalityError(functionality string) *Error {
	return newError(KindUnknownFunctionality, status.InvalidTransactionBody,
		"dispatch: unknown functionality "+functionality)
}

// AsDispatchError unwraps err into an *Error if it is (or wraps) one.
func AsDispatchError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
