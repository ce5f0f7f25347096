// Package fault carries service-level failures as a tagged error type so
// transports can map each kind to a response code without inspecting
// messages.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: a referenced entity does not exist.
	KindNotFound
	// KindInvalid: malformed or inconsistent input, e.g. a provider that
	// does not offer the requested service.
	KindInvalid
	// KindConflict: scheduling conflicts (no availability, slot taken) and
	// uniqueness violations.
	KindConflict
	// KindInvalidTransition: a booking status change not permitted by the
	// transition table.
	KindInvalidTransition
	// KindForbidden: the actor lacks authorization for the operation.
	KindForbidden
	// KindUnauthenticated: missing or invalid credentials.
	KindUnauthenticated
)

type Error struct {
	kind Kind
	msg  string
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
