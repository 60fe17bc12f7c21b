package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures so adapters can map them to status codes.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindAlreadyExists
	KindMalformedInput
	KindExternalFailure
	KindIOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindMalformedInput:
		return "malformed input"
	case KindExternalFailure:
		return "external failure"
	case KindIOFailure:
		return "io failure"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by every engine and by the manager.
type Error struct {
	Kind ErrorKind
	Op   string // operation, e.g. "create zone"
	Msg  string
	Err  error
}

// Sentinels for errors.Is. They carry only a kind and match any *Error of that kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrAlreadyExists   = &Error{Kind: KindAlreadyExists}
	ErrMalformedInput  = &Error{Kind: KindMalformedInput}
	ErrExternalFailure = &Error{Kind: KindExternalFailure}
	ErrIOFailure       = &Error{Kind: KindIOFailure}
)

// ErrTimeout marks an external call that did not finish in time. It is wrapped in an
// ExternalFailure so callers can tell a slow server from a failing one.
var ErrTimeout = errors.New("timed out")

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return e.Kind.String()
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches bare sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// E builds an *Error with a formatted message.
func E(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to err. Errors that are already classified
// keep their kind. A nil err yields nil.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	var inner *Error
	if errors.As(err, &inner) {
		kind = inner.Kind
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op, format string, args ...any) *Error {
	return E(KindNotFound, op, format, args...)
}

func AlreadyExists(op, format string, args ...any) *Error {
	return E(KindAlreadyExists, op, format, args...)
}

func Malformed(op, format string, args ...any) *Error {
	return E(KindMalformedInput, op, format, args...)
}

// KindOf returns the kind of the outermost *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
