// Package apperr defines the tagged error kind used across the brain
// service instead of matching exception messages at the HTTP edge.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purposes of HTTP status mapping and
// logging verbosity. It intentionally has no "internal"/"unknown" member:
// anything that isn't one of these is a bug, and should surface as a 500
// with full detail in the logs.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInfra      Kind = "infra"
)

// Error wraps a message with a Kind so the HTTP layer can map it to a
// status code without parsing strings.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Is lets errors.Is(err, apperr.ErrNotFound) read naturally by comparing
// against the sentinel error values below instead of a bare string.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.msg == ""
}

func new_(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

func Validation(msg string) error           { return new_(KindValidation, msg, nil) }
func Validationf(f string, a ...any) error  { return new_(KindValidation, fmt.Sprintf(f, a...), nil) }
func Auth(msg string) error                 { return new_(KindAuth, msg, nil) }
func Forbidden(msg string) error            { return new_(KindForbidden, msg, nil) }
func NotFound(msg string) error             { return new_(KindNotFound, msg, nil) }
func NotFoundf(f string, a ...any) error    { return new_(KindNotFound, fmt.Sprintf(f, a...), nil) }
func Conflict(msg string) error             { return new_(KindConflict, msg, nil) }
func Conflictf(f string, a ...any) error    { return new_(KindConflict, fmt.Sprintf(f, a...), nil) }
func Infra(msg string, cause error) error   { return new_(KindInfra, msg, cause) }

// Wrap attaches kind to an existing lower-level error, preserving it for
// errors.Unwrap/errors.As while giving the edge a Kind to classify on.
func Wrap(kind Kind, msg string, cause error) error {
	return new_(kind, msg, cause)
}

// KindOf extracts the Kind from err, defaulting to "" (unclassified) when
// err isn't an *Error — callers should treat "" as an internal/500 error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// sentinel kind values for errors.Is comparisons, e.g.:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrInfra      = &Error{Kind: KindInfra}
)
