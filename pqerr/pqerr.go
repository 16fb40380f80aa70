// Package pqerr enumerates the error kinds the core produces, per spec.md
// §7. Grounded on the teacher's errors.go: a stable Kind usable with
// errors.Is plus a PgError carrying the SQLSTATE fields libpq surfaces on
// result errors.
package pqerr

import (
	errors "golang.org/x/xerrors"
)

// Kind is a stable identifier for one of the core's error categories.
type Kind string

const (
	ConnAllocateFailed  Kind = "ConnAllocateFailed"
	ConnectFailed       Kind = "ConnectFailed"
	QueryFailed         Kind = "QueryFailed"
	NetworkError        Kind = "NetworkError"
	InvalidMigrationsDir Kind = "InvalidMigrationsDir"
)

// Error wraps an underlying cause with a stable Kind.
type Error struct {
	Kind  Kind
	Cause error
}

func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, pqerr.New(pqerr.QueryFailed, nil)) or, more commonly,
// IsKind(err, pqerr.QueryFailed).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind reports whether err (or any error it wraps) carries kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// ErrNotFound is returned by Header lookups that fail to match.
var ErrNotFound = errors.New("pqresult: column not found")

// PgError represents an error reported by the PostgreSQL server. See
// https://www.postgresql.org/docs/current/protocol-error-fields.html.
type PgError struct {
	Severity string
	Code     string
	Message  string
	Detail   string
	Hint     string
}

func (pe *PgError) Error() string {
	return pe.Severity + ": " + pe.Message + " (SQLSTATE " + pe.Code + ")"
}
