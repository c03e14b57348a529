// Package apperr carries the error taxonomy shared by repositories,
// use-cases and facades. Operations return plain errors; callers inspect
// the kind with KindOf instead of matching on strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindQuery      Kind = "query_error"
	KindSave       Kind = "save_error"
	KindConflict   Kind = "conflict"
	KindUpstream   Kind = "upstream_error"
	KindValidation Kind = "validation_error"
	KindInternal   Kind = "internal_error"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func NotFound(what string) *Error {
	return Newf(KindNotFound, "%s not found", what)
}

// KindOf returns the taxonomy kind of err, or KindInternal for errors that
// did not originate in this module.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
