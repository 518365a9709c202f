// Package apperr declares the error kinds shared by every engine. Services wrap
// one of these sentinels so the HTTP layer can pick a status with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Validation returns a validation error carrying msg as its text.
func Validation(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

// New returns an error of the given kind whose text is msg alone.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
