package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports bad input: missing required fields, invalid enum
// values, duplicate unique fields caught at validation time. Always recoverable.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports a missing referenced record (student, class, teacher...).
type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{message: msg}
}

func (err NotFoundError) Error() string {
	return err.message
}

// ConflictError reports a state conflict the caller may resolve with different
// input: class capacity exceeded, duplicate unique field, guarded deletion.
type ConflictError struct {
	message string
}

func NewConflictError(msg string) error {
	return &ConflictError{message: msg}
}

func (err ConflictError) Error() string {
	return err.message
}

// IntegrityError reports data corruption: two assignments simultaneously
// current, a record vanishing after a successful existence check. It is logged
// loudly and surfaced to callers as a generic internal failure; it must never
// crash the host process.
type IntegrityError struct {
	Err error
}

func NewIntegrityError(err error) error {
	return &IntegrityError{Err: err}
}

func (err IntegrityError) Error() string {
	if err.Err == nil {
		return "data integrity violation"
	}
	return err.Err.Error()
}

func IsIntegrityError(err error) bool {
	_, ok := errors.Cause(err).(*IntegrityError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
