package errors

import (
	"errors"
	"fmt"
)

// Kind is the coarse failure class used to pick an HTTP status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "unexpected"
	}
}

// AppError is the error type returned by services. Sentinel values are
// compared with errors.Is; detail is added by wrapping them with %w.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func NotFound(code, message string) *AppError {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) *AppError {
	return New(KindConflict, code, message)
}

func Validation(code, message string) *AppError {
	return New(KindValidation, code, message)
}

// Unexpected wraps a storage or transport failure, keeping the cause
// message for diagnostics.
func Unexpected(err error, message string) *AppError {
	return &AppError{Kind: KindUnexpected, Code: InternalDatabaseError, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// As is a shorthand for errors.As with *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
