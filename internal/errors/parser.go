package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ParseError classifies a raw storage error into an AppError. Errors that are
// already AppErrors pass through unchanged. context names the operation
// ("create location") and becomes part of the message.
func ParseError(err error, context string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: context + ": record not found", Err: err}
	}

	if IsUniqueViolation(err) {
		return &AppError{Kind: KindConflict, Code: ResourceAlreadyExists, Message: context + ": record already exists", Err: err}
	}

	if IsForeignKeyViolation(err) {
		return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: context + ": referenced record does not exist", Err: err}
	}

	errLower := strings.ToLower(err.Error())
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || strings.Contains(errLower, "check constraint") {
		return &AppError{Kind: KindValidation, Code: ValidationInvalidRange, Message: context + ": value out of range", Err: err}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return &AppError{Kind: KindUnexpected, Code: InternalExternalAPI, Message: context + ": upstream unavailable", Err: err}
	}

	return Unexpected(err, context)
}

// IsUniqueViolation matches translated GORM errors as well as raw
// PostgreSQL (23505) and SQLite messages.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") ||
		strings.Contains(errLower, "sqlstate 23505")
}

func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "foreign key constraint") ||
		strings.Contains(errLower, "sqlstate 23503")
}
