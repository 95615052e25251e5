package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrTableNotFound  = fmt.Errorf("%w: table", ErrNotFound)

	// Validation errors
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrDuplicateTable  = errors.New("duplicate table name")
	ErrLengthMismatch  = errors.New("column length mismatch")

	// Data errors
	ErrEmptyResult  = errors.New("empty result")
	ErrDecodeFailed = errors.New("source decode failed")
)

// NewColumnNotFoundError reports a missing column with context
func NewColumnNotFoundError(table, column string) error {
	return fmt.Errorf("%w: %q in table %q", ErrColumnNotFound, column, table)
}

// IsNotFoundError checks whether err is any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsEmptyResult checks whether err marks an empty (non-fatal) outcome
func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrEmptyResult)
}
