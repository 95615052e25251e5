package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes, following the pipeline failure taxonomy:
// absent sources and unmergeable tables are skipped, decode failures
// skip the file, stage failures pass the table through unchanged.
const (
	CodeSourceAbsent  = "SOURCE_ABSENT"
	CodeDecodeFailed  = "DECODE_FAILED"
	CodeStageFailed   = "STAGE_FAILED"
	CodeEmptyResult   = "EMPTY_RESULT"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInternalError = "INTERNAL_ERROR"
)

// Common error constructors
func SourceAbsent(message string) *AppError {
	return New(CodeSourceAbsent, message)
}

func DecodeFailed(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeDecodeFailed,
		Message: fmt.Sprintf("failed to decode %s", path),
		Cause:   cause,
	}
}

func StageFailed(stage string, cause error) *AppError {
	return &AppError{
		Code:    CodeStageFailed,
		Message: fmt.Sprintf("stage %s failed", stage),
		Cause:   cause,
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
