package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All components MUST use these constants instead of hardcoded strings.
const (
	// Validation
	ErrCodeValidationInvalidInput ErrorCode = "validation_invalid_input"
	ErrCodeValidationThresholds   ErrorCode = "validation_invalid_thresholds"

	// Store
	ErrCodeStoreWrite ErrorCode = "store_write_failed"
	ErrCodeStoreRead  ErrorCode = "store_read_failed"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// Recoverable reports whether an error with this code can be corrected by
// asking the user for new input. Store and internal failures are surfaced
// once and never retried.
func (c ErrorCode) Recoverable() bool {
	return strings.HasPrefix(string(c), "validation_")
}

// AppError is the standard application error type used throughout the tool.
// All domain errors should be expressed as AppError so that the presentation
// layer can decide between re-prompting and reporting.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error with the provided details merged in.
// This is useful for adding context without mutating the original error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error. This is the standard constructor for domain errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// InvalidInput builds a validation_invalid_input error.
func InvalidInput(format string, args ...any) *AppError {
	return NewAppError(ErrCodeValidationInvalidInput, fmt.Sprintf(format, args...), nil)
}

// StoreWriteError wraps an I/O failure on the history file.
func StoreWriteError(path string, err error) *AppError {
	return NewAppError(ErrCodeStoreWrite, fmt.Sprintf("could not save data to %s", path), err)
}

// StoreReadError wraps an I/O or parse failure on the history file.
func StoreReadError(path string, err error) *AppError {
	return NewAppError(ErrCodeStoreRead, fmt.Sprintf("could not read data from %s", path), err)
}

// CodeOf extracts the ErrorCode from anywhere in err's chain. Errors that
// are not AppErrors report ErrCodeInternalUnexpected.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalUnexpected
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
