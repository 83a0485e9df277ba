// Package errors provides coded, structured errors for the envmerge host
// layers (configuration, contributor files, persistence, transport). The
// merge and apply core never returns errors.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Contributor errors
	ErrContributorInvalid ErrorCode = "CONTRIBUTOR_INVALID"
	ErrContributorAccess  ErrorCode = "CONTRIBUTOR_ACCESS"
	ErrMutatorInvalid     ErrorCode = "MUTATOR_INVALID"

	// State errors
	ErrStateLoad ErrorCode = "STATE_LOAD"
	ErrStateSave ErrorCode = "STATE_SAVE"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"

	// Process errors
	ErrExec ErrorCode = "EXEC"
)

// EnvmergeError represents a structured error with code and details
type EnvmergeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *EnvmergeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *EnvmergeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *EnvmergeError) Is(target error) bool {
	var targetErr *EnvmergeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new EnvmergeError with the given code and message
func New(code ErrorCode, message string) *EnvmergeError {
	return &EnvmergeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new EnvmergeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *EnvmergeError {
	return &EnvmergeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an EnvmergeError
func Wrap(err error, code ErrorCode, message string) *EnvmergeError {
	if err == nil {
		return nil
	}
	return &EnvmergeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *EnvmergeError {
	if err == nil {
		return nil
	}
	return &EnvmergeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *EnvmergeError) WithDetail(key string, value interface{}) *EnvmergeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var envErr *EnvmergeError
	if errors.As(err, &envErr) {
		return envErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an EnvmergeError
func GetErrorCode(err error) ErrorCode {
	var envErr *EnvmergeError
	if errors.As(err, &envErr) {
		return envErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an EnvmergeError
func GetErrorDetails(err error) map[string]interface{} {
	var envErr *EnvmergeError
	if errors.As(err, &envErr) {
		return envErr.Details
	}
	return nil
}
