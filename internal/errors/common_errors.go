package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFetch             ErrorType = "FETCH"
	ErrTypeParsing           ErrorType = "PARSING"
	ErrTypeConfig            ErrorType = "CONFIG"
	ErrTypeMissingDependency ErrorType = "MISSING_DEPENDENCY"
	ErrTypeStorage           ErrorType = "STORAGE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Fatal reports whether the error must abort the run. Only row-level
// parsing errors are recoverable.
func (e *AppError) Fatal() bool {
	return e.Type != ErrTypeParsing
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewFetchError creates a network or API failure error
func NewFetchError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFetch, message, cause)
}

// NewParsingError creates a row-level parsing error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewColumnNotFoundError creates the configuration error raised when a
// table has no column matching the requested label.
func NewColumnNotFoundError(want string, labels []string) *AppError {
	return NewConfigError(fmt.Sprintf("column not found: no label matches %q", want), nil).
		WithContext("labels", labels)
}

// NewMissingDependencyError creates an error for an absent upstream output.
// The message tells the operator which step produces the file.
func NewMissingDependencyError(path, producer string) *AppError {
	return NewAppError(ErrTypeMissingDependency,
		fmt.Sprintf("%s not found: run %q first to create it", path, producer), nil).
		WithContext("path", path).
		WithContext("producer", producer)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// IsType reports whether err, or any error it wraps, is an AppError of the
// given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or an
// empty string.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
