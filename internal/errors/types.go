package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type
type ErrorCode string

const (
	// Configuration errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Storage errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY"

	// External service errors
	ErrCodeUpstreamAPI ErrorCode = "UPSTREAM_API"
	ErrCodeNotifierAPI ErrorCode = "NOTIFIER_API"

	// Validation errors
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Moderation errors
	ErrCodeModerationRefused ErrorCode = "MODERATION_REFUSED"

	// Internal errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeTimeout       ErrorCode = "TIMEOUT"
	ErrCodeSuperseded    ErrorCode = "SUPERSEDED"
)

// AppError represents a structured application error
type AppError struct {
	Code        ErrorCode      `json:"code"`
	Message     string         `json:"message"`
	Cause       error          `json:"-"`
	Context     map[string]any `json:"context,omitempty"`
	Retryable   bool           `json:"retryable"`
	UserMessage string         `json:"user_message,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithUserMessage sets a user-friendly message
func (e *AppError) WithUserMessage(msg string) *AppError {
	e.UserMessage = msg
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapRetryable wraps an error and marks it as retryable
func WrapRetryable(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if appErr, ok := As(err); ok {
		return appErr.Retryable
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// GetUserMessage extracts a user-friendly message from an error
func GetUserMessage(err error) string {
	if appErr, ok := As(err); ok && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return "An internal error occurred"
}
