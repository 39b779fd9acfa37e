package common

import (
	"context"
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
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

// Common application errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrDatabase         = errors.New("database error")
	ErrValidation       = errors.New("validation failed")
	ErrEmptyInput       = errors.New("empty medical report")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrTimeout          = errors.New("request timed out")
)

// Error codes carried by AppError and recorded in the audit store.
const (
	CodeEmptyInput       = "EMPTY_INPUT"
	CodeModelUnavailable = "MODEL_UNAVAILABLE"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ModelUnavailable wraps a backend failure so callers can test it with errors.Is.
func ModelUnavailable(model string, cause error) error {
	return NewAppError(CodeModelUnavailable, model, errors.Join(ErrModelUnavailable, cause))
}

// AsTimeout maps context expiry to ErrTimeout and leaves other errors untouched.
func AsTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewAppError(CodeTimeout, "pipeline deadline exceeded", errors.Join(ErrTimeout, err))
	}
	return err
}

// ErrorCode classifies err for logs and the audit store.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return CodeEmptyInput
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrModelUnavailable):
		return CodeModelUnavailable
	}
	return CodeInternal
}
