package errors

import (
	"fmt"
	"net/http"
)

// Error codes used across the API surface.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeContentRejected = "CONTENT_REJECTED"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeStoreError      = "STORE_ERROR"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and
// a stable machine-readable code.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error.
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewUnauthorizedError creates a 401 Unauthorized error.
func NewUnauthorizedError(code string, message string) *AppError {
	return NewError(http.StatusUnauthorized, code, message)
}

// NewForbiddenError creates a 403 Forbidden error.
func NewForbiddenError(code string, message string) *AppError {
	return NewError(http.StatusForbidden, code, message)
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewInternalServerError creates a 500 Internal Server Error.
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// NewValidationError creates a 400 error for a missing or malformed
// request field.
func NewValidationError(message string) *AppError {
	return NewBadRequestError(CodeValidation, message)
}

// NewModerationRejection creates a 400 error carrying per-category
// severity scores for a message rejected by the content moderator.
func NewModerationRejection(scores any) *AppError {
	return NewBadRequestError(CodeContentRejected, "Message rejected by content moderation").
		WithDetails(scores)
}

// NewStoreError creates a 500 error for a persistence failure.
func NewStoreError(message string) *AppError {
	return NewInternalServerError(CodeStoreError, message)
}

// FromError converts a standard error to an AppError. If the error is
// already an AppError it is returned as-is; otherwise it is wrapped as
// an internal server error with a non-leaking message.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalServerError(CodeInternal, "An unexpected error occurred")
}

// GetStatusCode extracts the HTTP status code from an error,
// defaulting to 500 for non-AppError values.
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
