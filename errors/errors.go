package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Upload error constructors ---

// TypeMismatch creates an AppError for a declared type that failed the
// extension-consistency or allow-list check.
func TypeMismatch(declaredType, filename string) *AppError {
	details := map[string]any{"type": declaredType}
	if filename != "" {
		details["filename"] = filename
	}
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("File type %s is invalid", declaredType),
		HTTPStatus: http.StatusForbidden, Retryable: false, Details: details,
	}
}

// SizeExceeded creates an AppError for a stream whose running byte count
// passed the configured ceiling.
func SizeExceeded(size, limit uint64) *AppError {
	return &AppError{
		Code: ErrCodeSizeExceeded, Message: fmt.Sprintf("File size: %d is invalid", size),
		HTTPStatus: http.StatusForbidden, Retryable: false,
		Details: map[string]any{"size": size, "max_size": limit},
	}
}

// BackendFailure creates an AppError for a storage backend error unrelated to policy.
func BackendFailure(backend string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBackendFailure, Message: fmt.Sprintf("The %s storage backend failed to store the upload.", backend),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"backend": backend}, Cause: cause,
	}
}

// IOFailure creates an AppError for a source stream that failed mid-transfer.
func IOFailure(cause error) *AppError {
	return &AppError{
		Code: ErrCodeIOFailure, Message: "The upload stream failed before it could be stored.",
		HTTPStatus: http.StatusBadRequest, Retryable: false, Cause: cause,
	}
}

// --- Common Error Constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
