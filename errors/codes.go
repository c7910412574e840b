package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Upload policy rejections. These are client-correctable and never retryable.
const (
	// ErrCodeTypeMismatch indicates the declared type disagrees with the
	// filename extension or is outside the allow-list.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeSizeExceeded indicates the running byte count passed the ceiling.
	ErrCodeSizeExceeded ErrorCode = "SIZE_EXCEEDED"
)

// Transfer failures
const (
	// ErrCodeBackendFailure indicates the storage backend reported an error.
	ErrCodeBackendFailure ErrorCode = "BACKEND_FAILURE"
	// ErrCodeIOFailure indicates the source stream failed before the backend finished.
	ErrCodeIOFailure ErrorCode = "IO_FAILURE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackendFailure: true,
	ErrCodeTypeMismatch:   false,
	ErrCodeSizeExceeded:   false,
	ErrCodeIOFailure:      false,
	ErrCodeInternal:       false,
}

var policyCodes = map[ErrorCode]bool{
	ErrCodeTypeMismatch: true,
	ErrCodeSizeExceeded: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsPolicyCode returns true if the code is a policy rejection.
func IsPolicyCode(code ErrorCode) bool {
	return policyCodes[code]
}
