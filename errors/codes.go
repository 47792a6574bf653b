package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Availability
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	// ErrCodeBackendUnavailable is recorded when a diacritization backend
	// cannot be constructed or initialized.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
)

// Input
const (
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
)

// Processing
const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDiacritizationFailed means the active backend failed on a
	// specific input. The input is preserved in the error details.
	ErrCodeDiacritizationFailed ErrorCode = "DIACRITIZATION_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable:   true,
	ErrCodeTimeout:              true,
	ErrCodeRateLimited:          true,
	ErrCodeDiacritizationFailed: true,
}

// IsRetryableCode reports whether a caller may reasonably repeat a request
// that failed with code.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
