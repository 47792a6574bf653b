package errors

import (
	"fmt"
	"net/http"
)

// AppError is the error type surfaced by the HTTP API and the CLI.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New creates an AppError whose retryable flag follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ServiceUnavailable reports a dependency that cannot serve requests right now.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		http.StatusServiceUnavailable).WithDetail("service", service)
}

// Timeout reports an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.",
		http.StatusGatewayTimeout).WithDetail("operation", operation)
}

// RateLimited reports a client that exceeded the request rate.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.",
		http.StatusTooManyRequests)
}

// BackendUnavailable reports a diacritization backend that failed to load.
func BackendUnavailable(backend string, cause error) *AppError {
	return New(ErrCodeBackendUnavailable,
		fmt.Sprintf("The %s backend is not available.", backend),
		http.StatusServiceUnavailable).WithDetail("backend", backend).WithCause(cause)
}

// DiacritizationFailed reports a backend failure on a specific input.
// The input is kept so the caller never loses the user's text.
func DiacritizationFailed(backend, input string, cause error) *AppError {
	return New(ErrCodeDiacritizationFailed,
		"Diacritization failed. Your text was not changed.",
		http.StatusBadGateway).
		WithDetails(map[string]any{"backend": backend, "input": input}).
		WithCause(cause)
}

// InvalidInput reports a malformed request field.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation reports a request that failed struct validation.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// PayloadTooLarge reports a request body over the configured limit.
func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge,
		fmt.Sprintf("Request body exceeds the %d byte limit.", limit),
		http.StatusRequestEntityTooLarge).WithDetail("limit", limit)
}

// NotFound reports an unknown route or resource.
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource),
		http.StatusNotFound).WithDetail("resource", resource)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.",
		http.StatusInternalServerError).WithCause(cause)
}
