package errors

import (
	"context"
	stderrors "errors"
)

// ErrorResponse is the JSON envelope for failed API calls.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts the error to its JSON envelope.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// AsAppError finds the AppError for err. A type in the chain that
// describes itself as an AppError (an AppError() method) wins over a plain
// AppError deeper in the chain.
func AsAppError(err error) (*AppError, bool) {
	var conv interface{ AppError() *AppError }
	if stderrors.As(err, &conv) {
		return conv.AppError(), true
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// From returns err as an AppError. An expired context maps to Timeout and
// anything else unknown to Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return Timeout("request").WithCause(err)
	}
	return Internal(err)
}
