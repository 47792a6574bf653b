package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew_RetryableFollowsCode(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeDiacritizationFailed, true},
		{ErrCodeRateLimited, true},
		{ErrCodeInvalidInput, false},
		{ErrCodeBackendUnavailable, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "msg", http.StatusTeapot)
			if err.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, err.Retryable)
			}
			if err.HTTPStatus != http.StatusTeapot {
				t.Errorf("expected status %d, got %d", http.StatusTeapot, err.HTTPStatus)
			}
		})
	}
}

func TestDiacritizationFailed_KeepsInput(t *testing.T) {
	cause := fmt.Errorf("model crashed")
	err := DiacritizationFailed("camel", "مرحبا", cause)
	if err.Code != ErrCodeDiacritizationFailed {
		t.Errorf("expected DIACRITIZATION_FAILED, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
	if err.Details["input"] != "مرحبا" {
		t.Errorf("expected input preserved, got %v", err.Details["input"])
	}
	if err.Details["backend"] != "camel" {
		t.Errorf("expected backend=camel, got %v", err.Details["backend"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
}

func TestBackendUnavailable(t *testing.T) {
	err := BackendUnavailable("sidecar", stderrors.New("connection refused"))
	if err.Code != ErrCodeBackendUnavailable {
		t.Errorf("expected BACKEND_UNAVAILABLE, got %s", err.Code)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestInvalidInput_EmptyField(t *testing.T) {
	err := InvalidInput("", "bad json")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no field detail when field is empty")
	}
	err = InvalidInput("text", "too long")
	if err.Details["field"] != "text" {
		t.Errorf("expected field=text, got %v", err.Details["field"])
	}
}

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeNotFound, "missing", http.StatusNotFound)
	if got := err.Error(); got != "NOT_FOUND: missing" {
		t.Errorf("unexpected message %q", got)
	}
	err.WithCause(fmt.Errorf("boom"))
	if got := err.Error(); got != "NOT_FOUND: missing (cause: boom)" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestToResponse(t *testing.T) {
	resp := PayloadTooLarge(1024).ToResponse()
	if resp.Error.Code != ErrCodePayloadTooLarge {
		t.Errorf("expected PAYLOAD_TOO_LARGE, got %s", resp.Error.Code)
	}
	if resp.Error.Details["limit"] != int64(1024) {
		t.Errorf("expected limit detail, got %v", resp.Error.Details["limit"])
	}
}

type convertible struct{ input string }

func (c *convertible) Error() string { return "convertible" }

func (c *convertible) AppError() *AppError {
	return DiacritizationFailed("stub", c.input, c)
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", RateLimited())
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeRateLimited {
		t.Fatalf("expected RATE_LIMITED, got %v", appErr)
	}

	appErr, ok = AsAppError(fmt.Errorf("call: %w", &convertible{input: "نص"}))
	if !ok {
		t.Fatal("expected conversion through AppError method")
	}
	if appErr.Details["input"] != "نص" {
		t.Errorf("expected input detail, got %v", appErr.Details["input"])
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("expected nil for nil error")
	}
	if got := From(stderrors.New("x")); got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	got := From(fmt.Errorf("batch: %w", context.DeadlineExceeded))
	if got.Code != ErrCodeTimeout || got.HTTPStatus != http.StatusGatewayTimeout {
		t.Errorf("expected TIMEOUT/504, got %s/%d", got.Code, got.HTTPStatus)
	}
}
