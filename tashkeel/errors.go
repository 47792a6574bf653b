package tashkeel

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/tashkeel/errors"
)

// ErrBackendUnavailable marks a backend that could not be created or
// initialized. Engines absorb it; it never reaches Diacritize callers.
var ErrBackendUnavailable = errors.New("backend unavailable")

// BackendUnavailable wraps cause so that errors.Is(err, ErrBackendUnavailable)
// holds.
func BackendUnavailable(name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", name, ErrBackendUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", name, ErrBackendUnavailable, cause)
}

// FailureError is returned when the selected backend fails on an input.
// Input is the text exactly as the caller passed it.
type FailureError struct {
	Input     string
	Backend   string
	ModelName string
	Cause     error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("diacritization failed on %s: %v", e.Backend, e.Cause)
}

func (e *FailureError) Unwrap() error { return e.Cause }

// AppError maps the failure to the service error model.
func (e *FailureError) AppError() *apperrors.AppError {
	return apperrors.DiacritizationFailed(e.Backend, e.Input, e.Cause).
		WithDetail("model_name", e.ModelName)
}

// AsFailure returns the FailureError in err's chain, if any.
func AsFailure(err error) (*FailureError, bool) {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
