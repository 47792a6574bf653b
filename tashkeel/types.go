package tashkeel

import (
	"context"

	"github.com/kbukum/tashkeel/provider"
)

// Backend adds diacritics to text. Implementations may also implement
// Modeled, provider.Initializable and provider.Closeable.
type Backend interface {
	provider.Provider
	Diacritize(ctx context.Context, text string) (string, error)
}

// Modeled backends report the identifier of the model behind them.
type Modeled interface {
	ModelName() string
}

// Diacritizer is the call surface shared by Engine and test doubles.
type Diacritizer interface {
	Diacritize(ctx context.Context, text string) (Result, error)
}

// Result is the outcome of a successful call.
type Result struct {
	Text      string `json:"text"`
	ModelName string `json:"model_name"`
	Backend   string `json:"backend"`
	// UsedModel is false when the heuristic produced Text.
	UsedModel bool `json:"used_model"`
}

// BackendInfo describes the backend an engine selected.
type BackendInfo struct {
	Name      string `json:"name"`
	ModelName string `json:"model_name"`
	UsedModel bool   `json:"used_model"`
}

// CandidateState is the selection outcome of one configured backend.
type CandidateState string

const (
	CandidateSelected    CandidateState = "selected"
	CandidateAvailable   CandidateState = "available"
	CandidateUnavailable CandidateState = "unavailable"
	CandidateSkipped     CandidateState = "skipped"
)

// CandidateStatus records why a backend was or was not selected.
type CandidateStatus struct {
	Name  string         `json:"name"`
	State CandidateState `json:"state"`
	Error string         `json:"error,omitempty"`
}

func modelNameOf(b Backend) string {
	if m, ok := b.(Modeled); ok {
		if name := m.ModelName(); name != "" {
			return name
		}
	}
	return b.Name()
}
