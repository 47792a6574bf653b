package heuristic

import "context"

const (
	// Name is the registry name of the heuristic backend.
	Name = "heuristic"
	// ModelName identifies heuristic output in results.
	ModelName = "heuristic-fallback"
)

// Backend exposes Diacritize as a diacritization backend. It is always
// available and never returns an error.
type Backend struct{}

// New returns the heuristic backend.
func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return Name }

func (*Backend) ModelName() string { return ModelName }

func (*Backend) IsAvailable(context.Context) bool { return true }

func (*Backend) Diacritize(_ context.Context, text string) (string, error) {
	return Diacritize(text), nil
}
