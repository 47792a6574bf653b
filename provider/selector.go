package provider

import (
	"context"
	"errors"
)

// ErrNoProvider is returned when no candidate can be selected.
var ErrNoProvider = errors.New("no available provider")

// Selector picks one provider out of a set of candidates.
type Selector[T Provider] interface {
	Select(ctx context.Context, providers map[string]T) (T, error)
}

// PrioritySelector returns the first available provider in Priority order.
// Names missing from the candidate map are skipped.
type PrioritySelector[T Provider] struct {
	Priority []string
	// OnCheck, if set, is told the outcome of every availability check.
	OnCheck func(name string, available bool)
}

func (s *PrioritySelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	for _, name := range s.Priority {
		p, ok := providers[name]
		if !ok {
			continue
		}
		available := p.IsAvailable(ctx)
		if s.OnCheck != nil {
			s.OnCheck(name, available)
		}
		if available {
			return p, nil
		}
	}
	var zero T
	return zero, ErrNoProvider
}
