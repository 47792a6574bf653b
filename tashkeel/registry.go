package tashkeel

import (
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/tashkeel/heuristic"
)

// NewRegistry creates a backend registry holding the heuristic factory.
// Model-backed factories are added by their own packages.
func NewRegistry() *provider.Registry[Backend] {
	reg := provider.NewRegistry[Backend]()
	reg.RegisterFactory(heuristic.Name, HeuristicFactory())
	return reg
}

// HeuristicFactory builds the heuristic backend. It ignores its config.
func HeuristicFactory() provider.Factory[Backend] {
	return func(map[string]any) (Backend, error) {
		return heuristic.New(), nil
	}
}
