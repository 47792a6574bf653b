// Package backends builds the registry of every diacritization backend
// shipped with the module.
package backends

import (
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/tashkeel/camel"
	"github.com/kbukum/tashkeel/tashkeel/sidecar"
)

// DefaultPriority prefers the in-process model, then the sidecar. The
// engine appends the heuristic.
var DefaultPriority = []string{camel.ProviderName, sidecar.ProviderName}

// NewRegistry returns a registry with the heuristic, camel and sidecar
// factories.
func NewRegistry() *provider.Registry[tashkeel.Backend] {
	reg := tashkeel.NewRegistry()
	reg.RegisterFactory(camel.ProviderName, camel.Factory())
	reg.RegisterFactory(sidecar.ProviderName, sidecar.Factory())
	return reg
}
