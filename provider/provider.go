package provider

import "context"

// Provider is implemented by every backend.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from a loosely typed config map, as decoded
// from YAML.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// Initializable providers need setup before their first call, such as
// loading a model or probing a sidecar.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable providers hold resources released on shutdown.
type Closeable interface {
	Close(ctx context.Context) error
}
