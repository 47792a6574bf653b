package tashkeel

import (
	"fmt"
	"time"

	"github.com/kbukum/tashkeel/tashkeel/heuristic"
)

// Config configures an Engine.
type Config struct {
	// Priority lists backend names in selection order. The heuristic is
	// appended when absent, so it is always the last resort.
	Priority []string `mapstructure:"priority"`

	// Backends holds the per-backend factory config, keyed by name.
	Backends map[string]map[string]any `mapstructure:"backends"`

	// InitAttempts is how many times a failing Init is tried (default 2).
	InitAttempts int `mapstructure:"init_attempts"`

	// InitBackoff is the wait before the second Init attempt (e.g. "200ms").
	InitBackoff string `mapstructure:"init_backoff"`

	// NormalizeInput folds Arabic presentation forms to base letters
	// before the backend sees the text.
	NormalizeInput bool `mapstructure:"normalize_input"`

	// Cache configures the result cache.
	Cache CacheConfig `mapstructure:"cache"`

	// Resilience configures the policies around the selected backend.
	Resilience ResilienceConfig `mapstructure:"resilience"`

	// MaxConcurrent bounds the number of calls a Dispatcher runs at once.
	// 0 means unbounded.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// CacheConfig configures result caching.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Store is "memory" or "redis".
	Store string `mapstructure:"store"`
	// TTL is how long an entry is kept (e.g. "24h"). Empty means forever.
	TTL string `mapstructure:"ttl"`
	// Size bounds the memory store. 0 means unbounded.
	Size int `mapstructure:"size"`
}

// ResilienceConfig configures the circuit breaker and bulkhead around the
// selected backend. A failed call is never retried.
type ResilienceConfig struct {
	// MaxFailures opens the circuit after that many consecutive failures.
	// 0 disables the circuit breaker.
	MaxFailures int `mapstructure:"max_failures"`
	// OpenTimeout is how long the circuit stays open (e.g. "30s").
	OpenTimeout string `mapstructure:"open_timeout"`
	// MaxConcurrent bounds concurrent backend calls. 0 disables the bulkhead.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// MaxWait is how long a call waits for a bulkhead slot (e.g. "5s").
	MaxWait string `mapstructure:"max_wait"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Priority) == 0 {
		c.Priority = []string{heuristic.Name}
	}
	if c.InitAttempts <= 0 {
		c.InitAttempts = 2
	}
	if c.InitBackoff == "" {
		c.InitBackoff = "200ms"
	}
	if c.Cache.Store == "" {
		c.Cache.Store = "memory"
	}
	if c.Resilience.OpenTimeout == "" {
		c.Resilience.OpenTimeout = "30s"
	}
	if c.Resilience.MaxWait == "" {
		c.Resilience.MaxWait = "5s"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.InitAttempts < 0 {
		return fmt.Errorf("tashkeel: init_attempts must be non-negative, got %d", c.InitAttempts)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("tashkeel: max_concurrent must be non-negative, got %d", c.MaxConcurrent)
	}
	for _, d := range []struct{ key, val string }{
		{"init_backoff", c.InitBackoff},
		{"cache.ttl", c.Cache.TTL},
		{"resilience.open_timeout", c.Resilience.OpenTimeout},
		{"resilience.max_wait", c.Resilience.MaxWait},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("tashkeel: invalid %s %q: %w", d.key, d.val, err)
		}
	}
	switch c.Cache.Store {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("tashkeel: unknown cache store %q (must be memory or redis)", c.Cache.Store)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("tashkeel: cache.size must be non-negative, got %d", c.Cache.Size)
	}
	if c.Resilience.MaxFailures < 0 || c.Resilience.MaxConcurrent < 0 {
		return fmt.Errorf("tashkeel: resilience limits must be non-negative")
	}
	return nil
}

// BackendConfig returns the factory config for name, never nil.
func (c *Config) BackendConfig(name string) map[string]any {
	if cfg, ok := c.Backends[name]; ok && cfg != nil {
		return cfg
	}
	return map[string]any{}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
