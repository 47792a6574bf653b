package provider

import (
	"context"

	"github.com/kbukum/tashkeel/resilience"
)

// ResilienceConfig selects the policies applied by WithResilience. Nil
// fields are skipped. There is no retry policy: a failed call is reported
// once.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig
	Bulkhead       *resilience.BulkheadConfig
	RateLimiter    *resilience.RateLimiterConfig
}

// IsEmpty reports whether no policy is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Bulkhead == nil && c.RateLimiter == nil
}

// WithResilience applies the configured policies in the order
// RateLimiter, Bulkhead, CircuitBreaker. An empty config is a no-op.
func WithResilience[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if cfg.IsEmpty() {
			return inner
		}
		r := &resilientRR[I, O]{inner: inner}
		if cfg.CircuitBreaker != nil {
			r.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
		}
		if cfg.Bulkhead != nil {
			r.bh = resilience.NewBulkhead(*cfg.Bulkhead)
		}
		if cfg.RateLimiter != nil {
			r.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
		}
		return r
	}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	cb    *resilience.CircuitBreaker
	bh    *resilience.Bulkhead
	rl    *resilience.RateLimiter
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the circuit is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.cb != nil && r.cb.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var output O
	call := func() error {
		var err error
		output, err = r.inner.Execute(ctx, input)
		return err
	}
	if r.cb != nil {
		inner := call
		call = func() error { return r.cb.Execute(inner) }
	}
	if r.bh != nil {
		inner := call
		call = func() error { return r.bh.Execute(ctx, inner) }
	}
	if r.rl != nil && !r.rl.Allow() {
		var zero O
		return zero, resilience.ErrRateLimited
	}
	if err := call(); err != nil {
		var zero O
		return zero, err
	}
	return output, nil
}
