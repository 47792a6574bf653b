package provider

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/kbukum/tashkeel/observability"
)

// WithMetrics counts calls, errors and latency per provider. String inputs
// also add their rune count to the character counter.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	name := m.inner.Name()
	if s, ok := any(input).(string); ok {
		m.metrics.RecordChars(ctx, name, utf8.RuneCountInString(s))
	}

	start := time.Now()
	output, err := m.inner.Execute(ctx, input)
	elapsed := time.Since(start)

	if err != nil {
		m.metrics.RecordError(ctx, "execute", name)
		m.metrics.RecordOperation(ctx, name, "execute", "error", elapsed)
		return output, err
	}
	m.metrics.RecordOperation(ctx, name, "execute", "ok", elapsed)
	return output, nil
}
