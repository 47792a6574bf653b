package provider

import (
	"context"
	"unicode/utf8"

	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/observability"
)

// WithTracing runs each call in a span named "{serviceName}.{provider}",
// tagged with the provider, the request ID and, for string inputs, the
// input length in runes.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, serviceName: serviceName}
	}
}

type tracingRR[I, O any] struct {
	inner       RequestResponse[I, O]
	serviceName string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.serviceName+"."+t.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.serviceName)
	observability.SetSpanAttribute(ctx, observability.AttrBackend, t.inner.Name())
	if id := logger.RequestIDFromContext(ctx); id != "" {
		observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
	}
	if s, ok := any(input).(string); ok {
		observability.SetSpanAttribute(ctx, observability.AttrInputChars, utf8.RuneCountInString(s))
	}

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return output, err
}
