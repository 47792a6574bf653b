package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the service's instruments.
type Metrics struct {
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
	charsTotal        metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error
	if m.requestTotal, err = meter.Int64Counter("http.requests",
		metric.WithDescription("HTTP requests handled")); err != nil {
		return nil, fmt.Errorf("creating http.requests: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating http.request.duration: %w", err)
	}
	if m.operationTotal, err = meter.Int64Counter("backend.calls",
		metric.WithDescription("Diacritization backend calls")); err != nil {
		return nil, fmt.Errorf("creating backend.calls: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("backend.duration",
		metric.WithDescription("Diacritization backend latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating backend.duration: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("errors",
		metric.WithDescription("Errors by operation and component")); err != nil {
		return nil, fmt.Errorf("creating errors: %w", err)
	}
	if m.charsTotal, err = meter.Int64Counter("backend.chars",
		metric.WithDescription("Characters sent to diacritization backends")); err != nil {
		return nil, fmt.Errorf("creating backend.chars: %w", err)
	}
	return &m, nil
}

// RecordRequest records one handled HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordOperation records one backend call.
func (m *Metrics) RecordOperation(ctx context.Context, backend, operation, status string, d time.Duration) {
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	))
}

// RecordError counts an error.
func (m *Metrics) RecordError(ctx context.Context, operation, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("component", component),
	))
}

// RecordChars counts input characters sent to backend.
func (m *Metrics) RecordChars(ctx context.Context, backend string, n int) {
	m.charsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("backend", backend)))
}
