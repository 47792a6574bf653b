package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected int64 sum, got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperation(ctx, "heuristic", "execute", "ok", 2*time.Millisecond)
	metrics.RecordOperation(ctx, "camel", "execute", "error", 5*time.Millisecond)
	metrics.RecordError(ctx, "execute", "camel")
	metrics.RecordChars(ctx, "heuristic", 120)
	metrics.RecordRequest(ctx, "POST", "/api/v1/diacritize", 200, time.Millisecond)

	got := collect(t, reader)
	tests := []struct {
		name string
		want int64
	}{
		{"backend.calls", 2},
		{"errors", 1},
		{"backend.chars", 120},
		{"http.requests", 1},
	}
	for _, tt := range tests {
		m, ok := got[tt.name]
		if !ok {
			t.Errorf("metric %s not recorded", tt.name)
			continue
		}
		if v := sumOf(t, m); v != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, v)
		}
	}
	if _, ok := got["backend.duration"].Data.(metricdata.Histogram[float64]); !ok {
		t.Error("expected backend.duration histogram")
	}
}

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "tashkeel.camel")
	SetSpanAttribute(ctx, AttrBackend, "camel")
	SetSpanAttribute(ctx, AttrInputChars, 5)
	SetSpanError(ctx, errors.New("model crashed"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "tashkeel.camel" {
		t.Errorf("unexpected span name %q", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	found := false
	for _, kv := range s.Attributes() {
		if string(kv.Key) == AttrBackend && kv.Value.AsString() == "camel" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s attribute, got %v", AttrBackend, s.Attributes())
	}
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown failed: %v", err)
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	cfg.SampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected sample rate error")
	}
}
