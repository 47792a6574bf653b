// Package observability sets up OpenTelemetry tracing and metrics for the
// diacritization service and provides the instruments the engine and the
// HTTP API record into.
//
//	shutdown, err := observability.Init(ctx, cfg)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("tashkeel"))
//	metrics.RecordOperation(ctx, "camel", "execute", "ok", d)
//
// When disabled, the global no-op providers stay in place and every
// instrument call is cheap.
package observability
