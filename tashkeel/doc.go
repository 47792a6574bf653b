// Package tashkeel adds Arabic diacritics (tashkeel) to plain text.
//
// An [Engine] selects one backend when it is built and keeps it for its
// whole lifetime. Model-backed backends are optional: when none can be
// loaded the engine falls back to the rule-based heuristic, so building an
// engine never fails. Calls on the selected backend either succeed or
// return a [*FailureError] that still carries the caller's input.
//
// # Backends
//
// Backends are created from a [provider.Registry] by name:
//
//	reg := backends.NewRegistry()
//	engine := tashkeel.NewEngine(ctx, tashkeel.Config{
//		Priority: []string{"camel", "sidecar"},
//	}, tashkeel.WithRegistry(reg))
//	res, err := engine.Diacritize(ctx, "مرحبا")
//
// # Background execution
//
// A [Dispatcher] runs calls off the caller's goroutine and delivers
// exactly one [Outcome] per submission. Work that has started is never
// cancelled.
package tashkeel
