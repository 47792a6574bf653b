// Package provider is the generic plumbing behind swappable backends.
//
// A Provider has a name and can report whether it is available. Backends
// are built by name from a Registry of Factory functions, chosen with a
// Selector, and called through RequestResponse, which Middleware can wrap:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[string, string](log),
//	    provider.WithTracing[string, string]("tashkeel"),
//	)(rr)
//
// Optional lifecycle hooks are Initializable and Closeable. ContextStore
// is the typed key/value store used for result caching; MemoryStore is
// the in-process implementation and redis.TypedStore the shared one.
package provider
