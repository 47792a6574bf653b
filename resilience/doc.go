// Package resilience provides the fault-tolerance primitives used around
// diacritization backends: a circuit breaker for flaky model processes,
// retry with exponential backoff for backend initialization, a bulkhead
// bounding concurrent model calls, and a token-bucket rate limiter for
// the HTTP API.
//
// None of these retry a diacritization call; a failed call is reported to
// the caller exactly once.
package resilience
