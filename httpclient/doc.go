// Package httpclient is a small JSON-over-HTTP client for model sidecars.
// Failures are classified into [*Error] values (timeout, connection,
// status classes) and an optional circuit breaker fails calls fast while
// a sidecar is down.
package httpclient
