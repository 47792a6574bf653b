// Package errors defines the AppError type returned at the service boundary
// of the diacritization engine. Each error carries a machine-readable code,
// an HTTP status, a retryable flag and optional details.
package errors
