package provider

import (
	"context"
	"time"
)

// ContextStore is a typed key/value store with optional expiry.
// A TTL of 0 means no expiry.
type ContextStore[C any] interface {
	// Load returns (nil, nil) for a missing key.
	Load(ctx context.Context, key string) (*C, error)
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
