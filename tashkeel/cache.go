package tashkeel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/provider"
)

// CacheEntry is a cached backend output.
type CacheEntry struct {
	Text      string `json:"text"`
	ModelName string `json:"model_name"`
}

// CacheKey returns the store key for text diacritized by model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "tashkeel:" + model + ":" + hex.EncodeToString(sum[:])
}

// WithCache serves repeated inputs from store. Store errors are logged and
// the backend is called as if the entry were missing.
func WithCache(store provider.ContextStore[CacheEntry], model string, ttl time.Duration, log *logger.Logger) provider.Middleware[string, string] {
	return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
		return &cachingRR{inner: inner, store: store, model: model, ttl: ttl, log: log}
	}
}

type cachingRR struct {
	inner provider.RequestResponse[string, string]
	store provider.ContextStore[CacheEntry]
	model string
	ttl   time.Duration
	log   *logger.Logger
}

func (c *cachingRR) Name() string                         { return c.inner.Name() }
func (c *cachingRR) IsAvailable(ctx context.Context) bool { return c.inner.IsAvailable(ctx) }

func (c *cachingRR) Execute(ctx context.Context, text string) (string, error) {
	key := CacheKey(c.model, text)
	entry, err := c.store.Load(ctx, key)
	if err != nil {
		c.log.WithContext(ctx).Warn("cache load failed", logger.ErrorFields("cache_load", err))
	} else if entry != nil && entry.ModelName == c.model {
		return entry.Text, nil
	}

	out, err := c.inner.Execute(ctx, text)
	if err != nil {
		return "", err
	}
	if err := c.store.Save(ctx, key, &CacheEntry{Text: out, ModelName: c.model}, c.ttl); err != nil {
		c.log.WithContext(ctx).Warn("cache save failed", logger.ErrorFields("cache_save", err))
	}
	return out, nil
}
