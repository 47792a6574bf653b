// Package redis provides the shared result cache backend: a go-redis
// client with pooling and lifecycle support, and TypedStore, a JSON
// provider.ContextStore used by the engine's result cache.
//
//	client, _ := redis.New(cfg, log)
//	store := redis.NewTypedStore[tashkeel.CacheEntry](client, cfg.KeyPrefix)
//	engine := tashkeel.NewEngine(ctx, engineCfg, tashkeel.WithCacheStore(store))
package redis
