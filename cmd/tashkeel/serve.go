package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/tashkeel/bootstrap"
	"github.com/kbukum/tashkeel/observability"
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/redis"
	"github.com/kbukum/tashkeel/server"
	"github.com/kbukum/tashkeel/server/api"
	"github.com/kbukum/tashkeel/server/middleware"
	"github.com/kbukum/tashkeel/tashkeel"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diacritization API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != 0 {
				c.cfg.Server.Port = port
			}
			app, err := c.newServeApp(cmd.Context())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

// newServeApp wires redis (when it backs the cache), the engine and the
// HTTP server into an App. Components start in that order.
func (c *cli) newServeApp(ctx context.Context) (*bootstrap.App[*Config], error) {
	cfg := c.cfg
	app, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(c.log))
	if err != nil {
		return nil, err
	}

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	app.OnStop(func(ctx context.Context) error { return shutdownTelemetry(ctx) })

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	engineOpts := []tashkeel.Option{
		tashkeel.WithMiddleware(
			provider.WithMetrics[string, string](metrics),
			provider.WithTracing[string, string](cfg.Name),
		),
	}
	if cfg.usesRedisCache() {
		rc := redis.NewComponent(cfg.Redis, c.log)
		if err := app.RegisterComponent(rc); err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, redisCacheStore(rc))
	}

	engine := tashkeel.NewComponent(cfg.Engine, c.engineOptions(engineOpts...)...)
	if err := app.RegisterComponent(engine); err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, c.log)
	srv.GinEngine().Use(middleware.Metrics(metrics))
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	api.Register(srv, engine, c.log)
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	return app, nil
}

// redisCacheStore points the engine cache at rc. The client is read when
// the engine is built, after rc has started.
func redisCacheStore(rc *redis.Component) tashkeel.Option {
	return func(e *tashkeel.Engine) {
		store := redis.NewTypedStore[tashkeel.CacheEntry](rc.Client(), rc.KeyPrefix())
		tashkeel.WithCacheStore(store)(e)
	}
}
