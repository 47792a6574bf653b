package main

import (
	"fmt"

	"github.com/kbukum/tashkeel/config"
	"github.com/kbukum/tashkeel/observability"
	"github.com/kbukum/tashkeel/redis"
	"github.com/kbukum/tashkeel/server"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/tashkeel/backends"
	"github.com/kbukum/tashkeel/version"
)

// Config is the full configuration of the tashkeel binary.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Engine        tashkeel.Config      `mapstructure:"engine"`
	Redis         redis.Config         `mapstructure:"redis"`
	Server        server.Config        `mapstructure:"server"`
	Observability observability.Config `mapstructure:"observability"`
}

// ApplyDefaults fills unset fields. Without an explicit priority every
// shipped model backend is tried before the heuristic.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Version == "" {
		c.Version = version.Version
	}
	if len(c.Engine.Priority) == 0 {
		c.Engine.Priority = append([]string(nil), backends.DefaultPriority...)
	}
	c.Engine.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Server.ApplyDefaults()

	c.Observability.ServiceName = c.Name
	c.Observability.ServiceVersion = c.Version
	c.Observability.Environment = c.Environment
	c.Observability.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if c.usesRedisCache() && !c.Redis.Enabled {
		return fmt.Errorf("engine.cache.store is redis but redis.enabled is false")
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

func (c *Config) usesRedisCache() bool {
	return c.Engine.Cache.Enabled && c.Engine.Cache.Store == "redis"
}

func loadConfig(path string, debug bool) (*Config, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix("TASHKEEL")}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig("tashkeel", cfg, opts...); err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
