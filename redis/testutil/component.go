// Package testutil provides an in-memory Redis for tests, backed by
// miniredis. Point a redis.Config at Addr and inspect keys through Mini.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/tashkeel/component"
	"github.com/kbukum/tashkeel/testutil"
)

// Component is a miniredis server run as a component.
type Component struct {
	mu   sync.RWMutex
	mini *miniredis.Miniredis
}

var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a stopped in-memory Redis.
func NewComponent() *Component { return &Component{} }

func (c *Component) Name() string { return "redis-test" }

// Start launches the server on a free local port.
func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mini != nil {
		return fmt.Errorf("redis-test: already started")
	}
	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("redis-test: start miniredis: %w", err)
	}
	c.mini = mini
	return nil
}

// Stop shuts the server down. Clients pointed at it see connection errors.
func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mini != nil {
		c.mini.Close()
		c.mini = nil
	}
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset drops every key.
func (c *Component) Reset(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return fmt.Errorf("redis-test: not started")
	}
	c.mini.FlushAll()
	return nil
}

// Addr is the server's host:port, empty before Start.
func (c *Component) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return ""
	}
	return c.mini.Addr()
}

// Mini exposes the server for key inspection and time travel, nil before
// Start.
func (c *Component) Mini() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

// Client opens a plain go-redis client on the server. The caller closes it.
func (c *Component) Client() *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: c.Addr()})
}
