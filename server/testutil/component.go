// Package testutil serves a server.Server over a local httptest listener,
// so tests exercise the full middleware stack over real HTTP.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/component"
	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/server"
	"github.com/kbukum/tashkeel/testutil"
)

// Component wraps a server.Server. Register routes on Server or GinEngine
// before Start.
type Component struct {
	srv *server.Server

	mu sync.RWMutex
	ts *httptest.Server
}

var _ testutil.TestComponent = (*Component)(nil)

// NewComponent builds a server from cfg with defaults applied.
func NewComponent(cfg server.Config) *Component {
	cfg.ApplyDefaults()
	return &Component{srv: server.New(cfg, logger.NewNop())}
}

func (c *Component) Name() string { return "server-test" }

// Server is the wrapped server.
func (c *Component) Server() *server.Server { return c.srv }

// GinEngine is the wrapped server's router.
func (c *Component) GinEngine() *gin.Engine { return c.srv.GinEngine() }

// Start begins serving on a free local port.
func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		return fmt.Errorf("server-test: already started")
	}
	c.ts = httptest.NewServer(c.srv.Handler())
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		c.ts.Close()
		c.ts = nil
	}
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset drops open client connections. Routes stay registered.
func (c *Component) Reset(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return fmt.Errorf("server-test: not started")
	}
	c.ts.CloseClientConnections()
	return nil
}

// BaseURL is the server's root URL, empty before Start.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

// Client returns an HTTP client for the server.
func (c *Component) Client() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return http.DefaultClient
	}
	return c.ts.Client()
}
