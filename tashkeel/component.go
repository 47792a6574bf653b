package tashkeel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/tashkeel/component"
	"github.com/kbukum/tashkeel/tashkeel/heuristic"
)

var _ component.Component = (*Component)(nil)

// Component manages an Engine's lifecycle. Start selects the backend and
// Stop releases every loaded backend.
type Component struct {
	cfg  Config
	opts []Option

	mu     sync.RWMutex
	engine *Engine
}

// NewComponent creates an engine component. opts are passed to NewEngine.
func NewComponent(cfg Config, opts ...Option) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, opts: opts}
}

func (c *Component) Name() string { return "tashkeel" }

// Engine returns the running engine, or nil before Start.
func (c *Component) Engine() *Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// Start builds the engine. Backend problems never fail it.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("tashkeel config: %w", err)
	}
	e := NewEngine(ctx, c.cfg, c.opts...)
	c.mu.Lock()
	c.engine = e
	c.mu.Unlock()
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	e := c.Engine()
	if e == nil {
		return nil
	}
	return e.Close(ctx)
}

// Health reports degraded when a model was configured but the engine runs
// on the heuristic.
func (c *Component) Health(_ context.Context) component.Health {
	e := c.Engine()
	if e == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "engine not started"}
	}
	info := e.Active()
	if !info.UsedModel && c.wantsModel() {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: "no model backend available, using " + info.ModelName,
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: info.ModelName}
}

func (c *Component) wantsModel() bool {
	for _, name := range c.cfg.Priority {
		if name != heuristic.Name {
			return true
		}
	}
	return false
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := "priority=" + strings.Join(c.cfg.Priority, ",")
	if e := c.Engine(); e != nil {
		info := e.Active()
		details = fmt.Sprintf("%s (%s) %s", info.Name, info.ModelName, details)
	}
	return component.Description{Name: "Tashkeel engine", Type: "engine", Details: details}
}
