package redis

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/tashkeel/component"
	"github.com/kbukum/tashkeel/logger"
	redistest "github.com/kbukum/tashkeel/redis/testutil"
	"github.com/kbukum/tashkeel/testutil"
)

func TestComponentLifecycle(t *testing.T) {
	server := redistest.NewComponent()
	testutil.T(t).Setup(server)
	c := NewComponent(Config{Enabled: true, Addr: server.Addr()}, logger.NewNop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.Client() == nil {
		t.Fatal("expected client after start")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if !c.Client().IsAvailable(ctx) {
		t.Error("expected client to be available")
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if c.Client().IsAvailable(ctx) {
		t.Error("expected closed client to be unavailable")
	}
	if err := c.Client().Close(); err != nil {
		t.Errorf("expected second Close to be a no-op, got %v", err)
	}
}

func TestComponentStartFailsWhenDisabled(t *testing.T) {
	c := NewComponent(Config{Enabled: false}, logger.NewNop())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error for disabled redis")
	}
}

func TestComponentStartFailsWhenUnreachable(t *testing.T) {
	server := redistest.NewComponent()
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("start redis: %v", err)
	}
	addr := server.Addr()
	_ = server.Stop(context.Background())

	c := NewComponent(Config{Enabled: true, Addr: addr, MaxRetries: 1, DialTimeout: "200ms"}, logger.NewNop())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
	if c.Client() != nil {
		t.Error("expected no client after failed start")
	}
}

func TestComponentDescribe(t *testing.T) {
	c := NewComponent(Config{Enabled: true, Addr: "cache:6379", KeyPrefix: "staging"}, logger.NewNop())
	d := c.Describe()
	if d.Type != "cache" {
		t.Errorf("expected type cache, got %s", d.Type)
	}
	if !strings.Contains(d.Details, "cache:6379") || !strings.Contains(d.Details, "prefix=staging") {
		t.Errorf("unexpected details %q", d.Details)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled skips checks", Config{}, false},
		{"defaults", Config{Enabled: true}, false},
		{"bad duration", Config{Enabled: true, ReadTimeout: "soon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg.Enabled {
				cfg.ApplyDefaults()
			}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
