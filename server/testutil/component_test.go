package testutil

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/component"
	"github.com/kbukum/tashkeel/server"
	"github.com/kbukum/tashkeel/server/middleware"
	"github.com/kbukum/tashkeel/testutil"
)

func TestComponent(t *testing.T) {
	c := NewComponent(server.Config{})
	c.GinEngine().GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
	if c.BaseURL() != "" {
		t.Fatal("expected no URL before Start")
	}

	testutil.T(t).Setup(c)
	if c.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy after Start")
	}

	resp, err := c.Client().Get(c.BaseURL() + "/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "pong" {
		t.Errorf("expected 200 pong, got %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get(middleware.HeaderRequestID) == "" {
		t.Error("expected the middleware stack to set a request ID")
	}

	testutil.T(t).Reset(c)
	if resp, err := c.Client().Get(c.BaseURL() + "/missing"); err != nil {
		t.Fatalf("get after reset: %v", err)
	} else {
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	}
}
