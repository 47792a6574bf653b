package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/tashkeel/httpclient"
	"github.com/kbukum/tashkeel/tashkeel"
)

type fakeSidecar struct {
	healthStatus int
	model        string
	fail         atomic.Bool
	calls        atomic.Int32
}

func (f *fakeSidecar) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		if f.healthStatus != 0 && f.healthStatus != http.StatusOK {
			w.WriteHeader(f.healthStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "model": f.model})
	})
	mux.HandleFunc("POST /diacritize", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if f.fail.Load() {
			http.Error(w, "model crashed", http.StatusInternalServerError)
			return
		}
		var req diacritizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		model := req.Model
		if model == "" {
			model = f.model
		}
		_ = json.NewEncoder(w).Encode(diacritizeResponse{Text: req.Text + "َ", Model: model})
	})
	return mux
}

func newTestProvider(t *testing.T, f *fakeSidecar, cfg Config) *Provider {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	cfg.URL = srv.URL
	p, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestInit_LearnsModel(t *testing.T) {
	p := newTestProvider(t, &fakeSidecar{model: "shakkala-v2"}, Config{})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelName() != "shakkala-v2" {
		t.Errorf("expected model from health, got %q", p.ModelName())
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("expected sidecar available")
	}
}

func TestInit_ConfiguredModelWins(t *testing.T) {
	p := newTestProvider(t, &fakeSidecar{model: "default"}, Config{Model: "pinned"})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelName() != "pinned" {
		t.Errorf("expected pinned model, got %q", p.ModelName())
	}
}

func TestInit_Unhealthy(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantUnavailable bool
	}{
		{"not found", http.StatusNotFound, true},
		{"starting", http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, &fakeSidecar{healthStatus: tt.status}, Config{})
			err := p.Init(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, tashkeel.ErrBackendUnavailable); got != tt.wantUnavailable {
				t.Errorf("expected unavailable %v, got %v", tt.wantUnavailable, got)
			}
			if p.IsAvailable(context.Background()) {
				t.Error("expected sidecar unavailable")
			}
		})
	}
}

func TestInit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	p, err := NewProvider(Config{URL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = p.Init(context.Background())
	if !httpclient.IsRefused(err) {
		t.Errorf("expected connection refused, got %v", err)
	}
	if !errors.Is(err, tashkeel.ErrBackendUnavailable) {
		t.Errorf("expected refused sidecar to be unavailable, got %v", err)
	}
}

func TestEngine_RefusedSidecarIsNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	reg := tashkeel.NewRegistry()
	reg.RegisterFactory(ProviderName, Factory())
	cfg := tashkeel.Config{
		Priority:     []string{ProviderName},
		Backends:     map[string]map[string]any{ProviderName: {"url": srv.URL, "timeout": "1s"}},
		InitAttempts: 3,
		InitBackoff:  "2s",
	}

	start := time.Now()
	e := tashkeel.NewEngine(context.Background(), cfg, tashkeel.WithRegistry(reg))
	defer func() { _ = e.Close(context.Background()) }()

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected no init retries, took %v", elapsed)
	}
	if e.Active().Name != "heuristic" {
		t.Errorf("expected heuristic fallback, got %q", e.Active().Name)
	}
}

func TestDiacritize(t *testing.T) {
	f := &fakeSidecar{model: "m"}
	p := newTestProvider(t, f, Config{})
	out, err := p.Diacritize(context.Background(), "كتب")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "كتبَ" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDiacritize_ServerError(t *testing.T) {
	f := &fakeSidecar{}
	f.fail.Store(true)
	p := newTestProvider(t, f, Config{MaxFailures: 2})

	for range 3 {
		if _, err := p.Diacritize(context.Background(), "كتب"); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("expected the circuit to open after 2 calls, got %d", n)
	}
	if p.IsAvailable(context.Background()) {
		t.Error("expected sidecar unavailable while the circuit is open")
	}
}

func TestFactory(t *testing.T) {
	b, err := Factory()(map[string]any{"url": "http://localhost:9000", "model": "m", "timeout": "5s", "max_failures": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := b.(*Provider)
	if p.cfg.URL != "http://localhost:9000" || p.cfg.Timeout != 5*time.Second || p.cfg.MaxFailures != 3 {
		t.Errorf("unexpected config %+v", p.cfg)
	}
	if b.Name() != ProviderName {
		t.Errorf("expected name %q, got %q", ProviderName, b.Name())
	}
	if _, err := Factory()(map[string]any{"url": "localhost"}); err == nil {
		t.Error("expected error for invalid url")
	}
	if _, err := Factory()(map[string]any{"timeout": "x"}); err == nil {
		t.Error("expected error for invalid timeout")
	}
}
