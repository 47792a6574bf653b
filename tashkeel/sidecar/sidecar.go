// Package sidecar calls a pretrained diacritization model served over
// HTTP by a local sidecar process.
//
// The sidecar exposes two endpoints:
//
//	GET  /health      -> 200 {"model": "..."}
//	POST /diacritize  {"text": "...", "model": "..."} -> {"text": "...", "model": "..."}
package sidecar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/tashkeel/httpclient"
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/resilience"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/version"
)

const (
	// ProviderName is the registered name for the sidecar backend.
	ProviderName = "sidecar"

	defaultURL         = "http://localhost:8390"
	defaultTimeout     = 30 * time.Second
	defaultMaxFailures = 5
)

// Config holds configuration for the sidecar backend.
type Config struct {
	URL string `json:"url" yaml:"url"`
	// Model is sent with every request. Empty means the sidecar default,
	// learned from /health.
	Model       string        `json:"model,omitempty" yaml:"model"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	MaxFailures int           `json:"max_failures" yaml:"max_failures"`
}

// Provider implements tashkeel.Backend against an HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client

	mu    sync.RWMutex
	model string
}

type healthResponse struct {
	Status string `json:"status,omitempty"`
	Model  string `json:"model,omitempty"`
}

type diacritizeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type diacritizeResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// NewProvider creates a sidecar backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"User-Agent": version.UserAgent()},
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			Name:        ProviderName,
			MaxFailures: cfg.MaxFailures,
			Timeout:     30 * time.Second,
			IsFailure:   countsAgainstSidecar,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sidecar: %w", err)
	}
	return &Provider{cfg: cfg, client: client, model: cfg.Model}, nil
}

// countsAgainstSidecar ignores caller errors: a rejected input says
// nothing about the sidecar's health.
func countsAgainstSidecar(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var e *httpclient.Error
	if errors.As(err, &e) && e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests {
		return false
	}
	return true
}

// Factory returns a provider.Factory that creates sidecar backends from a
// generic config map.
func Factory() provider.Factory[tashkeel.Backend] {
	return func(cfg map[string]any) (tashkeel.Backend, error) {
		sc := Config{}
		if v, ok := cfg["url"].(string); ok {
			sc.URL = v
		}
		if v, ok := cfg["model"].(string); ok {
			sc.Model = v
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			sc.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("sidecar: invalid timeout %q: %w", v, err)
			}
			sc.Timeout = d
		}
		if v, ok := cfg["max_failures"].(int); ok {
			sc.MaxFailures = v
		}
		return NewProvider(sc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// ModelName returns the configured model, or the one the sidecar reported.
func (p *Provider) ModelName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == "" {
		return ProviderName
	}
	return p.model
}

// Init checks that the sidecar is healthy and learns its model name.
func (p *Provider) Init(ctx context.Context) error {
	var health healthResponse
	if err := p.client.GetJSON(ctx, "/health", &health); err != nil {
		// Nothing listening or no /health route: the sidecar is not
		// deployed, and retrying will not change that.
		if httpclient.IsRefused(err) || httpclient.IsNotFound(err) {
			return tashkeel.BackendUnavailable(ProviderName, err)
		}
		return fmt.Errorf("sidecar health: %w", err)
	}
	p.mu.Lock()
	if p.model == "" {
		p.model = health.Model
	}
	p.mu.Unlock()
	return nil
}

// IsAvailable checks if the sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	if p.client.CircuitOpen() {
		return false
	}
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

// Diacritize sends text to the sidecar.
func (p *Provider) Diacritize(ctx context.Context, text string) (string, error) {
	var resp diacritizeResponse
	req := diacritizeRequest{Text: text, Model: p.cfg.Model}
	if err := p.client.PostJSON(ctx, "/diacritize", req, &resp); err != nil {
		return "", fmt.Errorf("sidecar diacritize: %w", err)
	}
	if resp.Text == "" {
		return "", errors.New("sidecar diacritize: empty text in response")
	}
	return resp.Text, nil
}
