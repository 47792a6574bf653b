// Package camel runs the CAMeL Tools pretrained Arabic diacritizer in a
// long-lived Python worker process. The model is loaded once, in Init.
package camel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/tashkeel/process"
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/resilience"
	"github.com/kbukum/tashkeel/tashkeel"
)

const (
	// ProviderName is the registered name for the CAMeL backend.
	ProviderName = "camel"
	// ModelName identifies CAMeL output in results.
	ModelName = "camel_tools PretrainedDiacritizer"

	defaultPython      = "python3"
	defaultTimeout     = 60 * time.Second
	defaultLoadTimeout = 5 * time.Minute
	defaultGracePeriod = 3 * time.Second
	defaultMaxFailures = 3

	// Worker exit codes during startup.
	exitMissing    = 3
	exitLoadFailed = 4
)

// WorkerScript loads the model, prints {"ready": true}, then answers each
// {"text": ...} line on stdin with one {"text": ...} or {"error": ...} line.
const WorkerScript = `import json, sys
try:
    from camel_tools.diacritization.pretrained import PretrainedDiacritizer
except ImportError as exc:
    sys.stderr.write("%s\n" % exc)
    sys.exit(3)
try:
    model = PretrainedDiacritizer.pretrained()
except Exception as exc:
    sys.stderr.write("%s: %s\n" % (type(exc).__name__, exc))
    sys.exit(4)
print(json.dumps({"ready": True}), flush=True)
for line in iter(sys.stdin.readline, ""):
    try:
        out = {"text": model.diacritize(json.loads(line)["text"])}
    except Exception as exc:
        out = {"error": "%s: %s" % (type(exc).__name__, exc)}
    print(json.dumps(out, ensure_ascii=False), flush=True)
`

// Config holds configuration for the CAMeL backend.
type Config struct {
	// Python is the interpreter to run.
	Python string `json:"python" yaml:"python"`
	// Script overrides WorkerScript.
	Script string `json:"script,omitempty" yaml:"script"`
	// Timeout bounds each diacritization call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// LoadTimeout bounds worker startup, which includes loading the model.
	LoadTimeout time.Duration `json:"load_timeout" yaml:"load_timeout"`
	// GracePeriod is the wait between SIGTERM and SIGKILL.
	GracePeriod time.Duration `json:"grace_period" yaml:"grace_period"`
	// MaxFailures consecutive failed calls stop further calls for a while.
	MaxFailures int `json:"max_failures" yaml:"max_failures"`
	// Env is added to the interpreter environment.
	Env map[string]string `json:"env,omitempty" yaml:"env"`
}

type request struct {
	Text string `json:"text"`
}

type response struct {
	Ready bool   `json:"ready,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Provider implements tashkeel.Backend on top of a process.Worker. A
// worker that dies is restarted on the next call; the runner's breaker
// stops restarts after repeated failures.
type Provider struct {
	cfg    Config
	runner *process.Runner
	ready  atomic.Bool

	closed atomic.Bool

	mu     sync.Mutex
	worker *process.Worker
}

// NewProvider creates a CAMeL backend. Call Init before use.
func NewProvider(cfg Config) *Provider {
	if cfg.Python == "" {
		cfg.Python = defaultPython
	}
	if cfg.Script == "" {
		cfg.Script = WorkerScript
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.LoadTimeout == 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = defaultGracePeriod
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	return &Provider{
		cfg: cfg,
		runner: process.NewRunner(process.RunnerConfig{
			Name:        ProviderName,
			GracePeriod: cfg.GracePeriod,
			CircuitBreaker: &resilience.CircuitBreakerConfig{
				MaxFailures: cfg.MaxFailures,
				Timeout:     time.Minute,
			},
		}),
	}
}

// Factory returns a provider.Factory that creates CAMeL backends from a
// generic config map.
func Factory() provider.Factory[tashkeel.Backend] {
	return func(cfg map[string]any) (tashkeel.Backend, error) {
		cc := Config{}
		if v, ok := cfg["python"].(string); ok {
			cc.Python = v
		}
		if v, ok := cfg["script"].(string); ok {
			cc.Script = v
		}
		var err error
		if cc.Timeout, err = durationValue(cfg, "timeout"); err != nil {
			return nil, err
		}
		if cc.LoadTimeout, err = durationValue(cfg, "load_timeout"); err != nil {
			return nil, err
		}
		if cc.GracePeriod, err = durationValue(cfg, "grace_period"); err != nil {
			return nil, err
		}
		if v, ok := cfg["max_failures"].(int); ok {
			cc.MaxFailures = v
		}
		if env, ok := cfg["env"].(map[string]any); ok {
			cc.Env = make(map[string]string, len(env))
			for k, v := range env {
				cc.Env[k] = fmt.Sprint(v)
			}
		}
		return NewProvider(cc), nil
	}
}

func durationValue(cfg map[string]any, key string) (time.Duration, error) {
	switch v := cfg[key].(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("camel: invalid %s %q: %w", key, v, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("camel: invalid %s type %T", key, v)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// ModelName returns the model identifier.
func (p *Provider) ModelName() string { return ModelName }

// Init starts the worker and waits for it to load the model. A missing
// interpreter, a missing camel_tools package or a model that fails to load
// is reported as tashkeel.ErrBackendUnavailable.
func (p *Provider) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.worker != nil && !p.worker.Exited() {
		return nil
	}
	if err := p.start(ctx); err != nil {
		return err
	}
	p.ready.Store(true)
	return nil
}

// start replaces the worker. Callers hold p.mu.
func (p *Provider) start(ctx context.Context) error {
	if p.closed.Load() {
		return errors.New("camel: backend closed")
	}
	w, err := process.StartWorker(p.command(p.cfg.Script))
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return tashkeel.BackendUnavailable(ProviderName, fmt.Errorf("python interpreter %q: %w", p.cfg.Python, err))
		}
		return fmt.Errorf("camel: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.LoadTimeout)
	defer cancel()
	line, err := w.Next(ctx)
	if err != nil {
		_ = w.Close()
		switch {
		case !errors.Is(err, process.ErrWorkerExited):
			return fmt.Errorf("camel: model load: %w", err)
		case w.ExitCode() == exitMissing:
			return tashkeel.BackendUnavailable(ProviderName, errors.New("camel_tools is not installed"))
		case w.ExitCode() == exitLoadFailed:
			return tashkeel.BackendUnavailable(ProviderName, fmt.Errorf("model failed to load: %w", err))
		default:
			return fmt.Errorf("camel: model load: %w", err)
		}
	}
	var hello response
	if err := json.Unmarshal(line, &hello); err != nil || !hello.Ready {
		_ = w.Close()
		return fmt.Errorf("camel: unexpected worker greeting %q", line)
	}
	p.worker = w
	return nil
}

// live returns the running worker, restarting it if it has exited.
func (p *Provider) live(ctx context.Context) (*process.Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.worker != nil && !p.worker.Exited() {
		return p.worker, nil
	}
	if err := p.start(ctx); err != nil {
		return nil, err
	}
	return p.worker, nil
}

// IsAvailable is true after a successful Init while calls are not failing
// repeatedly.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.ready.Load() && !p.closed.Load() && p.runner.IsAvailable(ctx)
}

// Diacritize sends text to the worker.
func (p *Provider) Diacritize(ctx context.Context, text string) (string, error) {
	if !p.ready.Load() {
		return "", errors.New("camel: backend not initialized")
	}
	req, err := json.Marshal(request{Text: text})
	if err != nil {
		return "", fmt.Errorf("camel: %w", err)
	}

	var resp response
	err = p.runner.Do(ctx, func(ctx context.Context) error {
		w, err := p.live(ctx)
		if err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
		line, err := w.Call(callCtx, req)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(line, &resp); err != nil {
			return fmt.Errorf("decode worker response: %w", err)
		}
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("camel: %w", err)
	}
	if resp.Text == "" && text != "" {
		return "", errors.New("camel: model produced no output")
	}
	return resp.Text, nil
}

// Close stops the worker. The backend cannot be used afterwards.
func (p *Provider) Close(context.Context) error {
	p.closed.Store(true)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.worker == nil {
		return nil
	}
	err := p.worker.Close()
	p.worker = nil
	return err
}

func (p *Provider) command(script string) process.Command {
	env := []string{"PYTHONIOENCODING=utf-8", "PYTHONUNBUFFERED=1"}
	keys := make([]string, 0, len(p.cfg.Env))
	for k := range p.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+p.cfg.Env[k])
	}
	return process.Command{
		Binary:      p.cfg.Python,
		Args:        []string{"-c", script},
		Env:         env,
		GracePeriod: p.cfg.GracePeriod,
	}
}
