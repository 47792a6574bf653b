package tashkeel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/tashkeel/arabic"
	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/resilience"
	"github.com/kbukum/tashkeel/tashkeel/heuristic"
)

// Engine dispatches diacritization calls to the backend selected when it
// was built. It is safe for concurrent use.
type Engine struct {
	cfg      Config
	log      *logger.Logger
	registry *provider.Registry[Backend]

	middlewares []provider.Middleware[string, string]
	cacheStore  provider.ContextStore[CacheEntry]

	active     Backend
	activeInfo BackendInfo
	exec       provider.RequestResponse[string, string]
	fallback   *heuristic.Backend
	candidates []CandidateStatus
	loaded     []Backend

	closeOnce sync.Once
	closeErr  error
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the registry backends are created from.
func WithRegistry(reg *provider.Registry[Backend]) Option {
	return func(e *Engine) { e.registry = reg }
}

// WithLogger sets the engine logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMiddleware adds middlewares around the selected backend, such as
// provider.WithMetrics or provider.WithTracing. They run inside the cache
// and logging layers.
func WithMiddleware(mw ...provider.Middleware[string, string]) Option {
	return func(e *Engine) { e.middlewares = append(e.middlewares, mw...) }
}

// WithCacheStore sets the store used when Config.Cache is enabled.
// Without it an in-memory store is used.
func WithCacheStore(store provider.ContextStore[CacheEntry]) Option {
	return func(e *Engine) { e.cacheStore = store }
}

// NewEngine builds every backend named in cfg.Priority, selects the first
// available one and pins it. Backends that fail to build or initialize are
// logged and skipped. NewEngine never fails: the heuristic is always a
// candidate.
func NewEngine(ctx context.Context, cfg Config, opts ...Option) *Engine {
	cfg.ApplyDefaults()
	e := &Engine{
		cfg:      cfg,
		log:      logger.Get("tashkeel"),
		registry: NewRegistry(),
		fallback: heuristic.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.selectBackend(ctx)
	e.exec = e.buildChain()
	return e
}

func (e *Engine) selectBackend(ctx context.Context) {
	candidates := make(map[string]Backend)
	var order []string
	status := make(map[string]int)

	add := func(name string, state CandidateState, err error) {
		st := CandidateStatus{Name: name, State: state}
		if err != nil {
			st.Error = err.Error()
		}
		status[name] = len(e.candidates)
		e.candidates = append(e.candidates, st)
	}

	for _, name := range e.cfg.Priority {
		if _, seen := status[name]; seen {
			continue
		}
		if name == heuristic.Name {
			candidates[name] = e.fallback
			order = append(order, name)
			add(name, CandidateSkipped, nil)
			continue
		}
		b, err := e.load(ctx, name)
		if err != nil {
			e.log.Warn("backend unavailable", logger.Fields(
				logger.FieldBackend, name,
				logger.FieldError, err.Error(),
			))
			add(name, CandidateUnavailable, err)
			continue
		}
		e.loaded = append(e.loaded, b)
		candidates[name] = b
		order = append(order, name)
		add(name, CandidateSkipped, nil)
	}
	if _, ok := candidates[heuristic.Name]; !ok {
		candidates[heuristic.Name] = e.fallback
		order = append(order, heuristic.Name)
		add(heuristic.Name, CandidateSkipped, nil)
	}

	selected := heuristic.Name
	sel := &provider.PrioritySelector[Backend]{
		Priority: order,
		OnCheck: func(name string, available bool) {
			i := status[name]
			if available {
				e.candidates[i].State = CandidateAvailable
				selected = name
				return
			}
			e.candidates[i].State = CandidateUnavailable
			e.candidates[i].Error = "not available"
			e.log.Warn("backend not available", logger.Fields(logger.FieldBackend, name))
		},
	}
	active, err := sel.Select(ctx, candidates)
	if err != nil {
		active, selected = e.fallback, heuristic.Name
	}
	e.candidates[status[selected]].State = CandidateSelected

	e.active = active
	e.activeInfo = BackendInfo{
		Name:      selected,
		ModelName: modelNameOf(active),
		UsedModel: selected != heuristic.Name,
	}
	e.log.Info("backend selected", logger.Fields(
		logger.FieldBackend, e.activeInfo.Name,
		logger.FieldModel, e.activeInfo.ModelName,
	))
}

// load creates and initializes one backend.
func (e *Engine) load(ctx context.Context, name string) (Backend, error) {
	if !e.registry.Has(name) {
		return nil, BackendUnavailable(name, fmt.Errorf("no factory registered"))
	}
	b, err := e.registry.Create(name, e.cfg.BackendConfig(name))
	if err != nil {
		return nil, BackendUnavailable(name, err)
	}
	initer, ok := b.(provider.Initializable)
	if !ok {
		return b, nil
	}
	retry := resilience.RetryConfig{
		MaxAttempts:    e.cfg.InitAttempts,
		InitialBackoff: parseDuration(e.cfg.InitBackoff, 200*time.Millisecond),
		Jitter:         0.1,
		RetryIf: func(err error) bool {
			return resilience.DefaultRetryIf(err) && !errors.Is(err, ErrBackendUnavailable)
		},
		OnRetry: func(attempt int, err error, wait time.Duration) {
			e.log.Debug("retrying backend init", logger.Fields(
				logger.FieldBackend, name,
				"attempt", attempt,
				"wait_ms", wait.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		},
	}
	if err := resilience.RetryFunc(ctx, retry, func() error { return initer.Init(ctx) }); err != nil {
		if c, ok := b.(provider.Closeable); ok {
			_ = c.Close(ctx)
		}
		if errors.Is(err, ErrBackendUnavailable) {
			return nil, err
		}
		return nil, BackendUnavailable(name, err)
	}
	return b, nil
}

// buildChain wraps the active backend. From the outside in: cache, logging,
// caller middlewares, resilience policies, panic recovery.
func (e *Engine) buildChain() provider.RequestResponse[string, string] {
	var mws []provider.Middleware[string, string]
	if e.cfg.Cache.Enabled {
		store := e.cacheStore
		if store == nil {
			store = provider.NewBoundedMemoryStore[CacheEntry](e.cfg.Cache.Size)
		}
		mws = append(mws, WithCache(store, e.activeInfo.ModelName, parseDuration(e.cfg.Cache.TTL, 0), e.log))
	}
	mws = append(mws, provider.WithLogging[string, string](e.log))
	mws = append(mws, e.middlewares...)
	mws = append(mws, provider.WithResilience[string, string](e.resilienceConfig()))
	return provider.Chain(mws...)(&backendRR{backend: e.active})
}

func (e *Engine) resilienceConfig() provider.ResilienceConfig {
	rc := e.cfg.Resilience
	var cfg provider.ResilienceConfig
	name := e.activeInfo.Name
	if rc.MaxFailures > 0 {
		cfg.CircuitBreaker = &resilience.CircuitBreakerConfig{
			Name:        name,
			MaxFailures: rc.MaxFailures,
			Timeout:     parseDuration(rc.OpenTimeout, 30*time.Second),
			OnStateChange: func(name string, from, to resilience.State) {
				e.log.Warn("circuit breaker state change", logger.Fields(
					logger.FieldBackend, name, "from", from.String(), "to", to.String(),
				))
			},
		}
	}
	if rc.MaxConcurrent > 0 {
		cfg.Bulkhead = &resilience.BulkheadConfig{
			Name:          name,
			MaxConcurrent: rc.MaxConcurrent,
			MaxWait:       parseDuration(rc.MaxWait, 5*time.Second),
		}
	}
	return cfg
}

// Diacritize adds diacritics to text with the selected backend. Empty and
// whitespace-only input is returned unchanged without a backend call. A
// backend error or panic is returned as a *FailureError holding text.
func (e *Engine) Diacritize(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return e.result(text), nil
	}
	input := text
	if e.cfg.NormalizeInput {
		input = arabic.NormalizeForms(text)
	}
	out, err := e.exec.Execute(ctx, input)
	if err != nil {
		e.log.WithContext(ctx).Error("diacritization failed", logger.Fields(
			logger.FieldBackend, e.activeInfo.Name,
			logger.FieldChars, len([]rune(text)),
			logger.FieldError, err.Error(),
		))
		return Result{}, &FailureError{
			Input:     text,
			Backend:   e.activeInfo.Name,
			ModelName: e.activeInfo.ModelName,
			Cause:     err,
		}
	}
	return e.result(out), nil
}

// Fallback diacritizes text with the heuristic regardless of the selected
// backend. It never fails.
func (e *Engine) Fallback(text string) Result {
	if e.cfg.NormalizeInput {
		text = arabic.NormalizeForms(text)
	}
	return Result{
		Text:      heuristic.Diacritize(text),
		ModelName: heuristic.ModelName,
		Backend:   heuristic.Name,
	}
}

func (e *Engine) result(text string) Result {
	return Result{
		Text:      text,
		ModelName: e.activeInfo.ModelName,
		Backend:   e.activeInfo.Name,
		UsedModel: e.activeInfo.UsedModel,
	}
}

// Active describes the selected backend.
func (e *Engine) Active() BackendInfo { return e.activeInfo }

// Candidates returns the selection outcome of every configured backend in
// priority order.
func (e *Engine) Candidates() []CandidateStatus {
	out := make([]CandidateStatus, len(e.candidates))
	copy(out, e.candidates)
	return out
}

// Close releases every backend that was loaded. It is safe to call more
// than once.
func (e *Engine) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		var errs []error
		for _, b := range e.loaded {
			c, ok := b.(provider.Closeable)
			if !ok {
				continue
			}
			if err := c.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", b.Name(), err))
			}
		}
		e.closeErr = errors.Join(errs...)
	})
	return e.closeErr
}

// backendRR adapts a Backend to the middleware chain and turns a panic
// into an error.
type backendRR struct {
	backend Backend
}

func (b *backendRR) Name() string                         { return b.backend.Name() }
func (b *backendRR) IsAvailable(ctx context.Context) bool { return b.backend.IsAvailable(ctx) }

func (b *backendRR) Execute(ctx context.Context, text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend %s panicked: %v", b.backend.Name(), r)
		}
	}()
	return b.backend.Diacritize(ctx, text)
}
