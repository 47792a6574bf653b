package process

import (
	"context"
	"time"

	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/resilience"
)

var _ provider.RequestResponse[Command, *Result] = (*Runner)(nil)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Name identifies the runner in logs and breaker callbacks.
	Name string
	// Timeout bounds each run. Zero means no timeout.
	Timeout time.Duration
	// GracePeriod is applied to commands that do not set their own.
	GracePeriod time.Duration
	// CircuitBreaker, if set, fails calls fast after repeated crashes.
	CircuitBreaker *resilience.CircuitBreakerConfig
}

// Runner executes commands with shared defaults and breaker state. The
// breaker persists across calls, so repeated crashes trip it.
type Runner struct {
	cfg RunnerConfig
	cb  *resilience.CircuitBreaker
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{cfg: cfg}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.Name == "" {
			cbCfg.Name = cfg.Name
		}
		r.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	return r
}

// Run executes cmd with the runner's timeout and grace period.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = r.cfg.GracePeriod
	}
	var result *Result
	err := r.Do(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = Run(ctx, cmd)
		return runErr
	})
	return result, err
}

// Do runs fn under the runner's timeout and circuit breaker. It serves
// calls to a Worker, which outlive any single Run.
func (r *Runner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	if r.cb == nil {
		return fn(ctx)
	}
	return r.cb.Execute(func() error { return fn(ctx) })
}

func (r *Runner) Name() string { return r.cfg.Name }

// IsAvailable is false while the breaker is open.
func (r *Runner) IsAvailable(context.Context) bool {
	return r.cb == nil || r.cb.State() != resilience.StateOpen
}

func (r *Runner) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return r.Run(ctx, cmd)
}
