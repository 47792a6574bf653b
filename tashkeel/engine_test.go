package tashkeel

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kbukum/tashkeel/errors"
	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/resilience"
	"github.com/kbukum/tashkeel/tashkeel/heuristic"
	"github.com/kbukum/tashkeel/tashkeel/tashkeeltest"
)

func registryWith(backends ...*tashkeeltest.Backend) *provider.Registry[Backend] {
	reg := NewRegistry()
	for _, b := range backends {
		reg.RegisterFactory(b.Name(), func(map[string]any) (Backend, error) { return b, nil })
	}
	return reg
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	e := NewEngine(context.Background(), cfg, opts...)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func TestNewEngine_DefaultsToHeuristic(t *testing.T) {
	e := newTestEngine(t, Config{})

	info := e.Active()
	if info.Name != heuristic.Name {
		t.Errorf("expected backend %q, got %q", heuristic.Name, info.Name)
	}
	if info.ModelName != heuristic.ModelName {
		t.Errorf("expected model %q, got %q", heuristic.ModelName, info.ModelName)
	}
	if info.UsedModel {
		t.Error("expected UsedModel to be false")
	}
	cands := e.Candidates()
	if len(cands) != 1 || cands[0].State != CandidateSelected {
		t.Errorf("expected single selected heuristic candidate, got %+v", cands)
	}
}

func TestNewEngine_SelectsModel(t *testing.T) {
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	info := e.Active()
	if info.Name != "model" || info.ModelName != "model-model" || !info.UsedModel {
		t.Errorf("unexpected active backend: %+v", info)
	}
	cands := e.Candidates()
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}
	if cands[0].Name != "model" || cands[0].State != CandidateSelected {
		t.Errorf("expected model selected, got %+v", cands[0])
	}
	if cands[1].Name != heuristic.Name || cands[1].State != CandidateSkipped {
		t.Errorf("expected heuristic skipped, got %+v", cands[1])
	}
	if model.Inits() != 1 {
		t.Errorf("expected 1 init, got %d", model.Inits())
	}
}

func TestNewEngine_AbsorbsUnavailableBackends(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() (*provider.Registry[Backend], *tashkeeltest.Backend)
		wantErr string
	}{
		{
			name: "factory error",
			setup: func() (*provider.Registry[Backend], *tashkeeltest.Backend) {
				reg := NewRegistry()
				reg.RegisterFactory("model", func(map[string]any) (Backend, error) {
					return nil, errors.New("camel_tools not installed")
				})
				return reg, nil
			},
			wantErr: "camel_tools not installed",
		},
		{
			name: "not registered",
			setup: func() (*provider.Registry[Backend], *tashkeeltest.Backend) {
				return NewRegistry(), nil
			},
			wantErr: "no factory registered",
		},
		{
			name: "init keeps failing",
			setup: func() (*provider.Registry[Backend], *tashkeeltest.Backend) {
				b := tashkeeltest.New("model")
				b.InitErrs = []error{errors.New("load failed"), errors.New("load failed")}
				return registryWith(b), b
			},
			wantErr: "load failed",
		},
		{
			name: "reports not available",
			setup: func() (*provider.Registry[Backend], *tashkeeltest.Backend) {
				b := tashkeeltest.New("model")
				b.Unavailable = true
				return registryWith(b), b
			},
			wantErr: "not available",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := tt.setup()
			e := newTestEngine(t, Config{Priority: []string{"model"}, InitBackoff: "1ms"}, WithRegistry(reg))

			if e.Active().Name != heuristic.Name {
				t.Fatalf("expected heuristic fallback, got %q", e.Active().Name)
			}
			cands := e.Candidates()
			if cands[0].State != CandidateUnavailable {
				t.Errorf("expected model unavailable, got %q", cands[0].State)
			}
			if !strings.Contains(cands[0].Error, tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, cands[0].Error)
			}
			res, err := e.Diacritize(context.Background(), "مرحبا")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Text != heuristic.Diacritize("مرحبا") {
				t.Errorf("expected heuristic output, got %q", res.Text)
			}
		})
	}
}

func TestNewEngine_RetriesInit(t *testing.T) {
	model := tashkeeltest.New("model")
	model.InitErrs = []error{errors.New("sidecar starting")}
	e := newTestEngine(t, Config{Priority: []string{"model"}, InitAttempts: 2, InitBackoff: "1ms"},
		WithRegistry(registryWith(model)))

	if e.Active().Name != "model" {
		t.Errorf("expected model after retry, got %q", e.Active().Name)
	}
	if model.Inits() != 2 {
		t.Errorf("expected 2 init attempts, got %d", model.Inits())
	}
}

func TestNewEngine_NoRetryWhenInitReportsUnavailable(t *testing.T) {
	model := tashkeeltest.New("model")
	model.InitErrs = []error{BackendUnavailable("model", errors.New("module missing"))}
	e := newTestEngine(t, Config{Priority: []string{"model"}, InitAttempts: 3, InitBackoff: "1ms"},
		WithRegistry(registryWith(model)))

	if e.Active().Name != heuristic.Name {
		t.Errorf("expected heuristic, got %q", e.Active().Name)
	}
	if model.Inits() != 1 {
		t.Errorf("expected a single init attempt, got %d", model.Inits())
	}
	if model.Closes() != 1 {
		t.Errorf("expected failed backend to be closed, got %d closes", model.Closes())
	}
}

func TestNewEngine_PriorityOrder(t *testing.T) {
	first := tashkeeltest.New("first")
	first.Unavailable = true
	second := tashkeeltest.New("second")
	e := newTestEngine(t, Config{Priority: []string{"first", "second", "first"}},
		WithRegistry(registryWith(first, second)))

	if e.Active().Name != "second" {
		t.Errorf("expected second, got %q", e.Active().Name)
	}
	var names []string
	for _, c := range e.Candidates() {
		names = append(names, c.Name+":"+string(c.State))
	}
	want := "first:unavailable second:selected heuristic:skipped"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNewEngine_HeuristicListedFirst(t *testing.T) {
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{heuristic.Name, "model"}},
		WithRegistry(registryWith(model)))

	if e.Active().Name != heuristic.Name {
		t.Errorf("expected heuristic, got %q", e.Active().Name)
	}
	if len(e.Candidates()) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(e.Candidates()))
	}
}

func TestEngine_Diacritize(t *testing.T) {
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	res, err := e.Diacritize(context.Background(), "كتب")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Result{Text: tashkeeltest.MarkAll("كتب"), ModelName: "model-model", Backend: "model", UsedModel: true}
	if res != want {
		t.Errorf("expected %+v, got %+v", want, res)
	}
}

func TestEngine_ModelNameStable(t *testing.T) {
	tests := []struct {
		name      string
		priority  []string
		wantModel string
	}{
		{"model backend", []string{"model"}, "model-model"},
		{"heuristic", nil, heuristic.ModelName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, Config{Priority: tt.priority}, WithRegistry(registryWith(tashkeeltest.New("model"))))
			for _, in := range []string{"كتب", "درس الطالب", "", "قرأ", "كتب"} {
				res, err := e.Diacritize(context.Background(), in)
				if err != nil {
					t.Fatalf("unexpected error for %q: %v", in, err)
				}
				if res.ModelName != tt.wantModel {
					t.Errorf("%q: expected model %q, got %q", in, tt.wantModel, res.ModelName)
				}
			}
		})
	}
}

func TestDiacritize_NotIdempotent(t *testing.T) {
	// The test double marks every letter again, even one already marked.
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	first, err := e.Diacritize(context.Background(), "كتب")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Diacritize(context.Background(), first.Text)
	if err != nil {
		t.Fatalf("expected already-diacritized input to be accepted, got %v", err)
	}
	if second.Text == first.Text {
		t.Errorf("expected a re-marking backend to change %q", first.Text)
	}
	if second.ModelName != first.ModelName {
		t.Errorf("expected model %q, got %q", first.ModelName, second.ModelName)
	}
	if got := model.Calls(); len(got) != 2 || got[1] != first.Text {
		t.Errorf("expected the diacritized text to reach the backend, got %q", got)
	}
}

func TestEngine_DiacritizeBlankInput(t *testing.T) {
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	for _, in := range []string{"", " ", "\n\t  "} {
		res, err := e.Diacritize(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if res.Text != in {
			t.Errorf("expected %q unchanged, got %q", in, res.Text)
		}
		if res.ModelName != "model-model" {
			t.Errorf("expected active model name, got %q", res.ModelName)
		}
	}
	if n := len(model.Calls()); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestEngine_FailurePreservesInput(t *testing.T) {
	cause := errors.New("model crashed")
	model := tashkeeltest.New("model")
	model.Fn = func(context.Context, string) (string, error) { return "", cause }
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	input := "نص طويل"
	res, err := e.Diacritize(context.Background(), input)
	if err == nil {
		t.Fatal("expected error")
	}
	if res != (Result{}) {
		t.Errorf("expected zero result, got %+v", res)
	}
	fe, ok := AsFailure(err)
	if !ok {
		t.Fatalf("expected *FailureError, got %T", err)
	}
	if fe.Input != input {
		t.Errorf("expected input %q, got %q", input, fe.Input)
	}
	if fe.Backend != "model" || fe.ModelName != "model-model" {
		t.Errorf("unexpected provenance: %+v", fe)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in error chain")
	}
	if n := len(model.Calls()); n != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", n)
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatal("expected failure to map to an AppError")
	}
	if appErr.Code != apperrors.ErrCodeDiacritizationFailed {
		t.Errorf("expected code %s, got %s", apperrors.ErrCodeDiacritizationFailed, appErr.Code)
	}
	if appErr.Details["input"] != input {
		t.Errorf("expected input detail %q, got %v", input, appErr.Details["input"])
	}
}

func TestEngine_PanicBecomesFailure(t *testing.T) {
	model := tashkeeltest.New("model")
	model.Fn = func(context.Context, string) (string, error) { panic("index out of range") }
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	_, err := e.Diacritize(context.Background(), "كتب")
	fe, ok := AsFailure(err)
	if !ok {
		t.Fatalf("expected *FailureError, got %v", err)
	}
	if !strings.Contains(fe.Cause.Error(), "index out of range") {
		t.Errorf("expected panic value in cause, got %v", fe.Cause)
	}
}

func TestEngine_NormalizeInput(t *testing.T) {
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{"model"}, NormalizeInput: true},
		WithRegistry(registryWith(model)))

	if _, err := e.Diacritize(context.Background(), "\ufefb"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := model.Calls()
	if len(calls) != 1 || calls[0] != "لا" {
		t.Errorf("expected normalized lam alef, got %q", calls)
	}
}

func TestEngine_Fallback(t *testing.T) {
	model := tashkeeltest.New("model")
	e := newTestEngine(t, Config{Priority: []string{"model"}}, WithRegistry(registryWith(model)))

	res := e.Fallback("مرحبا")
	if res.Backend != heuristic.Name || res.ModelName != heuristic.ModelName || res.UsedModel {
		t.Errorf("unexpected fallback provenance: %+v", res)
	}
	if res.Text != heuristic.Diacritize("مرحبا") {
		t.Errorf("unexpected fallback text %q", res.Text)
	}
	if len(model.Calls()) != 0 {
		t.Error("fallback must not call the selected backend")
	}
}

func TestEngine_Cache(t *testing.T) {
	model := tashkeeltest.New("model")
	store := provider.NewMemoryStore[CacheEntry]()
	e := newTestEngine(t, Config{Priority: []string{"model"}, Cache: CacheConfig{Enabled: true}},
		WithRegistry(registryWith(model)), WithCacheStore(store))

	for range 3 {
		if _, err := e.Diacritize(context.Background(), "كتب"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := len(model.Calls()); n != 1 {
		t.Errorf("expected 1 backend call, got %d", n)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 cache entry, got %d", store.Len())
	}
}

func TestEngine_CircuitBreakerFailsFast(t *testing.T) {
	model := tashkeeltest.New("model")
	model.Fn = func(context.Context, string) (string, error) { return "", errors.New("timeout") }
	e := newTestEngine(t, Config{
		Priority:   []string{"model"},
		Resilience: ResilienceConfig{MaxFailures: 1, OpenTimeout: "1h"},
	}, WithRegistry(registryWith(model)))

	_, _ = e.Diacritize(context.Background(), "كتب")
	_, err := e.Diacritize(context.Background(), "كتب")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected circuit open, got %v", err)
	}
	if _, ok := AsFailure(err); !ok {
		t.Error("expected circuit open to surface as *FailureError")
	}
	if n := len(model.Calls()); n != 1 {
		t.Errorf("expected 1 backend call, got %d", n)
	}
}

func TestEngine_MiddlewareOption(t *testing.T) {
	var seen []string
	mw := func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
		return provider.Func(inner.Name(), func(ctx context.Context, in string) (string, error) {
			seen = append(seen, in)
			return inner.Execute(ctx, in)
		})
	}
	e := newTestEngine(t, Config{}, WithMiddleware(mw))

	if _, err := e.Diacritize(context.Background(), "كتب"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "كتب" {
		t.Errorf("expected middleware to see the input, got %q", seen)
	}
}

func TestEngine_Close(t *testing.T) {
	model := tashkeeltest.New("model")
	model.CloseErr = errors.New("process exited")
	e := NewEngine(context.Background(), Config{Priority: []string{"model"}},
		WithLogger(logger.NewNop()), WithRegistry(registryWith(model)))

	err := e.Close(context.Background())
	if err == nil || !strings.Contains(err.Error(), "process exited") {
		t.Errorf("expected close error, got %v", err)
	}
	_ = e.Close(context.Background())
	if model.Closes() != 1 {
		t.Errorf("expected 1 close, got %d", model.Closes())
	}
}
