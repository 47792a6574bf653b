package tashkeel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/kbukum/tashkeel/arabic"
	"github.com/kbukum/tashkeel/tashkeel/heuristic"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// funcDiacritizer adapts a function to Diacritizer.
type funcDiacritizer func(ctx context.Context, text string) (Result, error)

func (f funcDiacritizer) Diacritize(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}

func TestDispatcher_DeliversExactlyOnce(t *testing.T) {
	d := NewDispatcher(newTestEngine(t, Config{}))

	ch := d.Submit(context.Background(), "مرحبا")
	o, ok := <-ch
	if !ok {
		t.Fatal("expected an outcome")
	}
	if o.Err != nil {
		t.Fatalf("unexpected error: %v", o.Err)
	}
	if o.Input != "مرحبا" {
		t.Errorf("expected input preserved, got %q", o.Input)
	}
	if o.Result.Text != heuristic.Diacritize("مرحبا") {
		t.Errorf("unexpected text %q", o.Result.Text)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after one outcome")
	}
}

func TestDispatcher_SubmitDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	d := NewDispatcher(funcDiacritizer(func(_ context.Context, text string) (Result, error) {
		<-release
		return Result{Text: text}, nil
	}))

	done := make(chan (<-chan Outcome))
	go func() { done <- d.Submit(context.Background(), "x") }()

	var ch <-chan Outcome
	select {
	case ch = <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on the work")
	}
	close(release)
	if o := <-ch; o.Result.Text != "x" {
		t.Errorf("expected x, got %q", o.Result.Text)
	}
}

func TestDispatcher_NoCancellationAfterStart(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := NewDispatcher(funcDiacritizer(func(ctx context.Context, text string) (Result, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return Result{Text: text + "!"}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	ch := d.Submit(ctx, "كتب")
	<-started
	cancel()
	close(release)

	o := <-ch
	if o.Err != nil {
		t.Fatalf("expected started work to complete, got %v", o.Err)
	}
	if o.Result.Text != "كتب!" {
		t.Errorf("unexpected text %q", o.Result.Text)
	}
}

func TestDispatcher_CancelledBeforeStart(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(funcDiacritizer(func(context.Context, string) (Result, error) {
		calls.Add(1)
		return Result{}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := <-d.Submit(ctx, "نص")

	if !errors.Is(o.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", o.Err)
	}
	if o.Input != "نص" {
		t.Errorf("expected input preserved, got %q", o.Input)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no call, got %d", calls.Load())
	}
}

func TestDispatcher_FailureCarriesInput(t *testing.T) {
	d := NewDispatcher(funcDiacritizer(func(_ context.Context, text string) (Result, error) {
		return Result{}, &FailureError{Input: text, Backend: "model", Cause: errors.New("boom")}
	}))

	o := <-d.Submit(context.Background(), "نص")
	fe, ok := AsFailure(o.Err)
	if !ok {
		t.Fatalf("expected *FailureError, got %v", o.Err)
	}
	if fe.Input != "نص" || o.Input != "نص" {
		t.Errorf("expected input preserved, got %q and %q", fe.Input, o.Input)
	}
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	d := NewDispatcher(funcDiacritizer(func(context.Context, string) (Result, error) {
		panic("bad state")
	}))

	o := <-d.Submit(context.Background(), "x")
	if o.Err == nil {
		t.Fatal("expected error from panicking call")
	}
	if o.Input != "x" {
		t.Errorf("expected input preserved, got %q", o.Input)
	}
}

func TestDispatcher_MaxConcurrent(t *testing.T) {
	var running, peak atomic.Int32
	d := NewDispatcher(funcDiacritizer(func(_ context.Context, text string) (Result, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return Result{Text: text}, nil
	}), WithMaxConcurrent(2))

	var chans []<-chan Outcome
	for range 8 {
		chans = append(chans, d.Submit(context.Background(), "x"))
	}
	d.Wait()
	for _, ch := range chans {
		if o := <-ch; o.Err != nil {
			t.Errorf("unexpected error: %v", o.Err)
		}
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("expected at most 2 concurrent calls, got %d", p)
	}
}

func TestDispatcher_OnStart(t *testing.T) {
	var mu sync.Mutex
	var started []string
	d := NewDispatcher(newTestEngine(t, Config{}), WithOnStart(func(in string) {
		mu.Lock()
		started = append(started, in)
		mu.Unlock()
	}))

	<-d.Submit(context.Background(), "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	<-d.Submit(ctx, "b")
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(started) != 1 || started[0] != "a" {
		t.Errorf("expected OnStart only for started work, got %q", started)
	}
}

func TestDispatcher_LargeInput(t *testing.T) {
	e := newTestEngine(t, Config{})
	release := make(chan struct{})
	d := NewDispatcher(funcDiacritizer(func(ctx context.Context, text string) (Result, error) {
		<-release
		return e.Diacritize(ctx, text)
	}))
	in := strings.Repeat("ب", 100000)

	ch := d.Submit(context.Background(), in)
	select {
	case <-ch:
		t.Fatal("outcome delivered before the work was released")
	default:
	}
	close(release)

	var outcomes []Outcome
	for o := range ch {
		outcomes = append(outcomes, o)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected exactly one outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if o.Err != nil {
		t.Fatalf("unexpected error: %v", o.Err)
	}
	if o.Result.ModelName != heuristic.ModelName {
		t.Errorf("expected model %q, got %q", heuristic.ModelName, o.Result.ModelName)
	}
	if arabic.Strip(o.Result.Text) != in {
		t.Error("expected diacritized text to strip back to the input")
	}
	d.Wait()
}
