package tashkeel

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Outcome is delivered once per submitted call. Input is always the text
// that was submitted, so it survives a failure.
type Outcome struct {
	Input  string
	Result Result
	Err    error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxConcurrent bounds the number of calls running at once. Calls
// beyond the bound wait on their own goroutine. n <= 0 means unbounded.
func WithMaxConcurrent(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithOnStart sets a hook called on the worker goroutine right before a
// call starts, for progress reporting.
func WithOnStart(fn func(input string)) DispatcherOption {
	return func(d *Dispatcher) { d.onStart = fn }
}

// Dispatcher runs diacritization calls in the background.
type Dispatcher struct {
	target  Diacritizer
	sem     *semaphore.Weighted
	onStart func(string)
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher for target, usually an *Engine.
func NewDispatcher(target Diacritizer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{target: target}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit starts a call and returns immediately. The channel receives
// exactly one Outcome and is then closed.
//
// ctx only matters until the call starts: if it is done before then, the
// Outcome carries ctx.Err(). Once started, the call runs to completion
// even if ctx is cancelled.
func (d *Dispatcher) Submit(ctx context.Context, text string) <-chan Outcome {
	out := make(chan Outcome, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(out)
		out <- d.run(ctx, text)
	}()
	return out
}

// Wait blocks until every submitted call has delivered its Outcome.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, text string) (o Outcome) {
	o.Input = text
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}
	if d.sem != nil {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			o.Err = err
			return o
		}
		defer d.sem.Release(1)
	}
	defer func() {
		if r := recover(); r != nil {
			o.Result = Result{}
			o.Err = fmt.Errorf("diacritization panicked: %v", r)
		}
	}()
	if d.onStart != nil {
		d.onStart(text)
	}
	o.Result, o.Err = d.target.Diacritize(context.WithoutCancel(ctx), text)
	return o
}
