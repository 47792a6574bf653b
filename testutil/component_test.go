package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/tashkeel/component"
)

type fakeComponent struct {
	startErr error
	running  bool
	resets   int
}

func (f *fakeComponent) Name() string { return "fake" }

func (f *fakeComponent) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeComponent) Stop(context.Context) error {
	f.running = false
	return nil
}

func (f *fakeComponent) Health(context.Context) component.Health {
	return component.Health{Name: f.Name(), Status: component.StatusHealthy}
}

func (f *fakeComponent) Reset(context.Context) error {
	f.resets++
	return nil
}

func TestSetup_StopsOnCleanup(t *testing.T) {
	c := &fakeComponent{}
	t.Run("inner", func(t *testing.T) {
		T(t).Setup(c)
		if !c.running {
			t.Fatal("expected component to be started")
		}
		T(t).Reset(c)
	})
	if c.running {
		t.Error("expected component to be stopped when the test ended")
	}
	if c.resets != 1 {
		t.Errorf("expected 1 reset, got %d", c.resets)
	}
}

// recordingTB captures Fatalf without stopping the calling goroutine.
type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper()               {}
func (r *recordingTB) Fatalf(string, ...any) { r.failed = true }
func (r *recordingTB) Cleanup(func())        {}
func (r *recordingTB) Errorf(string, ...any) { r.failed = true }

func TestSetup_FailsTestOnStartError(t *testing.T) {
	tb := &recordingTB{TB: t}
	T(tb).Setup(&fakeComponent{startErr: errors.New("port in use")})
	if !tb.failed {
		t.Error("expected start error to fail the test")
	}
}
