package backends

import (
	"context"
	"slices"
	"testing"

	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/tashkeel/heuristic"
)

func TestNewRegistry(t *testing.T) {
	got := NewRegistry().List()
	want := []string{"camel", "heuristic", "sidecar"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEngineFallsBackWhenModelsMissing(t *testing.T) {
	ctx := context.Background()
	engine := tashkeel.NewEngine(ctx, tashkeel.Config{
		Priority: DefaultPriority,
		Backends: map[string]map[string]any{
			"camel":   {"python": "/nonexistent/python3"},
			"sidecar": {"url": "http://127.0.0.1:1", "timeout": "200ms"},
		},
		InitAttempts: 1,
	}, tashkeel.WithRegistry(NewRegistry()), tashkeel.WithLogger(logger.NewNop()))
	defer engine.Close(ctx)

	if engine.Active().Name != heuristic.Name {
		t.Fatalf("expected heuristic, got %q", engine.Active().Name)
	}
	for _, c := range engine.Candidates()[:2] {
		if c.State != tashkeel.CandidateUnavailable {
			t.Errorf("expected %s unavailable, got %s", c.Name, c.State)
		}
	}
	res, err := engine.Diacritize(ctx, "مرحبا")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UsedModel {
		t.Error("expected heuristic result")
	}
}
