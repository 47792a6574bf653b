package tashkeel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DiacritizeBatch diacritizes texts with at most limit calls in flight and
// returns one Outcome per text, in order. A failing item does not stop the
// others. limit <= 0 means unbounded.
func (e *Engine) DiacritizeBatch(ctx context.Context, texts []string, limit int) []Outcome {
	out := make([]Outcome, len(texts))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, text := range texts {
		g.Go(func() error {
			out[i].Input = text
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Result, out[i].Err = e.Diacritize(ctx, text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
