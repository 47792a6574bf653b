package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kbukum/tashkeel/arabic"
	apperrors "github.com/kbukum/tashkeel/errors"
	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/tashkeel"
)

type diacritizeOptions struct {
	file            string
	lines           bool
	asJSON          bool
	fallbackOnError bool
}

// diacritizeRecord is one line of --json output.
type diacritizeRecord struct {
	Input     string               `json:"input"`
	Text      string               `json:"text"`
	ModelName string               `json:"model_name,omitempty"`
	Backend   string               `json:"backend,omitempty"`
	UsedModel bool                 `json:"used_model"`
	Coverage  float64              `json:"coverage"`
	Fallback  bool                 `json:"fallback,omitempty"`
	Error     *apperrors.ErrorBody `json:"error,omitempty"`
}

func newDiacritizeCmd(c *cli) *cobra.Command {
	var opts diacritizeOptions
	cmd := &cobra.Command{
		Use:   "diacritize [text...]",
		Short: "Add diacritics to Arabic text",
		Long: `Diacritize text given as arguments, read from --file, or read from stdin.

With --lines every line is diacritized separately and written on its own
line. When the backend fails the input is written back unchanged and the
command exits non-zero, unless --fallback-on-error is set.`,
		Example: `  tashkeel diacritize "ذهب الولد إلى المدرسة"
  tashkeel diacritize --lines --file corpus.txt --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args, opts.file)
			if err != nil {
				return err
			}
			inputs := []string{text}
			if opts.lines {
				inputs = splitLines(text)
			}
			return c.runDiacritize(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), inputs, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read input from a file")
	cmd.Flags().BoolVarP(&opts.lines, "lines", "l", false, "diacritize each line separately")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "write one JSON object per input")
	cmd.Flags().BoolVar(&opts.fallbackOnError, "fallback-on-error", false, "use the heuristic when the model fails")
	return cmd
}

// runDiacritize submits every input to a Dispatcher and writes the outcomes
// in input order. The calling goroutine only reports progress and waits.
func (c *cli) runDiacritize(ctx context.Context, stdout, stderr io.Writer, inputs []string, opts diacritizeOptions) error {
	engine := c.newEngine(ctx)
	defer func() { _ = engine.Close(context.Background()) }()

	var progress sync.Once
	d := tashkeel.NewDispatcher(engine,
		tashkeel.WithMaxConcurrent(c.cfg.Engine.MaxConcurrent),
		tashkeel.WithOnStart(func(string) {
			progress.Do(func() { fmt.Fprintln(stderr, "Diacritizing…") })
		}),
	)

	pending := make([]<-chan tashkeel.Outcome, len(inputs))
	for i, in := range inputs {
		pending[i] = d.Submit(ctx, in)
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	failed := 0
	for _, ch := range pending {
		rec := c.record(engine, <-ch, opts.fallbackOnError)
		if rec.Error != nil {
			failed++
		}
		if opts.asJSON {
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		if rec.Error != nil {
			fmt.Fprintf(stderr, "diacritization failed: %s\n", rec.Error.Message)
		}
		fmt.Fprintln(stdout, rec.Text)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

// record turns an outcome into output. A failed input is echoed unchanged.
func (c *cli) record(engine *tashkeel.Engine, o tashkeel.Outcome, fallbackOnError bool) diacritizeRecord {
	res, fellBack := o.Result, false
	if o.Err != nil {
		if _, ok := tashkeel.AsFailure(o.Err); !ok || !fallbackOnError {
			c.log.Error("Diacritization failed", logger.ErrorFields("diacritize", o.Err))
			body := apperrors.From(o.Err).ToResponse().Error
			return diacritizeRecord{Input: o.Input, Text: o.Input, Error: &body}
		}
		res, fellBack = engine.Fallback(o.Input), true
	}
	return diacritizeRecord{
		Input:     o.Input,
		Text:      res.Text,
		ModelName: res.ModelName,
		Backend:   res.Backend,
		UsedModel: res.UsedModel,
		Coverage:  arabic.Coverage(res.Text),
		Fallback:  fellBack,
	}
}
