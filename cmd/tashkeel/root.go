package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/provider"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/version"
)

// cli carries state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type cli struct {
	newRegistry func() *provider.Registry[tashkeel.Backend]

	configPath string
	debug      bool

	cfg *Config
	log *logger.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "tashkeel",
		Short: "Arabic diacritization engine",
		Long: `tashkeel adds diacritics (harakat) to Arabic text.

It uses a pretrained model when one is available and falls back to a
rule-based heuristic otherwise. The backend in use is reported with every
result.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config.yml")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newDiacritizeCmd(c),
		newStripCmd(),
		newBackendsCmd(c),
		newServeCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := loadConfig(c.configPath, c.debug)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(c.log)
	return nil
}

// engineOptions are the options every command builds its engine with.
func (c *cli) engineOptions(extra ...tashkeel.Option) []tashkeel.Option {
	opts := []tashkeel.Option{
		tashkeel.WithRegistry(c.newRegistry()),
		tashkeel.WithLogger(c.log),
	}
	return append(opts, extra...)
}

func (c *cli) newEngine(ctx context.Context) *tashkeel.Engine {
	return tashkeel.NewEngine(ctx, c.cfg.Engine, c.engineOptions()...)
}
