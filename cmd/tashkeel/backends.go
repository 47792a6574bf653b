package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/tashkeel/tashkeel"
)

type backendsReport struct {
	Active     tashkeel.BackendInfo       `json:"active"`
	Candidates []tashkeel.CandidateStatus `json:"candidates"`
}

func newBackendsCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "Show which backend the engine selects and why",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := c.newEngine(cmd.Context())
			defer func() { _ = engine.Close(cmd.Context()) }()

			report := backendsReport{Active: engine.Active(), Candidates: engine.Candidates()}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Fprintf(out, "Active: %s (%s)\n\n", report.Active.Name, report.Active.ModelName)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BACKEND\tSTATE\tERROR")
			for _, cand := range report.Candidates {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", cand.Name, cand.State, cand.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the report as JSON")
	return cmd
}
