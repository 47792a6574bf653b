package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/tashkeel/arabic"
)

func newStripCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "strip [text...]",
		Short: "Remove diacritics from Arabic text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), arabic.Strip(text))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read input from a file")
	return cmd
}
