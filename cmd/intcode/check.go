package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/vectors"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		record bool
		memory bool
		color  bool
	)
	cmd := &cobra.Command{
		Use:   "check <vectors.json>",
		Short: "Replay recorded runs and show where they differ",
		Long: "Each vector names a program, its inputs and the outputs, final state\n" +
			"and error it is expected to produce. With --record the expectations are\n" +
			"rewritten from fresh runs instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			vs, err := vectors.LoadFile(path)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if record {
				if err := vectors.Record(cmd.Context(), vs, memory); err != nil {
					return err
				}
				data, err := json.MarshalIndent(vs, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(w, "recorded %d vectors\n", len(vs))
				return nil
			}

			mismatches, err := vectors.Check(cmd.Context(), vs, color)
			if err != nil {
				return err
			}
			for _, m := range mismatches {
				fmt.Fprintf(w, "%sFAIL%s %s\n%s\n", common.ColorRed, common.ColorReset, m.Name, m.Diff)
			}
			fmt.Fprintf(w, "%d/%d vectors passed\n", len(vs)-len(mismatches), len(vs))
			if len(mismatches) > 0 {
				return fmt.Errorf("%d vectors failed", len(mismatches))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&record, "record", false, "rewrite expectations from fresh runs")
	cmd.Flags().BoolVar(&memory, "memory", false, "with --record, also record the final memory image")
	cmd.Flags().BoolVar(&color, "color", false, "color the diff")
	return cmd
}
