package main

import (
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/host"
	"github.com/spf13/cobra"
)

func newAmplifyCmd(a *app) *cobra.Command {
	var (
		phases   string
		order    string
		feedback bool
		signal   int64
		report   bool
		chart    string
	)
	cmd := &cobra.Command{
		Use:   "amplify <file|ref>",
		Short: "Chain copies of a program and search for the highest signal",
		Long: "Runs one copy of the program per phase setting, each feeding the next.\n" +
			"With --order the chain runs once in that order; otherwise every ordering\n" +
			"of --phases is tried and the best one reported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			var best []int64
			if order != "" {
				if best, err = parsePhases(order); err != nil {
					return fmt.Errorf("--order: %w", err)
				}
			} else {
				options, err := parsePhases(phases)
				if err != nil {
					return fmt.Errorf("--phases: %w", err)
				}
				sweep, err := host.SignalSweep(ctx, program, options, signal, feedback)
				if err != nil {
					return err
				}
				top := sweep.Best()
				best = top.Phases
				fmt.Fprintf(w, "max signal %d with phases %v\n", top.Output, best)
				if chart != "" {
					if err := writeChart(chart, sweep, feedback); err != nil {
						return err
					}
				}
				if !report {
					return nil
				}
			}

			run, err := host.RunAmplifiers(ctx, program, best, signal, feedback)
			if report && run != nil {
				fmt.Fprint(w, run.Report())
			}
			if err != nil {
				return err
			}
			if order != "" {
				fmt.Fprintf(w, "signal %d\n", run.Output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&phases, "phases", "0-4", "phase settings to permute, a range like 5-9 or a list")
	cmd.Flags().StringVar(&order, "order", "", "run a single chain with these phases in order")
	cmd.Flags().BoolVar(&feedback, "feedback", false, "feed the last amplifier back into the first")
	cmd.Flags().Int64Var(&signal, "signal", 0, "signal injected into the first amplifier")
	cmd.Flags().BoolVar(&report, "report", false, "print a per-amplifier tree of the chosen run")
	cmd.Flags().StringVar(&chart, "chart", "", "write an HTML bar chart of every ordering's signal to this file")
	return cmd
}

func writeChart(path string, sweep host.Sweep, feedback bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	title := "amplifier signal by phase order"
	if feedback {
		title += " (feedback)"
	}
	if err := sweep.RenderChart(f, title); err != nil {
		f.Close()
		return fmt.Errorf("chart: %w", err)
	}
	return f.Close()
}
