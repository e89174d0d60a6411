package main

import (
	"fmt"
	"io"

	"github.com/colorfulnotion/intcode/host"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		input string
		patch string
		dump  bool
		trace bool
		ascii bool
	)
	cmd := &cobra.Command{
		Use:   "run <file|ref>",
		Short: "Run a program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			var inputs []int64
			if ascii && input != "" {
				inputs = host.EncodeASCII(input)
			} else if inputs, err = parseValues(input); err != nil {
				return fmt.Errorf("--input: %w", err)
			}
			patches, err := parsePatches(patch)
			if err != nil {
				return err
			}

			m := host.NewIO(a.capacity(len(inputs)))
			m.VM.Identifier = args[0]
			if trace || a.cfg.VM.Trace {
				m.VM.Trace = true
				log.EnableModule(log.VMMonitoring)
				if err := log.InitLoggerTo(cmd.ErrOrStderr(), "trace", a.cfg.Log.JSON); err != nil {
					return err
				}
			}
			if err := m.Load(program); err != nil {
				return err
			}
			for _, p := range patches {
				if err := m.VM.Write(p[0], p[1]); err != nil {
					return fmt.Errorf("--patch: %w", err)
				}
			}
			if err := m.Feed(cmd.Context(), inputs...); err != nil {
				return err
			}

			out, runErr := m.Collect(cmd.Context())
			printOutputs(cmd.OutOrStdout(), out, ascii)
			if dump {
				fmt.Fprintln(cmd.OutOrStdout(), m.VM.Dump())
			}
			log.Debug(log.CLIMonitoring, "run finished", "program", args[0], "steps", m.VM.Steps(), "state", m.VM.State())
			return runErr
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "input values, comma separated (text with --ascii)")
	cmd.Flags().StringVar(&patch, "patch", "", "memory patches applied before running, e.g. 1=12,2=2")
	cmd.Flags().BoolVar(&dump, "dump", false, "print memory after the run")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every executed instruction")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "treat input and output as ASCII text")
	return cmd
}

// printOutputs writes one value per line, or text followed by any values
// outside the ASCII range when ascii is set.
func printOutputs(w io.Writer, out []int64, ascii bool) {
	if !ascii {
		for _, v := range out {
			fmt.Fprintln(w, v)
		}
		return
	}
	text, rest := host.DecodeASCII(out)
	fmt.Fprint(w, text)
	for _, v := range rest {
		fmt.Fprintln(w, v)
	}
}
