package main

import (
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/spf13/cobra"
)

func newDisasmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file|ref>",
		Short: "Print a linear disassembly listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), intcode.DisassembleText(program))
			return nil
		},
	}
}
