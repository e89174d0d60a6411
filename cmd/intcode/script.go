package main

import (
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/host"
	"github.com/spf13/cobra"
)

func newScriptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "script <file|ref> <driver.js>",
		Short: "Drive a program with a JavaScript host",
		Long: "Runs the program and evaluates the driver script against it. The script\n" +
			"can call send, sendText, recv, exchange, text, close and print.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			res, err := host.RunScript(cmd.Context(), program, string(src), a.capacity(0), w)
			if err != nil {
				return err
			}
			if res.Value != nil {
				fmt.Fprintf(w, "=> %v\n", res.Value)
			}
			for _, v := range res.Remaining {
				fmt.Fprintln(w, v)
			}
			return res.RunErr
		},
	}
}
