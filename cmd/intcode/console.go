package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/host"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/spf13/cobra"
)

func newConsoleCmd(a *app) *cobra.Command {
	var (
		ascii   bool
		history string
	)
	cmd := &cobra.Command{
		Use:   "console <file|ref>",
		Short: "Drive a running program interactively",
		Long: "Starts the program and sends each line typed as input: comma separated\n" +
			"values, or the line itself as ASCII with --ascii. Outputs are printed as\n" +
			"they arrive. Type 'exit' or press Ctrl-D to close the input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			cfg := &readline.Config{
				Prompt:      "> ",
				HistoryFile: history,
				Stdin:       io.NopCloser(cmd.InOrStdin()),
				Stdout:      cmd.OutOrStdout(),
				Stderr:      cmd.ErrOrStderr(),
			}
			if cmd.InOrStdin() != os.Stdin {
				cfg.FuncIsTerminal = func() bool { return false }
			}
			rl, err := readline.NewEx(cfg)
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			var closeOnce sync.Once
			closeRL := func() { closeOnce.Do(func() { rl.Close() }) }
			defer closeRL()

			ctx := cmd.Context()
			m := host.NewIO(a.capacity(0))
			m.VM.Identifier = args[0]
			if err := m.Load(program); err != nil {
				return err
			}
			m.Start(ctx)

			done := make(chan struct{})
			go func() {
				defer close(done)
				printConsoleOutputs(ctx, rl.Stdout(), m, ascii)
				closeRL()
			}()

			fmt.Fprintln(rl.Stdout(), "intcode console started, type 'exit' to quit")
			for {
				line, err := rl.Readline()
				if err != nil {
					break
				}
				if strings.TrimSpace(line) == "exit" {
					break
				}
				var values []int64
				if ascii {
					values = host.EncodeASCII(line)
				} else if values, err = parseValues(line); err != nil {
					fmt.Fprintf(rl.Stdout(), "%s%v%s\n", common.ColorRed, err, common.ColorReset)
					continue
				}
				if err := sendAll(ctx, m, values); err != nil {
					break
				}
			}

			m.In.Close()
			<-done
			return m.Wait()
		},
	}
	cmd.Flags().BoolVar(&ascii, "ascii", false, "send lines and print outputs as ASCII text")
	cmd.Flags().StringVar(&history, "history", filepath.Join(os.TempDir(), "intcode_console_history.txt"), "readline history file, empty to disable")
	return cmd
}

func sendAll(ctx context.Context, m *host.Machine, values []int64) error {
	for _, v := range values {
		if err := m.In.Send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// printConsoleOutputs prints outputs until the machine stops, then its
// final status.
func printConsoleOutputs(ctx context.Context, w io.Writer, m *host.Machine, ascii bool) {
	var line strings.Builder
	for {
		v, err := m.Out.Recv(ctx)
		if err != nil {
			break
		}
		if ascii && v >= 0 && v < 128 {
			if v == '\n' {
				fmt.Fprintln(w, line.String())
				line.Reset()
			} else {
				line.WriteByte(byte(v))
			}
			continue
		}
		fmt.Fprintf(w, "%s< %d%s\n", common.ColorGreen, v, common.ColorReset)
	}
	if line.Len() > 0 {
		fmt.Fprintln(w, line.String())
	}

	err := m.Wait()
	switch {
	case err == nil:
		fmt.Fprintf(w, "%shalted after %d steps%s\n", common.ColorGray, m.VM.Steps(), common.ColorReset)
	case errors.Is(err, vmerrors.ErrInvalidInput):
		fmt.Fprintf(w, "%sinput closed at pc %d%s\n", common.ColorGray, m.VM.PC(), common.ColorReset)
	default:
		fmt.Fprintf(w, "%s%v%s\n", common.ColorRed, err, common.ColorReset)
	}
}
