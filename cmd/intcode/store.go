package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/spf13/cobra"
)

func newStoreCmd(a *app) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the program library",
	}

	addCmd := &cobra.Command{
		Use:   "add <name> <file>",
		Short: "Add a program file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			lib, err := a.openStore()
			if err != nil {
				return err
			}
			defer lib.Close()
			h, err := lib.Put(args[0], string(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], h.Hex())
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openStore()
			if err != nil {
				return err
			}
			defer lib.Close()
			entries, err := lib.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tHASH\tWORDS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.Hash.String_short(), e.Words)
			}
			return tw.Flush()
		},
	}

	var disasm bool
	showCmd := &cobra.Command{
		Use:   "show <name|hash>",
		Short: "Print a stored program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openStore()
			if err != nil {
				return err
			}
			defer lib.Close()
			if !disasm {
				text, err := lib.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			program, err := lib.Program(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), intcode.DisassembleText(program))
			return nil
		},
	}
	showCmd.Flags().BoolVar(&disasm, "disasm", false, "print a disassembly listing instead of the text")

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a program name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openStore()
			if err != nil {
				return err
			}
			defer lib.Close()
			return lib.Delete(args[0])
		},
	}

	storeCmd.AddCommand(addCmd, listCmd, showCmd, rmCmd)
	return storeCmd
}
