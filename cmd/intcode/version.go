package main

import (
	"fmt"

	"github.com/colorfulnotion/intcode/common"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and build commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "intcode %s (commit %s)\n", Version, common.GetCommitHash())
		},
	}
}
