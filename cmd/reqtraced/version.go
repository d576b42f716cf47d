package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version reported as service.version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), tracer.DerivedVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
