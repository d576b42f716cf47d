package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reqtraced",
	Short: "HTTP server that traces every request it serves.",
	Long: `reqtraced serves static files and internal routes and records one span per ` +
		`request, sub-requests included. Spans continue traces received in the ` +
		`request headers and are exported over OTLP/HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
