package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/reqtrace/v1/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the traced HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if root, _ := cmd.Flags().GetString("docroot"); root != "" {
			cfg.HTTPD.DocumentRoot = root
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringP("config", "c", "", "path to a YAML configuration file")
	serveCmd.Flags().String("docroot", "", "directory served as static files, overrides httpd.document_root")
	rootCmd.AddCommand(serveCmd)
}

// run starts the application and blocks until it receives a shutdown signal.
func run(ctx context.Context, cfg *config.Config) error {
	app := newApp(cfg)
	if err := app.Err(); err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}
