package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/internal/httpapi"
	"github.com/meterflow/meterflow/internal/storeclient"
)

// serveCmd runs the HTTP API for dashboard clients.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the meter query API over HTTP.",
	Long: `Run an HTTP server exposing the chart, usage, daily, area, household and
forecast queries under /api/meters.

Query parameters override the configured defaults per request. The server
drains in-flight requests on SIGINT/SIGTERM before exiting.

Examples:
  # Serve on the default port
  meterflow serve --endpoint localhost:9000 --access-key minio --secret-key minio123

  # Custom listen address
  meterflow serve --listen :8080`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultChartBucket
		}
		store, err := storeclient.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
		if err != nil {
			contract.LogFatal("Cannot connect to object store", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := httpapi.NewServer(cfg, store)
		if err := server.Run(ctx); err != nil {
			contract.LogFatal("HTTP server failed", err)
		}
	},
}
