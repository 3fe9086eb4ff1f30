package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
)

// chartCmd produces a grid-aligned series for one device.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a device's readings as a regular time series.",
	Long: `Fetch one device's readings over a time window and align them onto a
regular grid at the requested granularity.

Instants without a reading carry the most recent earlier value forward, so
the series never has holes; instants before the first reading default to
zero. Duplicate readings inside one bucket resolve by the --dedup policy.

Examples:
  # Day-level series for June
  meterflow chart -d hcmc-q1-0 --start 2025-06-01 --end 2025-06-30

  # Hourly series, newest point first
  meterflow chart -d hcmc-q1-0 -g 1h --sort desc --start 2025-06-01 --end 2025-06-02

  # Export to Parquet for the warehouse
  meterflow chart -d hcmc-q1-0 --start 2025-06-01 --end 2025-06-30 --output parquet --output-file series.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultChartBucket
		}
		if err := core.ExecuteChart(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run chart query", err)
		}
	},
}
