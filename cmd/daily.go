package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
)

// dailyCmd computes per-pair usage deltas for one device.
var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Compute usage between every pair of consecutive readings.",
	Long: `Compute the usage delta between each adjacent pair of a device's
timestamp-sorted readings, one row per pair.

The multiplier scales each delta while the raw reading values are reported
untouched, so billing-unit conversions stay auditable.

Examples:
  # Day-over-day usage for June
  meterflow daily -d hcmc-q1-0 --start 2025-06-01 --end 2025-06-30

  # Convert kWh deltas to Wh
  meterflow daily -d hcmc-q1-0 --multiplier 1000 --start 2025-06-01 --end 2025-06-30 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultChartBucket
		}
		if err := core.ExecuteDaily(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run daily query", err)
		}
	},
}
