package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
)

// usageCmd computes total usage over a window for one device.
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Compute a device's total usage over a time window.",
	Long: `Compute usage for one device as the newest cumulative reading minus the
oldest inside the window.

Fewer than two readings yields an explained empty result rather than an
error. Negative values pass through unclamped so meter resets stay visible.

Examples:
  # Usage for June at day granularity
  meterflow usage -d hcmc-q1-0 --start 2025-06-01 --end 2025-06-30

  # Hour-level usage with a billing multiplier
  meterflow usage -d hcmc-q1-0 -g 1h --multiplier 1000 --start 2025-06-01 --end 2025-06-02`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultChartBucket
		}
		if err := core.ExecuteUsage(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run usage query", err)
		}
	},
}
