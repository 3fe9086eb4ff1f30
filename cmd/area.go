package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
)

// areaCmd computes usage for every device in a locality.
var areaCmd = &cobra.Command{
	Use:   "area <locality>",
	Short: "Compute usage for all devices of a locality.",
	Long: `Discover every device folder whose name contains the locality token and
compute each device's usage over the window, grouped by sub-locality.

Devices fan out over a worker pool; a device that cannot produce a delta
still appears in the report with the reason attached.

Examples:
  # All q1 devices for June
  meterflow area q1 --start 2025-06-01 --end 2025-06-30

  # Machine-readable report
  meterflow area q1 --start 2025-06-01 --end 2025-06-30 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		cfg.Locality = args[0]
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultAreaBucket
		}
		if err := core.ExecuteArea(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run area query", err)
		}
	},
}
