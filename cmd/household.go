package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
)

// householdCmd reports raw household readings in calendar buckets.
var householdCmd = &cobra.Command{
	Use:   "household <household-id>",
	Short: "Group a household's raw readings into calendar buckets.",
	Long: `Read every raw CSV file under a household's ingestion prefix and group the
readings into calendar buckets.

Spark job markers (_SUCCESS, _temporary) and empty files are skipped. Each
bucket carries min/avg/max statistics, or just its newest reading with
--latest-only. Buckets print newest first.

Examples:
  # Hourly buckets for one day
  meterflow household hh-2241 --date 2025-04-07

  # One reading per day, with provenance
  meterflow household hh-2241 --group-by date --latest-only --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		cfg.HouseholdID = args[0]
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultChartBucket
		}
		if err := core.ExecuteHousehold(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run household query", err)
		}
	},
}
