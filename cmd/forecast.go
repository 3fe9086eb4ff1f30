package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
)

// forecastCmd prints published daily-usage predictions.
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show published daily-usage predictions for a time window.",
	Long: `Read the forecast CSV published by the prediction pipeline and print the
daily predictions that fall inside the window.

The multiplier scales predicted values the same way it scales usage deltas.

Examples:
  # Predictions for the second half of the year
  meterflow forecast --start 2025-06-01 --end 2025-12-31

  # A specific published forecast object
  meterflow forecast --forecast-key electricity_forecast_q10_jun_dec_2025.csv --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Bucket == "" {
			cfg.Bucket = contract.DefaultForecastBucket
		}
		if err := core.ExecuteForecast(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run forecast query", err)
		}
	},
}
