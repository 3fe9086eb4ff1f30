// Package cmd defines the command-line interface for meterflow.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(areaCmd)
	rootCmd.AddCommand(householdCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("endpoint", "", "Object store endpoint (host:port)")
	rootCmd.PersistentFlags().String("access-key", "", "Object store access key")
	rootCmd.PersistentFlags().String("secret-key", "", "Object store secret key")
	rootCmd.PersistentFlags().Bool("ssl", false, "Use TLS when talking to the object store")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Bucket to query (defaults to the mode's conventional bucket)")
	rootCmd.PersistentFlags().StringP("device", "d", "", "Device identifier, e.g. hcmc-q1-0")
	rootCmd.PersistentFlags().String("start", "", "Window start in RFC3339, compact or calendar-day form")
	rootCmd.PersistentFlags().String("end", "", "Window end in RFC3339, compact or calendar-day form")
	rootCmd.PersistentFlags().StringP("granularity", "g", string(schema.GranularityDay), "Bucket size: 1m or 1h or 1d")
	rootCmd.PersistentFlags().String("sort", string(schema.AscOrder), "Series order: asc or desc")
	rootCmd.PersistentFlags().String("hour-layout", string(schema.HourObjectLayout), "Hour key layout: hour-object or day-object")
	rootCmd.PersistentFlags().String("dedup", string(schema.FirstWins), "Bucket collision policy: first or latest")
	rootCmd.PersistentFlags().Float64("multiplier", contract.DefaultMultiplier, "Scale factor applied to usage deltas")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("timeout", "30s", "Per-object fetch timeout")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of householdCmd to Viper
	householdCmd.Flags().String("date", "", "Keep only readings of this calendar day (YYYY-MM-DD)")
	householdCmd.Flags().String("group-by", string(schema.BucketHour), "Bucket key: year, month, date, hour or timestamp")
	householdCmd.Flags().Bool("latest-only", false, "Keep only the newest reading per bucket")
	if err := viper.BindPFlags(householdCmd.Flags()); err != nil {
		contract.LogFatal("Error binding household flags", err)
	}

	// Bind all flags of forecastCmd to Viper
	forecastCmd.Flags().String("forecast-key", contract.DefaultForecastObject, "Object key of the published forecast CSV")
	if err := viper.BindPFlags(forecastCmd.Flags()); err != nil {
		contract.LogFatal("Error binding forecast flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultHTTPAddr, "Address for the HTTP API to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}
}
