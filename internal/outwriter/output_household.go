package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// PrintHouseholdReport outputs the bucket report, dispatching based on the output format configured.
func PrintHouseholdReport(report schema.HouseholdReport, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForHousehold(report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForHousehold(report, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printHouseholdTable(report, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing household table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForHousehold handles opening the file and calling the JSON writer.
func printJSONResultsForHousehold(report schema.HouseholdReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, report)
	}, "Wrote JSON household results")
}

// printCSVResultsForHousehold handles opening the file and calling the CSV writer.
// Latest-only buckets flatten to one row each; statistical buckets flatten to
// one row per sample.
func printCSVResultsForHousehold(report schema.HouseholdReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"bucket", "device_id", "formatted_timestamp", "electricity_usage_kwh", "voltage", "current", "file"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, bucket := range report.Buckets {
				samples := bucket.Samples
				if bucket.Latest != nil {
					samples = []schema.HouseholdSample{*bucket.Latest}
				}
				for _, s := range samples {
					row := []string{
						bucket.Key,
						s.DeviceID,
						s.FormattedTimestamp,
						fmtFloat(s.ElectricityUsageKwh),
						fmtFloat(s.Voltage),
						fmtFloat(s.Current),
						bucket.SourceKey,
					}
					if err := csvWriter.Write(row); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}, "Wrote CSV household results")
}

// printHouseholdTable prints one row per bucket.
func printHouseholdTable(report schema.HouseholdReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	headers := []string{"Bucket", "Count", "Usage (kWh)", "Voltage", "Current"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	maxWidth := GetMaxTableKeyWidth(cfg)
	var data [][]string
	for _, bucket := range report.Buckets {
		row := []string{
			contract.TruncateKey(bucket.Key, maxWidth),
			strconv.Itoa(bucket.Count),
		}
		switch {
		case bucket.Latest != nil:
			row = append(row,
				fmtFloat(bucket.Latest.ElectricityUsageKwh),
				fmtFloat(bucket.Latest.Voltage),
				fmtFloat(bucket.Latest.Current))
		case bucket.Stats != nil:
			row = append(row,
				fmtStatsCell(bucket.Stats.ElectricityUsageKwh, fmtFloat),
				fmtStatsCell(bucket.Stats.Voltage, fmtFloat),
				fmtStatsCell(bucket.Stats.Current, fmtFloat))
		default:
			row = append(row, "", "", "")
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Household report for %s (%s): %d of %d readings in %d buckets, %s.\n",
		report.HouseholdID, report.Date,
		report.FilteredReadings, report.TotalReadings, report.TimePoints, report.SortOrder)
	fmt.Printf("Household query completed in %v with %d workers.\n", duration, cfg.Workers)
	return nil
}

// fmtStatsCell renders min/avg/max in one cell.
func fmtStatsCell(s schema.FieldStats, fmtFloat func(float64) string) string {
	return fmt.Sprintf("%s/%s/%s", fmtFloat(s.Min), fmtFloat(s.Avg), fmtFloat(s.Max))
}
