package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// PrintAreaResults outputs the locality usage report, dispatching based on the output format configured.
func PrintAreaResults(results []schema.AreaUsage, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForArea(results, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForArea(results, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printAreaTable(results, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing area table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForArea handles opening the file and calling the JSON writer.
func printJSONResultsForArea(results []schema.AreaUsage, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, results)
	}, "Wrote JSON area results")
}

// printCSVResultsForArea handles opening the file and calling the CSV writer.
func printCSVResultsForArea(results []schema.AreaUsage, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"district", "device_id", "usage", "start_value", "end_value", "start_utc", "end_utc", "reason"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, r := range results {
				row := append([]string{r.SubLocality}, usageCSVRow(r.DeviceID, r.UsageResult, fmtFloat)...)
				if err := csvWriter.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV area results")
}

// printAreaTable prints one row per device in the locality.
func printAreaTable(results []schema.AreaUsage, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	headers := []string{"District", "Device", "Trend", "Usage (kWh)", "Start", "End"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	maxWidth := GetMaxTableKeyWidth(cfg)
	var data [][]string
	for _, r := range results {
		label := contract.GetPlainTrendLabel(r.Usage, r.Insufficient())
		if cfg.UseColor {
			label = contract.GetColorTrendLabel(r.Usage, r.Insufficient())
		}
		usage := fmtFloat(r.Usage)
		startTime, endTime := "", ""
		if r.Insufficient() {
			usage = r.Reason
		} else {
			startTime = r.StartTime.Format(contract.DateTimeFormat)
			endTime = r.EndTime.Format(contract.DateTimeFormat)
		}
		row := []string{
			r.SubLocality,
			contract.TruncateKey(r.DeviceID, maxWidth),
			label,
			usage,
			startTime,
			endTime,
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

	fmt.Printf("Area query completed in %v with %d workers over %d devices.\n", duration, cfg.Workers, len(results))
	return nil
}
