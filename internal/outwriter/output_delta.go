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

// PrintUsageResult outputs the window usage summary, dispatching based on the output format configured.
func PrintUsageResult(deviceID string, result schema.UsageResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForUsage(deviceID, result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForUsage(deviceID, result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable summary
		if err := printUsageSummary(deviceID, result, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing usage output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForUsage handles opening the file and calling the JSON writer.
func printJSONResultsForUsage(deviceID string, result schema.UsageResult, cfg *contract.Config) error {
	payload := struct {
		DeviceID string `json:"device_id"`
		schema.UsageResult
	}{DeviceID: deviceID, UsageResult: result}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, payload)
	}, "Wrote JSON usage results")
}

// printCSVResultsForUsage handles opening the file and calling the CSV writer.
func printCSVResultsForUsage(deviceID string, result schema.UsageResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"device_id", "usage", "start_value", "end_value", "start_utc", "end_utc", "reason"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return csvWriter.Write(usageCSVRow(deviceID, result, fmtFloat))
		})
	}, "Wrote CSV usage results")
}

// printUsageSummary prints the window delta as a labeled one-line summary.
func printUsageSummary(deviceID string, result schema.UsageResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	label := contract.GetPlainTrendLabel(result.Usage, result.Insufficient())
	if cfg.UseColor {
		label = contract.GetColorTrendLabel(result.Usage, result.Insufficient())
	}

	if result.Insufficient() {
		fmt.Printf("%s %s: %s\n", label, deviceID, result.Reason)
	} else {
		fmt.Printf("%s %s: %s kWh (%s -> %s, %s to %s)\n",
			label, deviceID,
			fmtFloat(result.Usage),
			fmtFloat(result.StartValue), fmtFloat(result.EndValue),
			result.StartTime.Format(contract.DateTimeFormat),
			result.EndTime.Format(contract.DateTimeFormat))
	}
	fmt.Printf("Usage query completed in %v with %d workers.\n", duration, cfg.Workers)
	return nil
}

// PrintDailyResult outputs the pair-delta series, dispatching based on the output format configured.
func PrintDailyResult(result schema.DailyResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForDaily(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForDaily(result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printDailyTable(result, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing daily table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForDaily handles opening the file and calling the JSON writer.
func printJSONResultsForDaily(result schema.DailyResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON daily results")
}

// printCSVResultsForDaily handles opening the file and calling the CSV writer.
func printCSVResultsForDaily(result schema.DailyResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"device_id", "start_utc", "end_utc", "usage", "usage_before_multiply", "multiply_by", "start_value", "end_value"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, d := range result.Deltas {
				row := []string{
					result.DeviceID,
					d.StartTime.Format(contract.DateTimeFormat),
					d.EndTime.Format(contract.DateTimeFormat),
					fmtFloat(d.Usage),
					fmtFloat(d.UsageBeforeMultiply),
					fmtFloat(d.Multiplier),
					fmtFloat(d.StartValue),
					fmtFloat(d.EndValue),
				}
				if err := csvWriter.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV daily results")
}

// printDailyTable prints one row per adjacent reading pair.
func printDailyTable(result schema.DailyResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if result.Insufficient() {
		fmt.Printf("%s: %s\n", result.DeviceID, result.Reason)
		return nil
	}

	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	headers := []string{"Start", "End", "Usage (kWh)", "Raw", "Start Value", "End Value"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	var data [][]string
	for _, d := range result.Deltas {
		row := []string{
			d.StartTime.Format(contract.DateTimeFormat),
			d.EndTime.Format(contract.DateTimeFormat),
			fmtFloat(d.Usage),
			fmtFloat(d.UsageBeforeMultiply),
			fmtFloat(d.StartValue),
			fmtFloat(d.EndValue),
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

	fmt.Printf("Daily query for %s completed in %v with %d workers.\n", result.DeviceID, duration, cfg.Workers)
	return nil
}

// usageCSVRow flattens one usage result into CSV fields.
func usageCSVRow(deviceID string, result schema.UsageResult, fmtFloat func(float64) string) []string {
	startTime, endTime := "", ""
	if !result.StartTime.IsZero() {
		startTime = result.StartTime.Format(contract.DateTimeFormat)
	}
	if !result.EndTime.IsZero() {
		endTime = result.EndTime.Format(contract.DateTimeFormat)
	}
	return []string{
		deviceID,
		fmtFloat(result.Usage),
		fmtFloat(result.StartValue),
		fmtFloat(result.EndValue),
		startTime,
		endTime,
		result.Reason,
	}
}
