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
	"github.com/meterflow/meterflow/internal/parquet"
	"github.com/meterflow/meterflow/schema"
)

// PrintChartResult outputs the merged series, dispatching based on the output format configured.
func PrintChartResult(result schema.ChartResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForChart(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForChart(result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForChart(result, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printChartTable(result, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing chart table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForChart handles opening the file and calling the JSON writer.
func printJSONResultsForChart(result schema.ChartResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON chart results")
}

// printCSVResultsForChart handles opening the file and calling the CSV writer.
func printCSVResultsForChart(result schema.ChartResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForChart(csvWriter, result, fmtFloat)
	}, "Wrote CSV chart results")
}

// printParquetResultsForChart exports the series as Parquet rows. Parquet is
// a binary format, so a concrete output file is required.
func printParquetResultsForChart(result schema.ChartResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires an output file")
	}
	rows := parquet.ChartSeriesRows(result)
	if err := parquet.WriteChartSeries(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet chart results to %s\n", cfg.OutputFile)
	return nil
}

// printChartTable prints the series in a four-column table.
func printChartTable(result schema.ChartResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	headers := []string{"Timestamp", "Usage (kWh)", "Voltage", "Current"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	var data [][]string
	for _, p := range result.Data {
		row := []string{
			p.XUTCTimestamp.Format(contract.DateTimeFormat),
			fmtFloat(p.ElectricityUsage),
			fmtOptFloat(p.Voltage, fmtFloat),
			fmtOptFloat(p.Current, fmtFloat),
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

	fmt.Printf("Chart query for %s completed in %v with %d workers.\n", result.DeviceID, duration, cfg.Workers)
	return nil
}

// writeCSVResultsForChart writes the schema.ChartResult data to a CSV writer.
func writeCSVResultsForChart(w *csv.Writer, result schema.ChartResult, fmtFloat func(float64) string) error {
	// 1. Write Header Row
	header := []string{
		"device_id",
		"x",
		"x_utc_timestamp",
		"electricity_usage",
		"voltage",
		"current",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// 2. Write Data Rows
	for _, p := range result.Data {
		row := []string{
			result.DeviceID,
			strconv.FormatInt(p.X, 10),
			p.XUTCTimestamp.Format(contract.DateTimeFormat),
			fmtFloat(p.ElectricityUsage),
			fmtOptFloat(p.Voltage, fmtFloat),
			fmtOptFloat(p.Current, fmtFloat),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
