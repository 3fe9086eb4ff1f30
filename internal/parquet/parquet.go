// Package parquet provides data structures and functions for exporting merged
// telemetry series to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/meterflow/meterflow/schema"
)

// ChartSeriesRow is one grid instant of a merged series in columnar form.
// This struct maps to the meter_chart_series warehouse table.
type ChartSeriesRow struct {
	// DeviceID identifies the meter the series was computed for
	DeviceID string `parquet:"device_id,snappy"`

	// Instant is the grid position (stored as TIMESTAMP with nanosecond precision)
	Instant time.Time `parquet:"instant,snappy"`

	// InstantMs is the grid position in Unix milliseconds, matching the JSON x field
	InstantMs int64 `parquet:"instant_ms,snappy"`

	// ElectricityUsageKwh is the carried-forward cumulative usage at the instant
	ElectricityUsageKwh float64 `parquet:"electricity_usage_kwh,snappy"`

	// Voltage is the carried-forward voltage (nullable, household devices only)
	Voltage *float64 `parquet:"voltage,optional,snappy"`

	// Current is the carried-forward current (nullable, household devices only)
	Current *float64 `parquet:"current,optional,snappy"`
}

// ChartSeriesRows flattens a chart result into Parquet rows.
func ChartSeriesRows(result schema.ChartResult) []ChartSeriesRow {
	rows := make([]ChartSeriesRow, 0, len(result.Data))
	for _, p := range result.Data {
		rows = append(rows, ChartSeriesRow{
			DeviceID:            result.DeviceID,
			Instant:             p.XUTCTimestamp,
			InstantMs:           p.X,
			ElectricityUsageKwh: p.ElectricityUsage,
			Voltage:             p.Voltage,
			Current:             p.Current,
		})
	}
	return rows
}

// WriteChartSeries writes a slice of ChartSeriesRow structs to a Parquet file.
func WriteChartSeries(rows []ChartSeriesRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the ChartSeriesRow struct tags
	writer := parquet.NewGenericWriter[ChartSeriesRow](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
