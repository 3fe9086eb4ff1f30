// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteChart prints a merged series using the configured output format.
func (ow *OutWriter) WriteChart(result schema.ChartResult, cfg *contract.Config, duration time.Duration) error {
	return PrintChartResult(result, cfg, duration)
}

// WriteUsage prints a window usage summary using the configured output format.
func (ow *OutWriter) WriteUsage(deviceID string, result schema.UsageResult, cfg *contract.Config, duration time.Duration) error {
	return PrintUsageResult(deviceID, result, cfg, duration)
}

// WriteDaily prints pair deltas using the configured output format.
func (ow *OutWriter) WriteDaily(result schema.DailyResult, cfg *contract.Config, duration time.Duration) error {
	return PrintDailyResult(result, cfg, duration)
}

// WriteArea prints a locality usage report using the configured output format.
func (ow *OutWriter) WriteArea(results []schema.AreaUsage, cfg *contract.Config, duration time.Duration) error {
	return PrintAreaResults(results, cfg, duration)
}

// WriteHousehold prints a raw-reading bucket report using the configured output format.
func (ow *OutWriter) WriteHousehold(report schema.HouseholdReport, cfg *contract.Config, duration time.Duration) error {
	return PrintHouseholdReport(report, cfg, duration)
}

// WriteForecast prints forecast points using the configured output format.
func (ow *OutWriter) WriteForecast(points []schema.ForecastPoint, cfg *contract.Config, duration time.Duration) error {
	return PrintForecastResults(points, cfg, duration)
}

// GetMaxTableKeyWidth calculates the maximum width for bucket keys and device
// ids in table output based on terminal width.
func GetMaxTableKeyWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the numeric columns with borders and padding.
	available := termWidth - 50
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
