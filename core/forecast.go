package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// ForecastUsage reads a published forecast CSV and returns the daily
// predictions inside [start, end], scaled by the configured multiplier. Rows
// outside the range, header rows and malformed rows are dropped.
func ForecastUsage(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) ([]schema.ForecastPoint, error) {
	if err := probeBucket(ctx, store, cfg.Bucket); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	data, err := store.GetObject(callCtx, cfg.Bucket, cfg.ForecastKey)
	if err != nil {
		return nil, fmt.Errorf("read forecast %s: %w", cfg.ForecastKey, err)
	}

	points := parseForecastCSV(data, cfg.Multiplier)
	return filterForecastRange(points, cfg.StartTime, cfg.EndTime), nil
}

// parseForecastCSV parses date_part,daily_usage rows. The header row and any
// row that fails to parse are skipped.
func parseForecastCSV(data []byte, multiplier float64) []schema.ForecastPoint {
	var points []schema.ForecastPoint
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) < 2 {
			continue
		}
		datePart := strings.TrimSpace(fields[0])
		day, err := time.Parse(contract.DateFormat, datePart)
		if err != nil {
			continue // header or junk row
		}
		usage, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}
		points = append(points, schema.ForecastPoint{
			DatePart:    datePart,
			DailyUsage:  usage * multiplier,
			DatePartUTC: day.UnixMilli(),
		})
	}
	return points
}

// filterForecastRange keeps points whose calendar day falls inside the
// inclusive [start, end] window. Zero bounds leave that side open.
func filterForecastRange(points []schema.ForecastPoint, start, end time.Time) []schema.ForecastPoint {
	if start.IsZero() && end.IsZero() {
		return points
	}
	var kept []schema.ForecastPoint
	for _, p := range points {
		day, err := time.Parse(contract.DateFormat, p.DatePart)
		if err != nil {
			continue
		}
		if !start.IsZero() && day.Before(dayStart(start)) {
			continue
		}
		if !end.IsZero() && day.After(dayStart(end)) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
