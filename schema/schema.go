// Package schema has the value types shared between the query engine,
// the renderers and the HTTP layer.
package schema

import "time"

// Metrics holds the measured values of a single reading. Voltage and Current
// are present only for per-household device records; aggregate/area devices
// report a cumulative usage value alone.
type Metrics struct {
	ElectricityUsageKwh float64  `json:"electricity_usage"`
	Voltage             *float64 `json:"voltage,omitempty"`
	Current             *float64 `json:"current,omitempty"`
}

// CanonicalRecord is one normalized reading. Timestamp is always UTC before
// any comparison or bucketing happens.
type CanonicalRecord struct {
	Timestamp time.Time
	Metrics   Metrics
}

// ChartPoint is one entry of the regular chart series. The metric values come
// from the most recent record at or before X, or default to zero when no
// record precedes the instant.
type ChartPoint struct {
	X                int64     `json:"x"` // Unix milliseconds
	XUTCTimestamp    time.Time `json:"x_utc_timestamp"`
	ElectricityUsage float64   `json:"electricity_usage"`
	Voltage          *float64  `json:"voltage,omitempty"`
	Current          *float64  `json:"current,omitempty"`
}

// ChartResult is the full response for a chart query.
type ChartResult struct {
	DeviceID string       `json:"device_id"`
	Data     []ChartPoint `json:"data"`
}

// UsageResult is the window delta over a record set: last reading minus first
// reading. A non-empty Reason marks an insufficient-data result, which is a
// normal outcome rather than an error.
type UsageResult struct {
	Usage      float64   `json:"usage"`
	StartValue float64   `json:"start_value,omitempty"`
	EndValue   float64   `json:"end_value,omitempty"`
	StartTime  time.Time `json:"start_utc,omitzero"`
	EndTime    time.Time `json:"end_utc,omitzero"`
	Reason     string    `json:"reason,omitempty"`
}

// Insufficient reports whether the window held too few readings to compute a
// meaningful delta.
func (r UsageResult) Insufficient() bool { return r.Reason != "" }

// DailyDelta is the usage between one adjacent pair of readings in a
// timestamp-sorted daily series. The multiplier scales the delta only, never
// the raw endpoint values.
type DailyDelta struct {
	Usage               float64   `json:"usage"`
	UsageBeforeMultiply float64   `json:"usage_before_multiply"`
	Multiplier          float64   `json:"multiply_by"`
	StartValue          float64   `json:"start_value"`
	EndValue            float64   `json:"end_value"`
	StartTime           time.Time `json:"start_utc"`
	EndTime             time.Time `json:"end_utc"`
}

// DailyResult is the per-adjacent-pair delta series for one device.
type DailyResult struct {
	DeviceID string       `json:"device_id"`
	Deltas   []DailyDelta `json:"data,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

// Insufficient reports whether the series held fewer than two readings.
func (r DailyResult) Insufficient() bool { return r.Reason != "" }

// AreaUsage is the window delta of one device under a locality, keyed by the
// sub-locality segment of the device identifier.
type AreaUsage struct {
	SubLocality string `json:"district"`
	DeviceID    string `json:"device_id"`
	UsageResult
}

// ForecastPoint is one row of the daily-usage prediction series.
type ForecastPoint struct {
	DatePart    string  `json:"date_part"`
	DailyUsage  float64 `json:"daily_usage"`
	DatePartUTC int64   `json:"date_part_utc"` // Unix milliseconds
}

// HouseholdSample is one raw CSV reading of a household meter, with the
// calendar components already split out for grouping.
type HouseholdSample struct {
	DeviceID            string  `json:"device_id"`
	FormattedTimestamp  string  `json:"formatted_timestamp"`
	ElectricityUsageKwh float64 `json:"electricity_usage_kwh"`
	Voltage             float64 `json:"voltage"`
	Current             float64 `json:"current"`

	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Date  string `json:"date"`
	Hour  string `json:"hour"`

	// Extra carries non-numeric CSV columns beyond the known header names.
	Extra map[string]string `json:"extra,omitempty"`
}

// FieldStats holds min/max/avg over one numeric field of a bucket.
type FieldStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// BucketStats holds the per-field statistics of one calendar bucket.
type BucketStats struct {
	ElectricityUsageKwh FieldStats `json:"electricity_usage_kwh"`
	Voltage             FieldStats `json:"voltage"`
	Current             FieldStats `json:"current"`
}

// HouseholdBucket is one calendar bucket of the household report. In
// latest-only mode it carries the single newest sample plus the provenance of
// the object it came from; otherwise it carries statistics and all samples.
type HouseholdBucket struct {
	Key       string            `json:"key"`
	Count     int               `json:"count"`
	Latest    *HouseholdSample  `json:"sample,omitempty"`
	SourceKey string            `json:"file,omitempty"`
	Stats     *BucketStats      `json:"stats,omitempty"`
	Samples   []HouseholdSample `json:"samples,omitempty"`
}

// HouseholdReport is the grouped report over raw household readings. Buckets
// are ordered newest key first.
type HouseholdReport struct {
	HouseholdID       string            `json:"household_id"`
	DeviceID          string            `json:"device_id"`
	Date              string            `json:"date"` // target date or "all"
	BucketGranularity BucketGranularity `json:"time_format"`
	LatestOnly        bool              `json:"latest_only"`
	TotalReadings     int               `json:"total_readings"`
	FilteredReadings  int               `json:"filtered_readings"`
	TimePoints        int               `json:"time_points"`
	SortOrder         string            `json:"sort_order"`
	Buckets           []HouseholdBucket `json:"data"`
}
