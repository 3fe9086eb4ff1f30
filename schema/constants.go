package schema

import "time"

// Custom string types for type safety.
type (
	// Granularity represents the time-bucket size for chart and delta queries.
	Granularity string

	// SortOrder represents the ordering of chart points in the final series.
	SortOrder string

	// BucketGranularity represents the calendar grouping for household reports.
	BucketGranularity string

	// HourLayout represents how hour-level readings are organized in the store.
	HourLayout string

	// OutputMode represents the format of the output.
	OutputMode string

	// DedupPolicy represents which record wins when two records land in the
	// same time bucket.
	DedupPolicy string
)

// All granularities supported.
const (
	GranularityMinute Granularity = "1m"
	GranularityHour   Granularity = "1h"
	GranularityDay    Granularity = "1d" // default
)

// All sort orders supported.
const (
	AscOrder  SortOrder = "asc" // default
	DescOrder SortOrder = "desc"
)

// All bucket granularities supported by household reports.
const (
	BucketYear      BucketGranularity = "year"
	BucketMonth     BucketGranularity = "month"
	BucketDate      BucketGranularity = "date"
	BucketHour      BucketGranularity = "hour" // default
	BucketTimestamp BucketGranularity = "timestamp"
)

// All hour layouts supported. Production stores were observed with both
// organizations, so the planner keeps the choice behind a single knob.
const (
	HourObjectLayout HourLayout = "hour-object" // one object per hour (default)
	DayObjectLayout  HourLayout = "day-object"  // one object per day holding all hours
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All dedup policies supported.
const (
	FirstWins  DedupPolicy = "first"  // delta and chart pipelines
	LatestWins DedupPolicy = "latest" // household pipeline
)

// ValidGranularities lists all valid granularities.
var ValidGranularities = map[Granularity]struct{}{
	GranularityMinute: {},
	GranularityHour:   {},
	GranularityDay:    {},
}

// ValidSortOrders lists all valid sort orders.
var ValidSortOrders = map[SortOrder]struct{}{
	AscOrder:  {},
	DescOrder: {},
}

// ValidBucketGranularities lists all valid bucket granularities.
var ValidBucketGranularities = map[BucketGranularity]struct{}{
	BucketYear:      {},
	BucketMonth:     {},
	BucketDate:      {},
	BucketHour:      {},
	BucketTimestamp: {},
}

// ValidHourLayouts lists all valid hour layouts.
var ValidHourLayouts = map[HourLayout]struct{}{
	HourObjectLayout: {},
	DayObjectLayout:  {},
}

// ValidDedupPolicies lists all valid dedup policies.
var ValidDedupPolicies = map[DedupPolicy]struct{}{
	FirstWins:  {},
	LatestWins: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// Step returns the grid spacing for the granularity.
func (g Granularity) Step() time.Duration {
	switch g {
	case GranularityMinute:
		return time.Minute
	case GranularityHour:
		return time.Hour
	case GranularityDay:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Truncate aligns t downward to the granularity boundary on the UTC calendar.
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case GranularityMinute:
		return t.Truncate(time.Minute)
	case GranularityHour:
		return t.Truncate(time.Hour)
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(time.Hour)
	}
}
