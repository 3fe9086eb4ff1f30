package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/meterflow/meterflow/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 1
	DefaultMultiplier   = 1.0
	DefaultFetchTimeout = 30 * time.Second
	DefaultHTTPAddr     = ":3003"

	DefaultChartBucket     = "household"
	DefaultAreaBucket      = "ward"
	DefaultForecastBucket  = "predict"
	DefaultForecastObject  = "electricity_forecast_q10_jun_dec_2025.csv"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateFormat is the calendar-day representation used in storage keys.
const DateFormat = "2006-01-02"

// CompactTimeFormat is the hyphen-separated timestamp used by upstream
// ingestion in object keys and formatted_timestamp fields.
const CompactTimeFormat = "2006-01-02-15-04-05"

// Config holds the validated runtime configuration for one query. It carries
// both store connection settings and the already-parsed query parameters, so
// the engine never touches raw strings.
type Config struct {
	// Store connection
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Query parameters
	Bucket            string
	DeviceID          string
	StartTime         time.Time
	EndTime           time.Time
	Granularity       schema.Granularity
	SortOrder         schema.SortOrder
	Multiplier        float64
	HourLayout        schema.HourLayout
	DedupPolicy       schema.DedupPolicy
	Locality          string
	HouseholdID       string
	TargetDate        string // "YYYY-MM-DD" or empty for all dates
	BucketGranularity schema.BucketGranularity
	LatestOnly        bool
	ForecastKey       string

	// Execution
	Workers      int
	FetchTimeout time.Duration

	// Output
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int
	UseColor   bool

	// HTTP server
	ListenAddr string
}

// ConfigRawInput holds the raw string inputs from flags, env and config file
// that require parsing or validation. These fields are bound to Viper keys in
// the cmd package.
type ConfigRawInput struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	UseSSL    bool   `mapstructure:"ssl"`

	Bucket            string  `mapstructure:"bucket"`
	DeviceID          string  `mapstructure:"device"`
	StartTimeStr      string  `mapstructure:"start"`
	EndTimeStr        string  `mapstructure:"end"`
	GranularityStr    string  `mapstructure:"granularity"`
	SortOrderStr      string  `mapstructure:"sort"`
	Multiplier        float64 `mapstructure:"multiplier"`
	HourLayoutStr     string  `mapstructure:"hour-layout"`
	DedupPolicyStr    string  `mapstructure:"dedup"`
	Locality          string  `mapstructure:"locality"`
	TargetDate        string  `mapstructure:"date"`
	BucketGranStr     string  `mapstructure:"group-by"`
	LatestOnly        bool    `mapstructure:"latest-only"`
	ForecastKey       string  `mapstructure:"forecast-key"`
	Workers           int     `mapstructure:"workers"`
	FetchTimeoutStr   string  `mapstructure:"timeout"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Precision         int     `mapstructure:"precision"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	ListenAddr        string  `mapstructure:"listen"`
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseQueryTime parses a user-supplied instant. RFC3339 is preferred; the
// compact hyphen form and the bare calendar day used by upstream ingestion
// are accepted as fallbacks. All results are UTC.
func ParseQueryTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(CompactTimeFormat, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339, %s or %s", s, CompactTimeFormat, DateFormat)
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Store connection ---
	cfg.Endpoint = input.Endpoint
	cfg.AccessKey = input.AccessKey
	cfg.SecretKey = input.SecretKey
	cfg.UseSSL = input.UseSSL
	cfg.Bucket = input.Bucket

	// --- 2. Workers and timeout ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.FetchTimeout = DefaultFetchTimeout
	if input.FetchTimeoutStr != "" {
		d, err := time.ParseDuration(input.FetchTimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", input.FetchTimeoutStr, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", d)
		}
		cfg.FetchTimeout = d
	}

	// --- 3. Granularity, sort order, hour layout ---
	cfg.Granularity = schema.Granularity(strings.ToLower(input.GranularityStr))
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return fmt.Errorf("%w: %q (must be 1m, 1h or 1d)", schema.ErrUnsupportedGranularity, input.GranularityStr)
	}

	cfg.SortOrder = schema.AscOrder
	if input.SortOrderStr != "" {
		cfg.SortOrder = schema.SortOrder(strings.ToLower(input.SortOrderStr))
		if _, ok := schema.ValidSortOrders[cfg.SortOrder]; !ok {
			return fmt.Errorf("invalid sort order %q: must be asc or desc", input.SortOrderStr)
		}
	}

	cfg.HourLayout = schema.HourObjectLayout
	if input.HourLayoutStr != "" {
		cfg.HourLayout = schema.HourLayout(strings.ToLower(input.HourLayoutStr))
		if _, ok := schema.ValidHourLayouts[cfg.HourLayout]; !ok {
			return fmt.Errorf("invalid hour layout %q: must be hour-object or day-object", input.HourLayoutStr)
		}
	}

	cfg.DedupPolicy = schema.FirstWins
	if input.DedupPolicyStr != "" {
		cfg.DedupPolicy = schema.DedupPolicy(strings.ToLower(input.DedupPolicyStr))
		if _, ok := schema.ValidDedupPolicies[cfg.DedupPolicy]; !ok {
			return fmt.Errorf("invalid dedup policy %q: must be first or latest", input.DedupPolicyStr)
		}
	}

	// --- 4. Multiplier ---
	cfg.Multiplier = input.Multiplier
	if cfg.Multiplier == 0 {
		cfg.Multiplier = DefaultMultiplier
	}

	// --- 5. Time range ---
	if input.StartTimeStr != "" {
		t, err := ParseQueryTime(input.StartTimeStr)
		if err != nil {
			return fmt.Errorf("invalid start: %w", err)
		}
		cfg.StartTime = t
	}
	if input.EndTimeStr != "" {
		t, err := ParseQueryTime(input.EndTimeStr)
		if err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
		cfg.EndTime = t
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("%w: start %s is after end %s", schema.ErrInvalidRange,
			cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	// --- 6. Household report parameters ---
	cfg.TargetDate = input.TargetDate
	if cfg.TargetDate != "" {
		if _, err := time.Parse(DateFormat, cfg.TargetDate); err != nil {
			return fmt.Errorf("invalid date %q: want %s", cfg.TargetDate, DateFormat)
		}
	}

	cfg.BucketGranularity = schema.BucketHour
	if input.BucketGranStr != "" {
		cfg.BucketGranularity = schema.BucketGranularity(strings.ToLower(input.BucketGranStr))
		if _, ok := schema.ValidBucketGranularities[cfg.BucketGranularity]; !ok {
			return fmt.Errorf("invalid group-by %q: must be year, month, date, hour or timestamp", input.BucketGranStr)
		}
	}
	cfg.LatestOnly = input.LatestOnly

	// --- 7. Misc parameters ---
	cfg.DeviceID = input.DeviceID
	cfg.Locality = input.Locality
	cfg.ForecastKey = input.ForecastKey
	if cfg.ForecastKey == "" {
		cfg.ForecastKey = DefaultForecastObject
	}

	// --- 8. Output ---
	if input.Precision < 1 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format %q: must be text, csv, json or parquet", input.Output)
	}

	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.UseColor = parseBoolish(input.Color, true)

	cfg.ListenAddr = input.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultHTTPAddr
	}

	return nil
}

// parseBoolish interprets yes/no/true/false/1/0, falling back to def.
func parseBoolish(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}
