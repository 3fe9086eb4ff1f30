package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// householdType is the discriminator value for per-household readings; any
// other value is treated as an aggregate/area device payload.
const householdType = "HouseholdData"

// deviceReading is the wire shape of a JSON telemetry object. Household
// records expose electricity_usage_kwh plus voltage/current; aggregate
// records expose only a cumulative total_electricity_usage_kwh.
type deviceReading struct {
	Type                     string  `json:"type"`
	DeviceID                 string  `json:"device_id"`
	Timestamp                string  `json:"timestamp"`
	FormattedTimestamp       string  `json:"formatted_timestamp"`
	ElectricityUsageKwh      float64 `json:"electricity_usage_kwh"`
	Voltage                  float64 `json:"voltage"`
	Current                  float64 `json:"current"`
	TotalElectricityUsageKwh float64 `json:"total_electricity_usage_kwh"`
}

// NormalizeObject parses one raw object into zero or more canonical records.
// Objects may hold a single reading or an array of readings; a payload that
// parses as neither contributes nothing (logged, non-fatal). Records whose
// timestamp cannot be derived by any rule are dropped the same way.
func NormalizeObject(obj RawObject) []schema.CanonicalRecord {
	readings, err := decodeReadings(obj.Data)
	if err != nil {
		contract.LogWarn("parse object "+obj.Key, err)
		return nil
	}

	records := make([]schema.CanonicalRecord, 0, len(readings))
	for i := range readings {
		ts, ok := resolveTimestamp(&readings[i], obj.Key)
		if !ok {
			contract.LogWarn("derive timestamp for "+obj.Key, errors.New("no usable timestamp field or key component"))
			continue
		}
		records = append(records, schema.CanonicalRecord{
			Timestamp: ts,
			Metrics:   extractMetrics(&readings[i]),
		})
	}
	return records
}

// NormalizeAll runs NormalizeObject over a fetched batch.
func NormalizeAll(objs []RawObject) []schema.CanonicalRecord {
	var records []schema.CanonicalRecord
	for _, obj := range objs {
		records = append(records, NormalizeObject(obj)...)
	}
	return records
}

// decodeReadings handles the single-record and record-array payload shapes.
func decodeReadings(data []byte) ([]deviceReading, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var many []deviceReading
		if err := sonic.UnmarshalString(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one deviceReading
	if err := sonic.UnmarshalString(trimmed, &one); err != nil {
		return nil, err
	}
	return []deviceReading{one}, nil
}

// extractMetrics branches on the two payload variants. Aggregate records map
// their cumulative total onto the same usage field with voltage/current
// absent.
func extractMetrics(r *deviceReading) schema.Metrics {
	if r.Type == householdType {
		v, c := r.Voltage, r.Current
		return schema.Metrics{
			ElectricityUsageKwh: r.ElectricityUsageKwh,
			Voltage:             &v,
			Current:             &c,
		}
	}
	return schema.Metrics{ElectricityUsageKwh: r.TotalElectricityUsageKwh}
}

// timestampParser attempts one timestamp derivation rule. Parsers run in
// priority order and the first success wins.
type timestampParser func(r *deviceReading, key string) (time.Time, bool)

var timestampParsers = []timestampParser{
	parseExplicitTimestamp,
	parseFormattedTimestamp,
	parseTimestampFromKey,
}

func resolveTimestamp(r *deviceReading, key string) (time.Time, bool) {
	for _, parse := range timestampParsers {
		if ts, ok := parse(r, key); ok {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseExplicitTimestamp reads the timestamp field as an absolute instant.
// Ingestion sometimes omits the zone designator; such values are UTC.
func parseExplicitTimestamp(r *deviceReading, _ string) (time.Time, bool) {
	s := strings.TrimSpace(r.Timestamp)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseFormattedTimestamp reads the formatted_timestamp field in either the
// space-separated or fully hyphen-separated form.
func parseFormattedTimestamp(r *deviceReading, _ string) (time.Time, bool) {
	s := strings.TrimSpace(r.FormattedTimestamp)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(contract.CompactTimeFormat, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseTimestampFromKey derives the instant from the object's own key:
// {device}/{date}[/{hour}[/{minute}]]. Missing hour and minute default to 0.
// Hour components are stored without zero padding.
func parseTimestampFromKey(_ *deviceReading, key string) (time.Time, bool) {
	key = strings.TrimSuffix(key, ObjectSuffix)
	key = strings.TrimSuffix(key, ".csv")
	parts := strings.Split(key, "/")
	if len(parts) < 2 {
		return time.Time{}, false
	}

	day, err := time.ParseInLocation(contract.DateFormat, parts[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if len(parts) > 2 {
		if hour, err = strconv.Atoi(parts[2]); err != nil || hour < 0 || hour > 23 {
			return time.Time{}, false
		}
	}
	if len(parts) > 3 {
		if minute, err = strconv.Atoi(parts[3]); err != nil || minute < 0 || minute > 59 {
			return time.Time{}, false
		}
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true
}

// RecordsByBucket truncates each record's timestamp to the granularity and
// keeps one record per bucket according to the caller-supplied policy:
// FirstWins keeps the first-seen record (delta and chart pipelines),
// LatestWins keeps the record with the greatest raw timestamp.
func RecordsByBucket(records []schema.CanonicalRecord, g schema.Granularity, policy schema.DedupPolicy) map[int64]schema.CanonicalRecord {
	buckets := make(map[int64]schema.CanonicalRecord, len(records))
	rawTimes := make(map[int64]time.Time, len(records))

	for _, rec := range records {
		key := g.Truncate(rec.Timestamp).UnixMilli()
		prevRaw, exists := rawTimes[key]
		switch {
		case !exists:
			// fall through to insert
		case policy == schema.LatestWins && rec.Timestamp.After(prevRaw):
			// replace with the newer reading
		default:
			continue
		}
		bucketed := rec
		bucketed.Timestamp = g.Truncate(rec.Timestamp)
		buckets[key] = bucketed
		rawTimes[key] = rec.Timestamp
	}
	return buckets
}
