package core

import (
	"fmt"
	"slices"

	"github.com/meterflow/meterflow/schema"
)

// WindowDelta computes usage over a bucketed record set as the newest reading
// minus the oldest. Fewer than two readings is an insufficient-data result,
// not an error. Negative deltas (meter reset or anomaly) pass through
// unclamped.
func WindowDelta(buckets map[int64]schema.CanonicalRecord) schema.UsageResult {
	if len(buckets) < 2 {
		return schema.UsageResult{
			Reason: fmt.Sprintf("need at least 2 data points, have %d", len(buckets)),
		}
	}

	keys := sortedBucketKeys(buckets)
	oldest := buckets[keys[0]]
	newest := buckets[keys[len(keys)-1]]

	return schema.UsageResult{
		Usage:      newest.Metrics.ElectricityUsageKwh - oldest.Metrics.ElectricityUsageKwh,
		StartValue: oldest.Metrics.ElectricityUsageKwh,
		EndValue:   newest.Metrics.ElectricityUsageKwh,
		StartTime:  oldest.Timestamp,
		EndTime:    newest.Timestamp,
	}
}

// DailyDeltas computes the usage between every consecutive pair of
// timestamp-sorted readings. The multiplier scales each delta only; raw
// start/end values are reported untouched.
func DailyDeltas(buckets map[int64]schema.CanonicalRecord, multiplier float64) []schema.DailyDelta {
	keys := sortedBucketKeys(buckets)

	deltas := make([]schema.DailyDelta, 0, max(len(keys)-1, 0))
	for i := 0; i+1 < len(keys); i++ {
		prev := buckets[keys[i]]
		next := buckets[keys[i+1]]
		raw := next.Metrics.ElectricityUsageKwh - prev.Metrics.ElectricityUsageKwh
		deltas = append(deltas, schema.DailyDelta{
			Usage:               raw * multiplier,
			UsageBeforeMultiply: raw,
			Multiplier:          multiplier,
			StartValue:          prev.Metrics.ElectricityUsageKwh,
			EndValue:            next.Metrics.ElectricityUsageKwh,
			StartTime:           prev.Timestamp,
			EndTime:             next.Timestamp,
		})
	}
	return deltas
}

func sortedBucketKeys(buckets map[int64]schema.CanonicalRecord) []int64 {
	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// insufficientDailyReason mirrors the window-delta wording for pair series.
func insufficientDailyReason(n int) string {
	return fmt.Sprintf("need at least 2 data points for pair deltas, have %d", n)
}
