package core

import (
	"slices"
	"time"

	"github.com/meterflow/meterflow/schema"
)

// MergeSeries maps each grid instant to the most recent bucketed record at or
// before it (last observation carried forward). Instants preceding every
// record get the zero default; fill is strictly forward, never backward. The
// walk is a single pass over the sorted bucket keys, so density does not
// matter: zero records yields all defaults, records denser than the grid keep
// only the latest per instant.
func MergeSeries(grid []time.Time, buckets map[int64]schema.CanonicalRecord, order schema.SortOrder) []schema.ChartPoint {
	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	points := make([]schema.ChartPoint, 0, len(grid))
	var carried *schema.Metrics
	next := 0
	for _, instant := range grid {
		ms := instant.UnixMilli()
		for next < len(keys) && keys[next] <= ms {
			rec := buckets[keys[next]]
			carried = &rec.Metrics
			next++
		}

		point := schema.ChartPoint{X: ms, XUTCTimestamp: instant}
		if carried != nil {
			point.ElectricityUsage = carried.ElectricityUsageKwh
			point.Voltage = carried.Voltage
			point.Current = carried.Current
		}
		points = append(points, point)
	}

	if order == schema.DescOrder {
		slices.Reverse(points)
	}
	return points
}
