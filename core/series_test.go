package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterflow/meterflow/schema"
)

func bucketsFrom(t *testing.T, readings map[string]float64) map[int64]schema.CanonicalRecord {
	t.Helper()
	buckets := make(map[int64]schema.CanonicalRecord, len(readings))
	for ts, usage := range readings {
		at := mustTime(t, ts)
		buckets[at.UnixMilli()] = schema.CanonicalRecord{
			Timestamp: at,
			Metrics:   schema.Metrics{ElectricityUsageKwh: usage},
		}
	}
	return buckets
}

// TestMergeSeriesCarryForward tests last-observation-carried-forward fill.
func TestMergeSeriesCarryForward(t *testing.T) {
	grid, err := BuildTimeGrid(mustTime(t, "2025-06-01T00:00:00Z"), mustTime(t, "2025-06-03T00:00:00Z"), schema.GranularityDay)
	require.NoError(t, err)

	t.Run("gap repeats last value", func(t *testing.T) {
		buckets := bucketsFrom(t, map[string]float64{
			"2025-06-01T00:00:00Z": 5,
			"2025-06-03T00:00:00Z": 8,
		})

		points := MergeSeries(grid, buckets, schema.AscOrder)
		require.Len(t, points, 3)
		assert.Equal(t, 5.0, points[0].ElectricityUsage)
		assert.Equal(t, 5.0, points[1].ElectricityUsage) // carried across the gap
		assert.Equal(t, 8.0, points[2].ElectricityUsage)
	})

	t.Run("leading gap defaults to zero without backfill", func(t *testing.T) {
		buckets := bucketsFrom(t, map[string]float64{
			"2025-06-02T00:00:00Z": 7,
		})

		points := MergeSeries(grid, buckets, schema.AscOrder)
		require.Len(t, points, 3)
		assert.Equal(t, 0.0, points[0].ElectricityUsage)
		assert.Equal(t, 7.0, points[1].ElectricityUsage)
		assert.Equal(t, 7.0, points[2].ElectricityUsage)
	})

	t.Run("no records yields all defaults", func(t *testing.T) {
		points := MergeSeries(grid, nil, schema.AscOrder)
		require.Len(t, points, 3)
		for _, p := range points {
			assert.Equal(t, 0.0, p.ElectricityUsage)
			assert.Nil(t, p.Voltage)
			assert.Nil(t, p.Current)
		}
	})

	t.Run("descending order reverses after fill", func(t *testing.T) {
		buckets := bucketsFrom(t, map[string]float64{
			"2025-06-01T00:00:00Z": 5,
			"2025-06-03T00:00:00Z": 8,
		})

		points := MergeSeries(grid, buckets, schema.DescOrder)
		require.Len(t, points, 3)
		assert.Equal(t, 8.0, points[0].ElectricityUsage)
		assert.Equal(t, 5.0, points[1].ElectricityUsage)
		assert.Equal(t, 5.0, points[2].ElectricityUsage)
	})
}

// TestMergeSeriesDenseRecords tests grids sparser than the record set.
func TestMergeSeriesDenseRecords(t *testing.T) {
	grid := []time.Time{mustTime(t, "2025-06-01T01:00:00Z")}
	buckets := bucketsFrom(t, map[string]float64{
		"2025-06-01T00:10:00Z": 1,
		"2025-06-01T00:40:00Z": 2,
		"2025-06-01T00:55:00Z": 3,
	})

	points := MergeSeries(grid, buckets, schema.AscOrder)
	require.Len(t, points, 1)
	// Only the latest record at or before the instant survives.
	assert.Equal(t, 3.0, points[0].ElectricityUsage)
}

// TestMergeSeriesPointShape tests the x/x_utc pairing of emitted points.
func TestMergeSeriesPointShape(t *testing.T) {
	at := mustTime(t, "2025-06-01T04:00:00Z")
	voltage, current := 231.5, 4.2
	buckets := map[int64]schema.CanonicalRecord{
		at.UnixMilli(): {
			Timestamp: at,
			Metrics:   schema.Metrics{ElectricityUsageKwh: 9.5, Voltage: &voltage, Current: &current},
		},
	}

	points := MergeSeries([]time.Time{at}, buckets, schema.AscOrder)
	require.Len(t, points, 1)
	assert.Equal(t, at.UnixMilli(), points[0].X)
	assert.Equal(t, at, points[0].XUTCTimestamp)
	require.NotNil(t, points[0].Voltage)
	assert.Equal(t, 231.5, *points[0].Voltage)
	require.NotNil(t, points[0].Current)
	assert.Equal(t, 4.2, *points[0].Current)
}
