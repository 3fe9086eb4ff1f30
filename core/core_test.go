package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

func pipelineConfig(t *testing.T) *contract.Config {
	return &contract.Config{
		Bucket:       testBucket,
		DeviceID:     "hcmc-q1-0",
		StartTime:    mustTime(t, "2025-06-01T00:00:00Z"),
		EndTime:      mustTime(t, "2025-06-03T00:00:00Z"),
		Granularity:  schema.GranularityDay,
		SortOrder:    schema.AscOrder,
		HourLayout:   schema.HourObjectLayout,
		DedupPolicy:  schema.FirstWins,
		Multiplier:   1,
		Workers:      2,
		FetchTimeout: time.Second,
	}
}

func pipelineStore(payloads map[string]string) *contract.MockObjectStore {
	store := &contract.MockObjectStore{}
	store.On("BucketExists", mock.Anything, testBucket).Return(true, nil)
	for key, data := range payloads {
		store.On("StatObject", mock.Anything, testBucket, key).
			Return(contract.ObjectInfo{Key: key}, nil)
		store.On("GetObject", mock.Anything, testBucket, key).
			Return([]byte(data), nil)
	}
	// Every other planned key is absent.
	store.On("StatObject", mock.Anything, testBucket, mock.Anything).
		Return(contract.ObjectInfo{}, &contract.NotFoundError{Bucket: testBucket}).Maybe()
	return store
}

// TestChartData tests the full chart pipeline against a mocked store.
func TestChartData(t *testing.T) {
	store := pipelineStore(map[string]string{
		"hcmc-q1-0/2025-06-01.json": `{"timestamp":"2025-06-01T10:00:00Z","type":"HouseholdData","electricity_usage_kwh":5}`,
		"hcmc-q1-0/2025-06-03.json": `{"timestamp":"2025-06-03T08:00:00Z","type":"HouseholdData","electricity_usage_kwh":8}`,
	})

	result, err := ChartData(context.Background(), store, pipelineConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "hcmc-q1-0", result.DeviceID)
	require.Len(t, result.Data, 3)
	assert.Equal(t, 5.0, result.Data[0].ElectricityUsage)
	assert.Equal(t, 5.0, result.Data[1].ElectricityUsage) // carried across the missing day
	assert.Equal(t, 8.0, result.Data[2].ElectricityUsage)
}

// TestWindowUsage tests the windowed delta pipeline, including the multiplier.
func TestWindowUsage(t *testing.T) {
	store := pipelineStore(map[string]string{
		"hcmc-q1-0/2025-06-01.json": `{"timestamp":"2025-06-01T00:00:00Z","type":"HouseholdData","electricity_usage_kwh":3}`,
		"hcmc-q1-0/2025-06-02.json": `{"timestamp":"2025-06-02T00:00:00Z","type":"HouseholdData","electricity_usage_kwh":7}`,
	})

	t.Run("plain delta", func(t *testing.T) {
		result, err := WindowUsage(context.Background(), store, pipelineConfig(t))
		require.NoError(t, err)
		assert.Equal(t, 4.0, result.Usage)
	})

	t.Run("multiplier applies to the delta", func(t *testing.T) {
		cfg := pipelineConfig(t)
		cfg.Multiplier = 1000
		result, err := WindowUsage(context.Background(), store, cfg)
		require.NoError(t, err)
		assert.Equal(t, 4000.0, result.Usage)
		assert.Equal(t, 3.0, result.StartValue)
		assert.Equal(t, 7.0, result.EndValue)
	})

	t.Run("empty window explains itself", func(t *testing.T) {
		empty := pipelineStore(nil)
		result, err := WindowUsage(context.Background(), empty, pipelineConfig(t))
		require.NoError(t, err)
		assert.True(t, result.Insufficient())
	})
}

// TestDailyUsage tests the pair-delta pipeline result shape.
func TestDailyUsage(t *testing.T) {
	store := pipelineStore(map[string]string{
		"hcmc-q1-0/2025-06-01.json": `{"timestamp":"2025-06-01T00:00:00Z","type":"HouseholdData","electricity_usage_kwh":3}`,
		"hcmc-q1-0/2025-06-02.json": `{"timestamp":"2025-06-02T00:00:00Z","type":"HouseholdData","electricity_usage_kwh":7}`,
		"hcmc-q1-0/2025-06-03.json": `{"timestamp":"2025-06-03T00:00:00Z","type":"HouseholdData","electricity_usage_kwh":5}`,
	})

	t.Run("one delta per pair", func(t *testing.T) {
		result, err := DailyUsage(context.Background(), store, pipelineConfig(t))
		require.NoError(t, err)
		assert.Equal(t, "hcmc-q1-0", result.DeviceID)
		require.Len(t, result.Deltas, 2)
		assert.Equal(t, 4.0, result.Deltas[0].Usage)
		assert.Equal(t, -2.0, result.Deltas[1].Usage)
	})

	t.Run("single reading explains itself", func(t *testing.T) {
		single := pipelineStore(map[string]string{
			"hcmc-q1-0/2025-06-01.json": `{"timestamp":"2025-06-01T00:00:00Z","electricity_usage_kwh":3}`,
		})
		result, err := DailyUsage(context.Background(), single, pipelineConfig(t))
		require.NoError(t, err)
		assert.True(t, result.Insufficient())
		assert.Equal(t, "need at least 2 data points for pair deltas, have 1", result.Reason)
		assert.Empty(t, result.Deltas)
	})
}

// TestProbeBucket tests store availability classification.
func TestProbeBucket(t *testing.T) {
	t.Run("unreachable store", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("BucketExists", mock.Anything, testBucket).Return(false, assert.AnError)

		err := probeBucket(context.Background(), store, testBucket)
		assert.ErrorIs(t, err, schema.ErrStoreUnavailable)
	})

	t.Run("missing bucket is not an availability failure", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("BucketExists", mock.Anything, testBucket).Return(false, nil)

		err := probeBucket(context.Background(), store, testBucket)
		require.Error(t, err)
		assert.NotErrorIs(t, err, schema.ErrStoreUnavailable)
	})
}
