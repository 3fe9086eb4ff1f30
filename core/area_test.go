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

const areaBucket = "ward"

func areaConfig(t *testing.T) *contract.Config {
	return &contract.Config{
		Bucket:       areaBucket,
		Locality:     "q1",
		StartTime:    mustTime(t, "2025-06-01T00:00:00Z"),
		EndTime:      mustTime(t, "2025-06-02T00:00:00Z"),
		HourLayout:   schema.HourObjectLayout,
		DedupPolicy:  schema.FirstWins,
		Workers:      2,
		FetchTimeout: time.Second,
	}
}

// TestSubLocality tests the device naming convention split.
func TestSubLocality(t *testing.T) {
	assert.Equal(t, "0", subLocality("hcmc-q1-0"))
	assert.Equal(t, "12", subLocality("hcmc-q3-12"))
	assert.Equal(t, "gauge7", subLocality("gauge7"))
	assert.Equal(t, "a", subLocality("x-y-a-b"))
}

// TestListLocalityDevices tests device folder discovery.
func TestListLocalityDevices(t *testing.T) {
	store := &contract.MockObjectStore{}
	store.On("ListObjects", mock.Anything, areaBucket, "", true).Return([]contract.ObjectInfo{
		{Key: "hcmc-q1-0/2025-06-01.json"},
		{Key: "hcmc-q1-0/2025-06-02.json"},
		{Key: "hcmc-q1-3/2025-06-01.json"},
		{Key: "hcmc-q3-1/2025-06-01.json"},
		{Key: "stray-object.json"},
	}, nil)

	devices, err := listLocalityDevices(context.Background(), store, areaBucket, "q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hcmc-q1-0", "hcmc-q1-3"}, devices)
}

// TestAreaUsageReport tests the fan-out report with mixed outcomes.
func TestAreaUsageReport(t *testing.T) {
	store := &contract.MockObjectStore{}
	store.On("BucketExists", mock.Anything, areaBucket).Return(true, nil)
	store.On("ListObjects", mock.Anything, areaBucket, "", true).Return([]contract.ObjectInfo{
		{Key: "hcmc-q1-5/2025-06-01.json"},
		{Key: "hcmc-q1-2/2025-06-01.json"},
	}, nil)

	// hcmc-q1-2 has both readings; hcmc-q1-5 has only one.
	store.On("StatObject", mock.Anything, areaBucket, mock.Anything).Return(contract.ObjectInfo{}, nil)
	store.On("GetObject", mock.Anything, areaBucket, "hcmc-q1-2/2025-06-01.json").
		Return([]byte(`{"timestamp":"2025-06-01T00:00:00Z","total_electricity_usage_kwh":10}`), nil)
	store.On("GetObject", mock.Anything, areaBucket, "hcmc-q1-2/2025-06-02.json").
		Return([]byte(`{"timestamp":"2025-06-02T00:00:00Z","total_electricity_usage_kwh":16}`), nil)
	store.On("GetObject", mock.Anything, areaBucket, "hcmc-q1-5/2025-06-01.json").
		Return([]byte(`{"timestamp":"2025-06-01T00:00:00Z","total_electricity_usage_kwh":3}`), nil)
	store.On("GetObject", mock.Anything, areaBucket, "hcmc-q1-5/2025-06-02.json").
		Return(nil, &contract.NotFoundError{Bucket: areaBucket, Key: "hcmc-q1-5/2025-06-02.json"})

	results, err := AreaUsageReport(context.Background(), store, areaConfig(t))
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by sub-locality.
	assert.Equal(t, "2", results[0].SubLocality)
	assert.Equal(t, "hcmc-q1-2", results[0].DeviceID)
	assert.False(t, results[0].Insufficient())
	assert.Equal(t, 6.0, results[0].Usage)

	assert.Equal(t, "5", results[1].SubLocality)
	assert.True(t, results[1].Insufficient())
	assert.Equal(t, "need at least 2 data points, have 1", results[1].Reason)
}

// TestAreaUsageReportValidation tests parameter and probe failures.
func TestAreaUsageReportValidation(t *testing.T) {
	t.Run("missing locality", func(t *testing.T) {
		cfg := areaConfig(t)
		cfg.Locality = ""
		_, err := AreaUsageReport(context.Background(), &contract.MockObjectStore{}, cfg)
		assert.ErrorIs(t, err, schema.ErrMissingParams)
	})

	t.Run("unreachable store", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("BucketExists", mock.Anything, areaBucket).Return(false, assert.AnError)
		_, err := AreaUsageReport(context.Background(), store, areaConfig(t))
		assert.ErrorIs(t, err, schema.ErrStoreUnavailable)
	})
}
