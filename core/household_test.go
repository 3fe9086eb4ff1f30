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

const householdCSV = `device_id,formatted_timestamp,electricity_usage_kwh,voltage,current,status
hh-2241,2025-04-07 15-10-00,10.0,230.0,3.0,ok
hh-2241,2025-04-07 15-50-00,12.0,232.0,3.4,ok
hh-2241,2025-04-07 16-05-00,13.0,228.0,3.1,ok
hh-2241,2025-04-08 09-00-00,20.0,231.0,3.2,ok
`

func householdConfig() *contract.Config {
	return &contract.Config{
		Bucket:            testBucket,
		HouseholdID:       "hh-2241",
		BucketGranularity: schema.BucketHour,
		Workers:           2,
		FetchTimeout:      time.Second,
	}
}

func householdStore(payloads map[string]string) *contract.MockObjectStore {
	store := &contract.MockObjectStore{}
	store.On("BucketExists", mock.Anything, testBucket).Return(true, nil)

	var infos []contract.ObjectInfo
	for key := range payloads {
		infos = append(infos, contract.ObjectInfo{Key: key})
	}
	store.On("ListObjects", mock.Anything, testBucket, "hh-2241/", true).Return(infos, nil)
	for key, data := range payloads {
		store.On("GetObject", mock.Anything, testBucket, key).Return([]byte(data), nil)
	}
	return store
}

// TestHouseholdReportBuckets tests hourly grouping with statistics.
func TestHouseholdReportBuckets(t *testing.T) {
	store := householdStore(map[string]string{
		"hh-2241/2025-04-08-09-10-00/part-00000": householdCSV,
	})
	cfg := householdConfig()

	report, err := HouseholdReportData(context.Background(), store, cfg)
	require.NoError(t, err)

	assert.Equal(t, "hh-2241", report.HouseholdID)
	assert.Equal(t, "all", report.Date)
	assert.Equal(t, 4, report.TotalReadings)
	assert.Equal(t, 4, report.FilteredReadings)
	assert.Equal(t, 3, report.TimePoints)
	assert.Equal(t, "latest to oldest", report.SortOrder)

	require.Len(t, report.Buckets, 3)
	// Newest bucket key first.
	assert.Equal(t, "2025-04-08 09:00", report.Buckets[0].Key)
	assert.Equal(t, "2025-04-07 16:00", report.Buckets[1].Key)
	assert.Equal(t, "2025-04-07 15:00", report.Buckets[2].Key)

	hour15 := report.Buckets[2]
	assert.Equal(t, 2, hour15.Count)
	require.NotNil(t, hour15.Stats)
	assert.Equal(t, 10.0, hour15.Stats.ElectricityUsageKwh.Min)
	assert.Equal(t, 12.0, hour15.Stats.ElectricityUsageKwh.Max)
	assert.Equal(t, 11.0, hour15.Stats.ElectricityUsageKwh.Avg)
	assert.Len(t, hour15.Samples, 2)
}

// TestHouseholdReportLatestOnly tests newest-per-bucket selection with provenance.
func TestHouseholdReportLatestOnly(t *testing.T) {
	store := householdStore(map[string]string{
		"hh-2241/2025-04-08-09-10-00/part-00000": householdCSV,
	})
	cfg := householdConfig()
	cfg.LatestOnly = true
	cfg.BucketGranularity = schema.BucketDate

	report, err := HouseholdReportData(context.Background(), store, cfg)
	require.NoError(t, err)

	require.Len(t, report.Buckets, 2)
	assert.Equal(t, 4, report.TotalReadings)
	assert.Equal(t, 2, report.FilteredReadings)

	apr7 := report.Buckets[1]
	assert.Equal(t, "2025-04-07", apr7.Key)
	assert.Equal(t, 1, apr7.Count)
	require.NotNil(t, apr7.Latest)
	assert.Equal(t, "2025-04-07-16-05-00", apr7.Latest.FormattedTimestamp)
	assert.Equal(t, "hh-2241/2025-04-08-09-10-00/part-00000", apr7.SourceKey)
	assert.Nil(t, apr7.Stats)
}

// TestHouseholdReportDateFilter tests target-date filtering.
func TestHouseholdReportDateFilter(t *testing.T) {
	store := householdStore(map[string]string{
		"hh-2241/2025-04-08-09-10-00/part-00000": householdCSV,
	})
	cfg := householdConfig()
	cfg.TargetDate = "2025-04-08"

	report, err := HouseholdReportData(context.Background(), store, cfg)
	require.NoError(t, err)

	assert.Equal(t, "2025-04-08", report.Date)
	assert.Equal(t, 4, report.TotalReadings)
	assert.Equal(t, 1, report.FilteredReadings)
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, "2025-04-08 09:00", report.Buckets[0].Key)
}

// TestHouseholdReportFileHandling tests marker skipping and timestamp inheritance.
func TestHouseholdReportFileHandling(t *testing.T) {
	t.Run("markers and empty payloads skipped", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("BucketExists", mock.Anything, testBucket).Return(true, nil)
		store.On("ListObjects", mock.Anything, testBucket, "hh-2241/", true).Return([]contract.ObjectInfo{
			{Key: "hh-2241/2025-04-07-15-50-25/_SUCCESS"},
			{Key: "hh-2241/_temporary/0/part-00000"},
			{Key: "hh-2241/2025-04-07-15-50-25/part-00000"},
			{Key: "hh-2241/2025-04-07-16-50-25/part-00000"},
		}, nil)
		store.On("GetObject", mock.Anything, testBucket, "hh-2241/2025-04-07-15-50-25/part-00000").
			Return([]byte("  \n"), nil)
		store.On("GetObject", mock.Anything, testBucket, "hh-2241/2025-04-07-16-50-25/part-00000").
			Return([]byte(householdCSV), nil)

		report, err := HouseholdReportData(context.Background(), store, householdConfig())
		require.NoError(t, err)
		assert.Equal(t, 4, report.TotalReadings)
		store.AssertNotCalled(t, "GetObject", mock.Anything, testBucket, "hh-2241/2025-04-07-15-50-25/_SUCCESS")
	})

	t.Run("rows without timestamp inherit key date-time", func(t *testing.T) {
		csv := "device_id,formatted_timestamp,electricity_usage_kwh,voltage,current\nhh-2241,,5.0,230.0,3.0\n"
		store := householdStore(map[string]string{
			"hh-2241/2025-04-07-15-50-25/part-00000": csv,
		})

		report, err := HouseholdReportData(context.Background(), store, householdConfig())
		require.NoError(t, err)
		require.Len(t, report.Buckets, 1)
		assert.Equal(t, "2025-04-07 15:00", report.Buckets[0].Key)
		require.Len(t, report.Buckets[0].Samples, 1)
		assert.Equal(t, "2025-04-07-15-50-25", report.Buckets[0].Samples[0].FormattedTimestamp)
	})
}

// TestHouseholdReportValidation tests required parameters and store probing.
func TestHouseholdReportValidation(t *testing.T) {
	t.Run("missing household id", func(t *testing.T) {
		cfg := householdConfig()
		cfg.HouseholdID = ""
		_, err := HouseholdReportData(context.Background(), &contract.MockObjectStore{}, cfg)
		assert.ErrorIs(t, err, schema.ErrMissingParams)
	})

	t.Run("missing bucket", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("BucketExists", mock.Anything, testBucket).Return(false, nil)
		_, err := HouseholdReportData(context.Background(), store, householdConfig())
		assert.ErrorContains(t, err, "does not exist")
	})
}
