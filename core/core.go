package core

import (
	"context"
	"fmt"
	"time"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/internal/outwriter"
	"github.com/meterflow/meterflow/internal/storeclient"
	"github.com/meterflow/meterflow/schema"
)

// ExecutorFunc defines the function signature for executing different query modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteChart runs the chart pipeline and prints the merged series.
// It serves as the main entry point for the 'chart' mode.
func ExecuteChart(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := connect(cfg)
	if err != nil {
		return err
	}
	result, err := ChartData(ctx, store, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintChartResult(result, cfg, duration)
}

// ExecuteUsage runs the window-delta pipeline and prints the usage summary.
// It serves as the main entry point for the 'usage' mode.
func ExecuteUsage(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := connect(cfg)
	if err != nil {
		return err
	}
	result, err := WindowUsage(ctx, store, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintUsageResult(cfg.DeviceID, result, cfg, duration)
}

// ExecuteDaily runs the pair-delta pipeline and prints one row per
// consecutive reading pair. It serves as the main entry point for the
// 'daily' mode.
func ExecuteDaily(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := connect(cfg)
	if err != nil {
		return err
	}
	result, err := DailyUsage(ctx, store, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintDailyResult(result, cfg, duration)
}

// ExecuteArea runs the per-device delta pipelines for a locality and prints
// the combined report. It serves as the main entry point for the 'area' mode.
func ExecuteArea(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := connect(cfg)
	if err != nil {
		return err
	}
	results, err := AreaUsageReport(ctx, store, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintAreaResults(results, cfg, duration)
}

// ExecuteHousehold runs the raw-reading bucket report and prints it.
// It serves as the main entry point for the 'household' mode.
func ExecuteHousehold(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := connect(cfg)
	if err != nil {
		return err
	}
	report, err := HouseholdReportData(ctx, store, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintHouseholdReport(report, cfg, duration)
}

// ExecuteForecast reads the published forecast and prints the in-range daily
// predictions. It serves as the main entry point for the 'forecast' mode.
func ExecuteForecast(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := connect(cfg)
	if err != nil {
		return err
	}
	points, err := ForecastUsage(ctx, store, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintForecastResults(points, cfg, duration)
}

// ChartData runs plan, fetch, normalize, grid and merge for one device,
// producing a grid-aligned series with carry-forward fill.
func ChartData(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) (schema.ChartResult, error) {
	if err := probeBucket(ctx, store, cfg.Bucket); err != nil {
		return schema.ChartResult{}, err
	}

	buckets, err := deviceBuckets(ctx, store, cfg, cfg.Granularity)
	if err != nil {
		return schema.ChartResult{}, err
	}
	grid, err := BuildTimeGrid(cfg.StartTime, cfg.EndTime, cfg.Granularity)
	if err != nil {
		return schema.ChartResult{}, err
	}

	return schema.ChartResult{
		DeviceID: cfg.DeviceID,
		Data:     MergeSeries(grid, buckets, cfg.SortOrder),
	}, nil
}

// WindowUsage computes total usage over the query window as newest reading
// minus oldest reading.
func WindowUsage(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) (schema.UsageResult, error) {
	if err := probeBucket(ctx, store, cfg.Bucket); err != nil {
		return schema.UsageResult{}, err
	}

	buckets, err := deviceBuckets(ctx, store, cfg, cfg.Granularity)
	if err != nil {
		return schema.UsageResult{}, err
	}
	result := WindowDelta(buckets)
	result.Usage *= cfg.Multiplier
	return result, nil
}

// DailyUsage computes the delta between every consecutive pair of readings
// over the query window.
func DailyUsage(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) (schema.DailyResult, error) {
	if err := probeBucket(ctx, store, cfg.Bucket); err != nil {
		return schema.DailyResult{}, err
	}

	buckets, err := deviceBuckets(ctx, store, cfg, cfg.Granularity)
	if err != nil {
		return schema.DailyResult{}, err
	}

	result := schema.DailyResult{DeviceID: cfg.DeviceID}
	if len(buckets) < 2 {
		result.Reason = insufficientDailyReason(len(buckets))
		return result, nil
	}
	result.Deltas = DailyDeltas(buckets, cfg.Multiplier)
	return result, nil
}

// deviceBuckets runs the shared front half of every single-device pipeline:
// plan the keys, fetch the objects once each, normalize and bucket.
func deviceBuckets(ctx context.Context, store contract.ObjectStore, cfg *contract.Config, g schema.Granularity) (map[int64]schema.CanonicalRecord, error) {
	entries, err := PlanObjectPaths(cfg.DeviceID, cfg.StartTime, cfg.EndTime, g, cfg.HourLayout)
	if err != nil {
		return nil, err
	}
	fetcher := NewFetcher(store, cfg.Bucket, ObjectSuffix, cfg.Workers, cfg.FetchTimeout)
	objs, err := fetcher.Fetch(ctx, entries)
	if err != nil {
		return nil, err
	}
	records := NormalizeAll(objs)
	return RecordsByBucket(records, g, cfg.DedupPolicy), nil
}

// probeBucket checks the store once per query. A failed probe means the store
// itself is unreachable; a missing bucket is a request problem, not an
// availability one.
func probeBucket(ctx context.Context, store contract.ObjectStore, bucket string) error {
	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrStoreUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", bucket)
	}
	return nil
}

// connect builds the object store client for CLI execution paths.
func connect(cfg *contract.Config) (contract.ObjectStore, error) {
	client, err := storeclient.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrStoreUnavailable, err)
	}
	return client, nil
}
