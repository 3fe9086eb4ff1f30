package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// AreaUsageReport computes the usage delta over [start, end] for every device
// in a locality, fanning the per-device pipelines out over a worker pool. A
// device that cannot produce a delta still appears in the result with its
// reason set. Results are ordered by sub-locality, then device id.
func AreaUsageReport(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) ([]schema.AreaUsage, error) {
	if cfg.Locality == "" {
		return nil, fmt.Errorf("%w: locality", schema.ErrMissingParams)
	}
	if err := probeBucket(ctx, store, cfg.Bucket); err != nil {
		return nil, err
	}

	devices, err := listLocalityDevices(ctx, store, cfg.Bucket, cfg.Locality)
	if err != nil {
		return nil, err
	}

	deviceCh := make(chan string, len(devices))
	resultCh := make(chan schema.AreaUsage, len(devices))
	for _, device := range devices {
		deviceCh <- device
	}
	close(deviceCh)

	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Go(func() {
			for device := range deviceCh {
				resultCh <- deviceAreaUsage(ctx, store, cfg, device)
			}
		})
	}
	wg.Wait()
	close(resultCh)

	var results []schema.AreaUsage
	for result := range resultCh {
		results = append(results, result)
	}
	slices.SortFunc(results, func(a, b schema.AreaUsage) int {
		if c := strings.Compare(a.SubLocality, b.SubLocality); c != 0 {
			return c
		}
		return strings.Compare(a.DeviceID, b.DeviceID)
	})
	return results, nil
}

// listLocalityDevices walks the whole bucket and keeps the top-level device
// folders whose name contains the locality token.
func listLocalityDevices(ctx context.Context, store contract.ObjectStore, bucket, locality string) ([]string, error) {
	infos, err := store.ListObjects(ctx, bucket, "", true)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	devices := lo.Uniq(lo.FilterMap(infos, func(info contract.ObjectInfo, _ int) (string, bool) {
		folder, _, found := strings.Cut(info.Key, "/")
		if !found || !strings.Contains(folder, locality) {
			return "", false
		}
		return folder, true
	}))
	slices.Sort(devices)
	return devices, nil
}

// deviceAreaUsage runs the day-granularity delta pipeline for one device.
// Failures degrade to an insufficient-data result rather than aborting the
// whole area report.
func deviceAreaUsage(ctx context.Context, store contract.ObjectStore, cfg *contract.Config, device string) schema.AreaUsage {
	result := schema.AreaUsage{
		SubLocality: subLocality(device),
		DeviceID:    device,
	}

	entries, err := PlanObjectPaths(device, cfg.StartTime, cfg.EndTime, schema.GranularityDay, cfg.HourLayout)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	fetcher := NewFetcher(store, cfg.Bucket, ObjectSuffix, cfg.Workers, cfg.FetchTimeout)
	objs, err := fetcher.Fetch(ctx, entries)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	records := NormalizeAll(objs)
	buckets := RecordsByBucket(records, schema.GranularityDay, cfg.DedupPolicy)
	result.UsageResult = WindowDelta(buckets)
	return result
}

// subLocality derives the sub-locality from the device naming convention
// {city}-{locality}-{subLocality}. Devices outside the convention fall back
// to their full id.
func subLocality(device string) string {
	parts := strings.Split(device, "-")
	if len(parts) < 3 {
		return device
	}
	return parts[2]
}
