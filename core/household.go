package core

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// Numeric CSV columns of a household reading. Everything else passes through
// as text.
var householdNumericFields = map[string]struct{}{
	"electricity_usage_kwh": {},
	"voltage":               {},
	"current":               {},
}

// datePartRe finds the date-time path segment of an ingestion key, e.g.
// hcmc-q1-0/2025-04-07-15-50-25/part-00000.
var datePartRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// householdRecord pairs a parsed sample with the provenance of its source
// object. Provenance is reported for latest-only buckets and stripped from
// statistical samples.
type householdRecord struct {
	sample    schema.HouseholdSample
	sourceKey string
}

// HouseholdReportData fetches every raw CSV reading under a household prefix
// and groups it into calendar buckets. latestOnly keeps the newest reading
// per bucket; otherwise each bucket gets min/max/avg statistics plus the full
// sample list. Buckets are ordered newest key first.
func HouseholdReportData(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) (schema.HouseholdReport, error) {
	if cfg.HouseholdID == "" {
		return schema.HouseholdReport{}, fmt.Errorf("%w: household id", schema.ErrMissingParams)
	}
	if err := probeBucket(ctx, store, cfg.Bucket); err != nil {
		return schema.HouseholdReport{}, err
	}

	objs := fetchHouseholdObjects(ctx, store, cfg)

	var all []householdRecord
	for _, obj := range objs {
		all = append(all, parseHouseholdCSV(obj)...)
	}

	kept := all
	if cfg.TargetDate != "" {
		kept = lo.Filter(all, func(r householdRecord, _ int) bool {
			return r.sample.Date == cfg.TargetDate
		})
	}

	groups := lo.GroupBy(kept, func(r householdRecord) string {
		return bucketKey(r.sample, cfg.BucketGranularity)
	})

	report := schema.HouseholdReport{
		HouseholdID:       cfg.HouseholdID,
		Date:              lo.Ternary(cfg.TargetDate != "", cfg.TargetDate, "all"),
		BucketGranularity: cfg.BucketGranularity,
		LatestOnly:        cfg.LatestOnly,
		TotalReadings:     len(all),
		TimePoints:        len(groups),
		SortOrder:         "latest to oldest",
	}
	if len(kept) > 0 {
		report.DeviceID = kept[0].sample.DeviceID
	}

	keys := lo.Keys(groups)
	slices.Sort(keys)
	slices.Reverse(keys)

	for _, key := range keys {
		records := groups[key]
		if cfg.LatestOnly {
			latest := lo.MaxBy(records, func(a, b householdRecord) bool {
				return a.sample.FormattedTimestamp > b.sample.FormattedTimestamp
			})
			sample := latest.sample
			report.Buckets = append(report.Buckets, schema.HouseholdBucket{
				Key:       key,
				Count:     1,
				Latest:    &sample,
				SourceKey: latest.sourceKey,
			})
			report.FilteredReadings++
			continue
		}

		samples := lo.Map(records, func(r householdRecord, _ int) schema.HouseholdSample {
			return r.sample
		})
		stats := bucketStats(samples)
		report.Buckets = append(report.Buckets, schema.HouseholdBucket{
			Key:     key,
			Count:   len(samples),
			Stats:   &stats,
			Samples: samples,
		})
		report.FilteredReadings += len(samples)
	}

	return report, nil
}

// fetchHouseholdObjects lists everything under {householdID}/ recursively and
// reads the payloads concurrently, newest object first. Spark job markers and
// temporary files are skipped, as are empty payloads. Failures are isolated
// per object.
func fetchHouseholdObjects(ctx context.Context, store contract.ObjectStore, cfg *contract.Config) []RawObject {
	infos, err := store.ListObjects(ctx, cfg.Bucket, cfg.HouseholdID+"/", true)
	if err != nil {
		contract.LogWarn("list household "+cfg.HouseholdID, err)
	}

	infos = lo.Filter(infos, func(info contract.ObjectInfo, _ int) bool {
		return !strings.Contains(info.Key, "_SUCCESS") && !strings.Contains(info.Key, "_temporary")
	})
	slices.SortFunc(infos, func(a, b contract.ObjectInfo) int {
		return b.LastModified.Compare(a.LastModified)
	})

	var (
		mu   sync.Mutex
		objs []RawObject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, info := range infos {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, cfg.FetchTimeout)
			defer cancel()
			data, err := store.GetObject(callCtx, cfg.Bucket, info.Key)
			if err != nil {
				contract.LogWarn("read object "+info.Key, err)
				return nil
			}
			if len(strings.TrimSpace(string(data))) == 0 {
				return nil
			}
			mu.Lock()
			objs = append(objs, RawObject{Key: info.Key, LastModified: info.LastModified.Unix(), Data: data})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(objs, func(a, b RawObject) int {
		return int(b.LastModified - a.LastModified)
	})
	return objs
}

// parseHouseholdCSV parses one delimited payload with a header row into
// household records. Malformed rows are skipped. Rows without a usable
// formatted_timestamp inherit the date-time component of the object key.
func parseHouseholdCSV(obj RawObject) []householdRecord {
	lines := strings.Split(strings.TrimSpace(string(obj.Data)), "\n")
	if len(lines) <= 1 {
		return nil
	}
	headers := strings.Split(strings.TrimSpace(lines[0]), ",")

	fileTimestamp := keyDateTimePart(obj.Key)

	var records []householdRecord
	for _, line := range lines[1:] {
		values := strings.Split(strings.TrimRight(line, "\r"), ",")
		if len(values) != len(headers) {
			continue
		}

		sample := schema.HouseholdSample{Extra: make(map[string]string)}
		for i, header := range headers {
			header = strings.TrimSpace(header)
			value := strings.TrimSpace(values[i])
			if _, numeric := householdNumericFields[header]; numeric {
				f, err := strconv.ParseFloat(value, 64)
				if err != nil {
					f = 0
				}
				switch header {
				case "electricity_usage_kwh":
					sample.ElectricityUsageKwh = f
				case "voltage":
					sample.Voltage = f
				case "current":
					sample.Current = f
				}
				continue
			}
			switch header {
			case "device_id":
				sample.DeviceID = value
			case "formatted_timestamp":
				sample.FormattedTimestamp = value
			default:
				sample.Extra[header] = value
			}
		}

		if strings.TrimSpace(sample.FormattedTimestamp) == "" {
			if fileTimestamp == "" {
				continue // no timestamp derivable by any rule
			}
			sample.FormattedTimestamp = fileTimestamp
		}
		sample.FormattedTimestamp = canonicalFormattedTimestamp(sample.FormattedTimestamp)
		fillCalendarParts(&sample)

		records = append(records, householdRecord{sample: sample, sourceKey: obj.Key})
	}
	return records
}

// keyDateTimePart extracts the hyphenated date-time segment of a storage key,
// or "" when the key has none.
func keyDateTimePart(key string) string {
	for _, part := range strings.Split(key, "/") {
		if datePartRe.MatchString(part) && len(strings.Split(part, "-")) >= 6 {
			return part
		}
	}
	return ""
}

// canonicalFormattedTimestamp rewrites "2025-04-07 16-44-01" and
// "2025-04-07 16:44:01" to the fully hyphenated ingestion form.
func canonicalFormattedTimestamp(s string) string {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) != 2 {
		return s
	}
	return parts[0] + "-" + strings.ReplaceAll(parts[1], ":", "-")
}

// fillCalendarParts splits the formatted timestamp into the calendar
// components the grouping keys are built from.
func fillCalendarParts(sample *schema.HouseholdSample) {
	parts := strings.Split(sample.FormattedTimestamp, "-")
	if len(parts) < 3 {
		return
	}
	sample.Year, sample.Month, sample.Day = parts[0], parts[1], parts[2]
	sample.Date = strings.Join(parts[:3], "-")
	if len(parts) > 3 {
		sample.Hour = parts[3]
	}
}

// bucketKey derives the grouping key for the requested calendar granularity.
func bucketKey(sample schema.HouseholdSample, g schema.BucketGranularity) string {
	switch g {
	case schema.BucketYear:
		return sample.Year
	case schema.BucketMonth:
		return sample.Year + "-" + sample.Month
	case schema.BucketDate:
		return sample.Date
	case schema.BucketHour:
		return sample.Date + " " + sample.Hour + ":00"
	default: // timestamp
		return sample.FormattedTimestamp
	}
}

// bucketStats computes min/max/avg per metric over all samples of a bucket.
func bucketStats(samples []schema.HouseholdSample) schema.BucketStats {
	usage := lo.Map(samples, func(s schema.HouseholdSample, _ int) float64 { return s.ElectricityUsageKwh })
	voltage := lo.Map(samples, func(s schema.HouseholdSample, _ int) float64 { return s.Voltage })
	current := lo.Map(samples, func(s schema.HouseholdSample, _ int) float64 { return s.Current })

	return schema.BucketStats{
		ElectricityUsageKwh: fieldStats(usage),
		Voltage:             fieldStats(voltage),
		Current:             fieldStats(current),
	}
}

func fieldStats(values []float64) schema.FieldStats {
	if len(values) == 0 {
		return schema.FieldStats{}
	}
	return schema.FieldStats{
		Min: lo.Min(values),
		Max: lo.Max(values),
		Avg: lo.Sum(values) / float64(len(values)),
	}
}
