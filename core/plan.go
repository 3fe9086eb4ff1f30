// Package core has the query engine: path planning, object fetching, record
// normalization, grid building, series merging and usage delta math.
package core

import (
	"fmt"
	"time"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// ObjectSuffix is the payload extension the chart and delta pipelines accept.
const ObjectSuffix = ".json"

// PlanEntry is one storage path to examine. A prefix entry means "scan all
// objects under this path"; a literal entry addresses exactly one object.
type PlanEntry struct {
	Path     string
	IsPrefix bool
}

// PlanObjectPaths maps a [device, range, granularity] query onto the ordered
// set of storage keys and prefixes to examine. The iteration walks calendar
// days on the UTC calendar from start's day through end's day inclusive.
//
// Layouts per granularity:
//
//	1d: one literal key per day        {device}/{date}.json
//	1h: one literal key per hour       {device}/{date}/{H}.json   (hour-object)
//	    one prefix per day             {device}/{date}/           (day-object)
//	1m: one prefix per hour            {device}/{date}/{H}/
//
// Hour enumeration is clamped to [startHour,23] on the first day and
// [0,endHour] on the last day; a same-day range intersects both bounds.
func PlanObjectPaths(deviceID string, start, end time.Time, g schema.Granularity, layout schema.HourLayout) ([]PlanEntry, error) {
	if deviceID == "" {
		return nil, schema.ErrMissingParams
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s > %s", schema.ErrInvalidRange,
			start.Format(contract.DateTimeFormat), end.Format(contract.DateTimeFormat))
	}
	if _, ok := schema.ValidGranularities[g]; !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedGranularity, g)
	}

	start, end = start.UTC(), end.UTC()
	endDate := end.Format(contract.DateFormat)

	var entries []PlanEntry
	seen := make(map[string]struct{})
	push := func(path string, isPrefix bool) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		entries = append(entries, PlanEntry{Path: path, IsPrefix: isPrefix})
	}

	switch g {
	case schema.GranularityDay:
		for day := dayStart(start); !day.After(end); day = day.AddDate(0, 0, 1) {
			push(fmt.Sprintf("%s/%s%s", deviceID, day.Format(contract.DateFormat), ObjectSuffix), false)
		}

	case schema.GranularityHour:
		if layout == schema.DayObjectLayout {
			for day := dayStart(start); !day.After(end); day = day.AddDate(0, 0, 1) {
				push(fmt.Sprintf("%s/%s/", deviceID, day.Format(contract.DateFormat)), true)
			}
			break
		}
		forEachHour(start, end, endDate, func(dateStr string, h int) {
			push(fmt.Sprintf("%s/%s/%d%s", deviceID, dateStr, h, ObjectSuffix), false)
		})

	case schema.GranularityMinute:
		forEachHour(start, end, endDate, func(dateStr string, h int) {
			push(fmt.Sprintf("%s/%s/%d/", deviceID, dateStr, h), true)
		})
	}

	return entries, nil
}

// forEachHour walks every in-range [date, hour] pair, clamping the hour range
// on the boundary days.
func forEachHour(start, end time.Time, endDate string, fn func(dateStr string, h int)) {
	cursor := start
	for !cursor.After(end) {
		dateStr := cursor.Format(contract.DateFormat)
		startHour := cursor.Hour()
		endHour := 23
		if dateStr == endDate {
			endHour = end.Hour()
		}
		for h := startHour; h <= endHour; h++ {
			fn(dateStr, h)
		}
		cursor = dayStart(cursor).AddDate(0, 0, 1)
	}
}

// dayStart truncates t to midnight UTC.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
