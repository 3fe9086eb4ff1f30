package core

import (
	"fmt"
	"time"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

// BuildTimeGrid produces the ordered, strictly increasing sequence of aligned
// instants between start and end at the granularity's step. Both bounds are
// aligned downward before enumeration, so the first element is <= start and
// every element is <= end. An aligned start equal to the aligned end yields a
// single-point grid.
func BuildTimeGrid(start, end time.Time, g schema.Granularity) ([]time.Time, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s > %s", schema.ErrInvalidRange,
			start.Format(contract.DateTimeFormat), end.Format(contract.DateTimeFormat))
	}
	if _, ok := schema.ValidGranularities[g]; !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedGranularity, g)
	}

	cursor := g.Truncate(start)
	last := g.Truncate(end)
	step := g.Step()

	grid := make([]time.Time, 0, last.Sub(cursor)/step+1)
	for !cursor.After(last) {
		grid = append(grid, cursor)
		cursor = cursor.Add(step)
	}
	return grid, nil
}
