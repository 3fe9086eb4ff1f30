package core

import (
	"testing"
	"time"
)

// FuzzParseTimestampFromKey fuzzes key-derived timestamp parsing with
// arbitrary storage keys.
func FuzzParseTimestampFromKey(f *testing.F) {
	seeds := []string{
		"dev-1/2025-06-03.json",
		"dev-1/2025-06-03/7.json",
		"dev-1/2025-06-03/23/59.json",
		"dev-1/2025-06-03/24.json",
		"dev-1/2025-06-03/-1/30.json",
		"hh-2241/2025-04-07-15-50-25/part-00000",
		"",
		"///",
		"dev-1/not-a-date/5.json",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, key string) {
		ts, ok := parseTimestampFromKey(nil, key)
		if !ok {
			return
		}
		if ts.Location() != time.UTC {
			t.Errorf("parsed timestamp not UTC for key %q", key)
		}
		if h := ts.Hour(); h < 0 || h > 23 {
			t.Errorf("hour out of range for key %q: %d", key, h)
		}
		if m := ts.Minute(); m < 0 || m > 59 {
			t.Errorf("minute out of range for key %q: %d", key, m)
		}
	})
}
