// Package timespec parses the --since and --until values of `sweep hoard`.
package timespec

import (
	"fmt"
	"time"
)

// now is replaced in tests.
var now = time.Now

// absoluteLayouts are tried in order before falling back to a duration.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse converts a time specification into Unix milliseconds.
//
// Absolute forms are RFC3339 ("2025-10-29T13:00:00Z"), a local timestamp
// without zone ("2025-10-29T13:00:00") or a local date ("2025-10-29").
// Anything else is read as a Go duration before now, so "90m" means ninety
// minutes ago.
func Parse(spec string) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, spec, time.Local); err == nil {
			return t.UnixMilli(), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration %s: durations count back from now", spec)
		}
		return now().Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '1h30m', a date like '2025-10-29' or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}

// ParseRange parses both --since and --until into a time range.
// Zero values indicate "no bound" for that end of the range.
func ParseRange(since, until string) (sinceMs, untilMs int64, err error) {
	if since != "" {
		if sinceMs, err = Parse(since); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if until != "" {
		if untilMs, err = Parse(until); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMs > 0 && untilMs > 0 && sinceMs >= untilMs {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}
	return sinceMs, untilMs, nil
}
