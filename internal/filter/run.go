package filter

import (
	"path/filepath"
)

// Record is anything the criteria can be evaluated against.
type Record interface {
	CreatedAt() int64 // Unix milliseconds
	ModelName() string
	ScheduleMode() string
}

// Criteria defines filtering criteria for stored optimisation runs.
// All filters are ANDed together - a run must match ALL criteria to pass.
type Criteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	ModelGlob        string // Glob pattern for the cost model name, empty = no filter
	Mode             string // Exact schedule mode ("fixed" or "stable"), empty = no filter
}

// Matches returns true if the record matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(r Record) bool {
	if c == nil {
		return true
	}

	ts := r.CreatedAt()
	if c.SinceTimestampMs > 0 && ts < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && ts > c.UntilTimestampMs {
		return false
	}

	if c.ModelGlob != "" {
		matched, err := filepath.Match(c.ModelGlob, r.ModelName())
		if err != nil || !matched {
			return false
		}
	}

	if c.Mode != "" && r.ScheduleMode() != c.Mode {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c != nil && (c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.ModelGlob != "" ||
		c.Mode != "")
}
