// Package hoard persists optimisation run records and renders them for the
// CLI. Records live in Redis or in an embedded SQLite database behind the
// same Store interface.
package hoard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/google/uuid"
)

// Run is the record of one `sweep optimise` invocation.
type Run struct {
	ID          string `json:"id"`
	CreatedAtMs int64  `json:"created_at_ms"`

	Model        string  `json:"model"`
	Mode         string  `json:"mode"` // "fixed" or "stable"
	Iterations   int     `json:"iterations,omitempty"`
	K            float64 `json:"k,omitempty"`
	HalfLife     float64 `json:"half_life,omitempty"`
	MaxUnchanged int     `json:"max_unchanged,omitempty"`
	TempScale    float64 `json:"temp_scale"`
	Trials       int     `json:"trials"`
	Seed         int64   `json:"seed"`

	InitialEnergy   float64 `json:"initial_energy"`
	FinalEnergy     float64 `json:"final_energy"`
	Improvement     float64 `json:"improvement"`
	MeanImprovement float64 `json:"mean_improvement"`
	StdDev          float64 `json:"stddev"`
	MeanDistance    float64 `json:"mean_distance"`

	CorpusDigest string          `json:"corpus_digest"`
	Fingerprint  string          `json:"fingerprint"`
	Layout       json.RawMessage `json:"layout"`
}

// NewRun creates a record with a fresh ID and timestamp for the best layout
// of a run.
func NewRun(model, mode string, best layout.Layout) (*Run, error) {
	data, err := json.Marshal(best)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return &Run{
		ID:          uuid.NewString(),
		CreatedAtMs: time.Now().UnixMilli(),
		Model:       model,
		Mode:        mode,
		Fingerprint: layout.Fingerprint(best),
		Layout:      data,
	}, nil
}

// Validate checks the record before it is stored.
func (r *Run) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("id must be a valid UUID: %w", err)
	}
	if r.CreatedAtMs <= 0 {
		return fmt.Errorf("created_at_ms must be set")
	}
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.Mode != "fixed" && r.Mode != "stable" {
		return fmt.Errorf("invalid mode: %s (must be 'fixed' or 'stable')", r.Mode)
	}
	if len(r.Layout) == 0 || !json.Valid(r.Layout) {
		return fmt.Errorf("layout must be valid JSON")
	}
	return nil
}

// DecodeLayout parses the stored best layout.
func (r *Run) DecodeLayout() (layout.Layout, error) {
	return layout.Parse(r.Layout)
}

// CreatedAt implements filter.Record.
func (r *Run) CreatedAt() int64 { return r.CreatedAtMs }

// ModelName implements filter.Record.
func (r *Run) ModelName() string { return r.Model }

// ScheduleMode implements filter.Record.
func (r *Run) ScheduleMode() string { return r.Mode }
