package hoard

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Redis stores runs as string-to-string hashes. Numbers are formatted so
// that they parse back to the same value; the layout is kept as its JSON.

// RunToHash converts a Run to a Redis hash.
func RunToHash(r *Run) map[string]interface{} {
	return map[string]interface{}{
		"id":               r.ID,
		"created_at_ms":    r.CreatedAtMs,
		"model":            r.Model,
		"mode":             r.Mode,
		"iterations":       r.Iterations,
		"k":                formatFloat(r.K),
		"half_life":        formatFloat(r.HalfLife),
		"max_unchanged":    r.MaxUnchanged,
		"temp_scale":       formatFloat(r.TempScale),
		"trials":           r.Trials,
		"seed":             r.Seed,
		"initial_energy":   formatFloat(r.InitialEnergy),
		"final_energy":     formatFloat(r.FinalEnergy),
		"improvement":      formatFloat(r.Improvement),
		"mean_improvement": formatFloat(r.MeanImprovement),
		"stddev":           formatFloat(r.StdDev),
		"mean_distance":    formatFloat(r.MeanDistance),
		"corpus_digest":    r.CorpusDigest,
		"fingerprint":      r.Fingerprint,
		"layout":           string(r.Layout),
	}
}

// HashToRun converts a Redis hash back to a Run.
func HashToRun(hash map[string]string) (*Run, error) {
	p := hashParser{hash: hash}
	r := &Run{
		ID:              hash["id"],
		CreatedAtMs:     p.int64("created_at_ms"),
		Model:           hash["model"],
		Mode:            hash["mode"],
		Iterations:      int(p.int64("iterations")),
		K:               p.float("k"),
		HalfLife:        p.float("half_life"),
		MaxUnchanged:    int(p.int64("max_unchanged")),
		TempScale:       p.float("temp_scale"),
		Trials:          int(p.int64("trials")),
		Seed:            p.int64("seed"),
		InitialEnergy:   p.float("initial_energy"),
		FinalEnergy:     p.float("final_energy"),
		Improvement:     p.float("improvement"),
		MeanImprovement: p.float("mean_improvement"),
		StdDev:          p.float("stddev"),
		MeanDistance:    p.float("mean_distance"),
		CorpusDigest:    hash["corpus_digest"],
		Fingerprint:     hash["fingerprint"],
		Layout:          json.RawMessage(hash["layout"]),
	}
	if p.err != nil {
		return nil, p.err
	}
	return r, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// hashParser records the first malformed field.
type hashParser struct {
	hash map[string]string
	err  error
}

func (p *hashParser) int64(field string) int64 {
	s, ok := p.hash[field]
	if !ok || s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s field: %w", field, err)
	}
	return v
}

func (p *hashParser) float(field string) float64 {
	s, ok := p.hash[field]
	if !ok || s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s field: %w", field, err)
	}
	return v
}
