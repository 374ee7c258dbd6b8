package hoard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// FormatTable writes one row per run: short ID, age, model, schedule,
// trials, energies, improvement and the layout fingerprint.
func FormatTable(w io.Writer, runs []*Run, namespace string) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintf(w, "No runs found in namespace '%s'\n", namespace)
		return err
	}

	fmt.Fprintf(w, "Runs in namespace '%s':\n\n", namespace)

	table := tablewriter.NewWriter(w)
	table.Header("ID", "AGE", "MODEL", "SCHEDULE", "TRIALS", "INITIAL", "FINAL", "IMPROVEMENT", "LAYOUT")
	for _, r := range runs {
		row := []string{
			formatID(r.ID),
			formatTimestamp(r.CreatedAtMs),
			r.Model,
			formatSchedule(r),
			fmt.Sprintf("%d", r.Trials),
			fmt.Sprintf("%.4f", r.InitialEnergy),
			fmt.Sprintf("%.4f", r.FinalEnergy),
			fmt.Sprintf("%.3f%%", r.Improvement),
			formatID(r.Fingerprint),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	countMsg := "run"
	if len(runs) != 1 {
		countMsg = "runs"
	}
	_, err := fmt.Fprintf(w, "\n%d %s found\n", len(runs), countMsg)
	return err
}

// FormatJSONL writes runs as line-delimited JSON, one object per line.
func FormatJSONL(w io.Writer, runs []*Run) error {
	for _, r := range runs {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal run to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes a run as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, r *Run) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// formatID truncates IDs and fingerprints to 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatSchedule summarises the temperature schedule parameters.
func formatSchedule(r *Run) string {
	switch r.Mode {
	case "fixed":
		return fmt.Sprintf("fixed n=%d k=%g", r.Iterations, r.K)
	case "stable":
		return fmt.Sprintf("stable hl=%g max=%d", r.HalfLife, r.MaxUnchanged)
	default:
		return r.Mode
	}
}

// formatTimestamp formats Unix milliseconds as a relative age like "2m ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
