package hoard

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/sweep/internal/filter"
)

// OutputFormat specifies how to format the run list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table with one summary row per run
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete runs as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ListRuns retrieves the runs matching criteria and writes them to w in the
// requested format, oldest first.
func ListRuns(ctx context.Context, store Store, namespace string, format OutputFormat, criteria *filter.Criteria, w io.Writer) error {
	runs, err := store.List(ctx, criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch format {
	case OutputFormatDefault:
		if err := FormatTable(w, runs, namespace); err != nil {
			return fmt.Errorf("failed to format table output: %w", err)
		}
	case OutputFormatJSONL:
		if err := FormatJSONL(w, runs); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
