package hoard

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// GetRun retrieves a single run by full ID and writes it as pretty-printed
// JSON. Returns *RunNotFoundError if the run does not exist.
func GetRun(ctx context.Context, store Store, runID string, w io.Writer) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("invalid run ID format: must be a valid UUID")
	}

	r, err := store.Get(ctx, runID)
	if err != nil {
		if IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to fetch run: %w", err)
	}

	if err := FormatSingleJSON(w, r); err != nil {
		return fmt.Errorf("failed to format run: %w", err)
	}
	return nil
}
