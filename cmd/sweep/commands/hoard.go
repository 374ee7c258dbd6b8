package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/filter"
	"github.com/dyluth/sweep/internal/hoard"
	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/internal/resolver"
	"github.com/dyluth/sweep/internal/timespec"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/spf13/cobra"
)

var (
	hoardOutputFormat string
	hoardSince        string
	hoardUntil        string
	hoardModel        string
	hoardMode         string
	hoardFollow       bool
	hoardLayoutOnly   bool
)

var hoardCmd = &cobra.Command{
	Use:   "hoard [RUN_ID]",
	Short: "Inspect recorded optimisation runs",
	Long: `Inspect recorded optimisation runs in list or get mode.

List Mode (no RUN_ID):
  Displays runs matching filters as a table or JSONL stream, oldest first.

Get Mode (with RUN_ID):
  Displays the complete record of a single run as pretty-printed JSON.
  Supports short IDs (e.g., "3f2a9c" instead of the full UUID).

Output Formats (list mode only):
  default - Human-readable table with ID, model, schedule and improvement
  jsonl   - Line-delimited JSON, one run per line

Time Filters (list mode only):
  --since  - Show runs recorded after this time
  --until  - Show runs recorded before this time

Content Filters (list mode only):
  --model  - Filter by cost model (glob pattern: "meas*")
  --mode   - Filter by schedule (exact match: "fixed", "stable")

Examples:
  # List all runs
  sweep hoard

  # Runs of the measured model from the last day
  sweep hoard --model=measured --since=24h

  # Best improvement of every run, via jq
  sweep hoard --output=jsonl | jq '.improvement'

  # Restore the layout of an earlier run
  sweep hoard 3f2a9c --layout > layout.json

  # Print runs as other optimisations finish (redis backend)
  sweep hoard --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHoard,
}

func init() {
	hoardCmd.Flags().StringVarP(&hoardOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")

	// Time-based filters
	hoardCmd.Flags().StringVar(&hoardSince, "since", "", "Show runs after time (duration or RFC3339)")
	hoardCmd.Flags().StringVar(&hoardUntil, "until", "", "Show runs before time (duration or RFC3339)")

	// Content-based filters
	hoardCmd.Flags().StringVar(&hoardModel, "model", "", "Filter by cost model (glob pattern)")
	hoardCmd.Flags().StringVar(&hoardMode, "mode", "", "Filter by schedule mode (exact match)")

	hoardCmd.Flags().BoolVarP(&hoardFollow, "follow", "f", false, "Keep running and print new runs as they are recorded (redis only)")
	hoardCmd.Flags().BoolVar(&hoardLayoutOnly, "layout", false, "Get mode: print only the run's layout file")

	rootCmd.AddCommand(hoardCmd)
}

func runHoard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	isGetMode := len(args) > 0

	// Validate output format (only applies to list mode)
	var outputFormat hoard.OutputFormat
	if !isGetMode {
		switch hoardOutputFormat {
		case "default":
			outputFormat = hoard.OutputFormatDefault
		case "jsonl":
			outputFormat = hoard.OutputFormatJSONL
		default:
			return printer.Error(
				"invalid output format",
				fmt.Sprintf("Unknown format: %s", hoardOutputFormat),
				[]string{"Valid formats: default, jsonl"},
			)
		}
	}

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	store, err := hoard.Open(ctx, cfg.Store)
	if err != nil {
		if errors.Is(err, hoard.ErrNoStore) {
			return printer.Error(
				"no run store configured",
				"Runs are only recorded when store.backend is 'redis' or 'sqlite'.",
				[]string{"Enable the local store in sweep.yml:\n  store:\n    backend: sqlite\n    path: .sweep/runs.db"},
			)
		}
		return printer.ErrorWithContext(
			"cannot open the run store",
			err.Error(),
			map[string]string{"backend": cfg.Store.Backend},
			nil,
		)
	}
	defer store.Close()

	if isGetMode {
		return hoardGet(ctx, store, args[0])
	}

	sinceMS, untilMS, err := timespec.ParseRange(hoardSince, hoardUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use duration format like '1h30m' or RFC3339 like '2025-10-29T13:00:00Z'"},
		)
	}

	criteria := &filter.Criteria{
		SinceTimestampMs: sinceMS,
		UntilTimestampMs: untilMS,
		ModelGlob:        hoardModel,
		Mode:             hoardMode,
	}

	if err := hoard.ListRuns(ctx, store, storeLabel(cfg.Store), outputFormat, criteria, printer.Writer()); err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if hoardFollow {
		return hoardTail(ctx, store, outputFormat, criteria)
	}
	return nil
}

func hoardGet(ctx context.Context, store hoard.Store, shortID string) error {
	fullID, err := resolver.ResolveRunID(ctx, store, shortID)
	if err != nil {
		if resolver.IsNotFoundError(err) {
			return printer.Error(
				fmt.Sprintf("run with ID '%s' not found", shortID),
				"The specified run is not in the store.",
				[]string{"List all runs:\n  sweep hoard"},
			)
		}
		if resolver.IsAmbiguousError(err) {
			ambigErr := err.(*resolver.AmbiguousError)
			fmt.Fprintln(os.Stderr, resolver.FormatAmbiguousError(ambigErr))
			return printer.Error("ambiguous short ID", "", nil)
		}
		return fmt.Errorf("failed to resolve run ID: %w", err)
	}

	if hoardLayoutOnly {
		r, err := store.Get(ctx, fullID)
		if err != nil {
			return fmt.Errorf("failed to get run: %w", err)
		}
		l, err := r.DecodeLayout()
		if err != nil {
			return fmt.Errorf("stored layout is invalid: %w", err)
		}
		return writeLayout(l)
	}

	if err := hoard.GetRun(ctx, store, fullID, printer.Writer()); err != nil {
		if hoard.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("run with ID '%s' not found", fullID),
				"The run was resolved but could not be fetched.",
				[]string{"This might indicate a race condition. Try again."},
			)
		}
		return fmt.Errorf("failed to get run: %w", err)
	}
	return nil
}

// hoardTail prints runs saved after the listing until interrupted.
func hoardTail(ctx context.Context, store hoard.Store, format hoard.OutputFormat, criteria *filter.Criteria) error {
	rs, ok := store.(*hoard.RedisStore)
	if !ok {
		return printer.Error(
			"--follow needs the redis backend",
			"Only the redis store announces new runs.",
			[]string{"Set store.backend: redis in sweep.yml"},
		)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sub, err := rs.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to follow runs: %w", err)
	}
	defer sub.Close()

	if format == hoard.OutputFormatDefault {
		printer.Info("\nWaiting for new runs (Ctrl+C to stop)...\n")
	}

	w := printer.Writer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if !criteria.Matches(r) {
				continue
			}
			var err error
			if format == hoard.OutputFormatJSONL {
				err = hoard.FormatJSONL(w, []*hoard.Run{r})
			} else {
				err = hoard.FormatTable(w, []*hoard.Run{r}, rs.Namespace())
			}
			if err != nil {
				return err
			}
		case err, ok := <-sub.Errors():
			if ok {
				printer.Warning("%v\n", err)
			}
		}
	}
}

// storeLabel names the store in list headings.
func storeLabel(s *config.StoreConfig) string {
	if s.Backend == config.BackendSQLite {
		return s.Path
	}
	return s.Namespace
}

// writeLayout prints a layout in file format.
func writeLayout(l layout.Layout) error {
	data, err := layout.Marshal(l)
	if err != nil {
		return err
	}
	_, err = printer.Writer().Write(data)
	return err
}
