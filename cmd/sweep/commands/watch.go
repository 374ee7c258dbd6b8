package commands

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchModels   []string
	watchCorpus   string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [LAYOUT_FILE]",
	Short: "Re-score a layout every time it is saved",
	Long: `Watch a layout file and print its cost each time it changes, with the
change since the previous save.

Useful while editing a layout by hand: save the file in your editor and see
straight away whether the edit helped. Invalid intermediate saves are
reported and skipped. Press Ctrl+C to stop.

With no argument the configured starting layout is watched.

Examples:
  # Watch the starting layout
  sweep watch

  # Watch an optimised layout under every model
  sweep watch best.json --model all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchModels, "model", "m", nil, "Cost models to use (repeatable; 'all' for every model)")
	watchCmd.Flags().StringVar(&watchCorpus, "corpus", "", "Corpus directory or file (overrides config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Wait this long after the last change before scoring")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(len(args) == 0)
	if err != nil {
		return err
	}
	path := cfg.Layout
	if len(args) > 0 {
		path = args[0]
	}

	s, err := newScorer(cfg, watchCorpus, watchModels)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := &rescorer{scorer: s, path: path}
	r.run()
	printer.Info("Watching %s (Ctrl+C to stop)\n", path)

	if err := watch.File(ctx, path, watchDebounce, r.run); err != nil {
		return printer.Error(fmt.Sprintf("cannot watch %s", path), err.Error(), nil)
	}
	return nil
}

// rescorer prints the cost of a layout file each time run is called,
// comparing with the last valid version.
type rescorer struct {
	scorer *scorer
	path   string
	last   []float64
}

func (r *rescorer) run() {
	costs, err := r.scorer.score(r.path)
	stamp := time.Now().Format("15:04:05")
	if err != nil {
		printer.Warning("%s %v\n", stamp, err)
		return
	}

	w := printer.Writer()
	for i, model := range r.scorer.models {
		change := ""
		if r.last != nil {
			change = "  " + formatChange(r.last[i], costs[i])
		}
		fmt.Fprintf(w, "%s %-10s %.4f%s\n", stamp, model, costs[i], change)
	}
	r.last = costs
}
