package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/corpus"
	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/pkg/cost"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	scoreModels []string
	scoreCorpus string
)

var scoreCmd = &cobra.Command{
	Use:   "score [LAYOUT_FILE...]",
	Short: "Score layouts against the corpus",
	Long: `Compute the typing cost of one or more layouts over the corpus.

The cost is the mean effort per typed character under a cost model plus the
model's layout term. Lower is better. When several layouts are given, each is
compared against the first.

Models:
  heuristic - hand-tuned finger, row and roll costs (default)
  measured  - costs derived from measured key press times
  simple    - counts layer and shift changes only
  all       - every model

With no arguments the configured starting layout is scored.

Examples:
  # Score the starting layout with the configured model
  sweep score

  # Compare the result of a run with the start under every model
  sweep score layout.json best.json --model all

  # Score against a different corpus
  sweep score best.json --corpus ~/writing`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringSliceVarP(&scoreModels, "model", "m", nil, "Cost models to use (repeatable; 'all' for every model)")
	scoreCmd.Flags().StringVar(&scoreCorpus, "corpus", "", "Corpus directory or file (overrides config)")
	rootCmd.AddCommand(scoreCmd)
}

// scorer evaluates layout files with a fixed corpus and set of models.
type scorer struct {
	corpus *corpus.Corpus
	models []string
}

// newScorer loads the corpus and resolves model names, with flags taking
// precedence over cfg.
func newScorer(cfg *config.SweepConfig, corpusFlag string, modelFlags []string) (*scorer, error) {
	models := modelFlags
	if len(models) == 0 {
		models = []string{cfg.Model}
	}
	if slices.Contains(models, "all") {
		models = cost.Names()
	}
	for _, name := range models {
		if _, err := cost.New(name); err != nil {
			return nil, printer.Error(
				"unknown cost model",
				err.Error(),
				[]string{"Use one of: heuristic, measured, simple, all"},
			)
		}
	}

	root := cfg.Corpus
	if corpusFlag != "" {
		root = corpusFlag
	}
	c, err := loadCorpus(root)
	if err != nil {
		return nil, err
	}
	return &scorer{corpus: c, models: models}, nil
}

func loadCorpus(root string) (*corpus.Corpus, error) {
	c, err := corpus.Load(root)
	if err != nil {
		context := map[string]string{"corpus": root}
		var fe *corpus.FileError
		if errors.As(err, &fe) {
			context["file"] = fe.Path
		}
		var ee *layout.EncodeError
		suggestions := []string{"Check the corpus path in sweep.yml or pass --corpus"}
		if errors.As(err, &ee) {
			suggestions = []string{"Corpus text must be representable in Windows-1252; remove or replace the character"}
		}
		return nil, printer.ErrorWithContext("failed to load corpus", err.Error(), context, suggestions)
	}
	return c, nil
}

// score returns one cost per model for the layout in path.
func (s *scorer) score(path string) ([]float64, error) {
	l, err := layout.ReadFile(path)
	if err != nil {
		return nil, err
	}
	al, err := layout.Annotate(l)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}

	costs := make([]float64, len(s.models))
	for i, name := range s.models {
		m, err := cost.New(name)
		if err != nil {
			return nil, err
		}
		costs[i] = cost.Cost(m, al, s.corpus.Texts)
	}
	return costs, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(len(args) == 0)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.Layout}
	}

	s, err := newScorer(cfg, scoreCorpus, scoreModels)
	if err != nil {
		return err
	}

	results := make([][]float64, len(paths))
	for i, path := range paths {
		costs, err := s.score(path)
		if err != nil {
			return printer.Error(
				fmt.Sprintf("cannot score %s", path),
				err.Error(),
				[]string{fmt.Sprintf("Check the layout:\n  sweep check %s", path)},
			)
		}
		results[i] = costs
	}

	printer.Info("Corpus: %d files, %d characters\n\n", len(s.corpus.Files), s.corpus.Chars())
	return writeScores(printer.Writer(), paths, s.models, results)
}

// writeScores prints one row per layout and model; later layouts show their
// change relative to the first.
func writeScores(w io.Writer, paths []string, models []string, results [][]float64) error {
	table := tablewriter.NewWriter(w)
	table.Header("LAYOUT", "MODEL", "COST", "VS FIRST")
	for i, path := range paths {
		for j, model := range models {
			change := ""
			if i > 0 {
				change = formatChange(results[0][j], results[i][j])
			}
			row := []string{path, model, fmt.Sprintf("%.4f", results[i][j]), change}
			if err := table.Append(row); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

// formatChange renders the relative change from base to v; negative is better.
func formatChange(base, v float64) string {
	if base == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%+.3f%%", 100*(v-base)/base)
}
