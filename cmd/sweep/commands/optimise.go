package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/corpus"
	"github.com/dyluth/sweep/internal/hoard"
	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/internal/trials"
	"github.com/dyluth/sweep/pkg/anneal"
	"github.com/dyluth/sweep/pkg/cost"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/spf13/cobra"
)

// progressEvery is how often a trial logs its iteration count.
const progressEvery = 10_000

var (
	optModel      string
	optMode       string
	optIterations int
	optTrials     int
	optSeed       int64
	optDeadline   string
	optWorkers    int
	optOutput     string
	optLog        string
	optNoSave     bool
)

var optimiseCmd = &cobra.Command{
	Use:     "optimise",
	Aliases: []string{"optimize"},
	Short:   "Search for a better layout by simulated annealing",
	Long: `Improve the starting layout by simulated annealing against the corpus.

Independent trials start from the same layout with consecutive seeds and run
in parallel. The best result is written to the output file and, unless the
store backend is 'none', recorded as a run for 'sweep hoard'.

Schedules:
  fixed  - exactly --iterations steps with exponentially decaying temperature
  stable - temperature halves every half_life steps; stops once max_unchanged
           consecutive steps leave the layout alone

Flags override the values in sweep.yml.

Examples:
  # Run the configured optimisation
  sweep optimise

  # Quick reproducible run with four trials
  sweep optimise --iterations 20000 --trials 4 --seed 1

  # Run until stable, logging the energy of the first trial
  sweep optimise --mode stable --log energy.csv

  # Stop waiting for slow trials after ten minutes
  sweep optimise --deadline 10m`,
	Args: cobra.NoArgs,
	RunE: runOptimise,
}

func init() {
	optimiseCmd.Flags().StringVarP(&optModel, "model", "m", "", "Cost model: heuristic, measured or simple")
	optimiseCmd.Flags().StringVar(&optMode, "mode", "", "Schedule: fixed or stable")
	optimiseCmd.Flags().IntVarP(&optIterations, "iterations", "n", 0, "Steps per trial (fixed schedule)")
	optimiseCmd.Flags().IntVarP(&optTrials, "trials", "t", 0, "Number of independent trials")
	optimiseCmd.Flags().Int64Var(&optSeed, "seed", 0, "Seed of the first trial (0 seeds from the clock)")
	optimiseCmd.Flags().StringVar(&optDeadline, "deadline", "", "Discard trials still running after this duration")
	optimiseCmd.Flags().IntVar(&optWorkers, "workers", 0, "Trials run at once (0 = one per CPU)")
	optimiseCmd.Flags().StringVarP(&optOutput, "output", "o", "", "File the best layout is written to")
	optimiseCmd.Flags().StringVar(&optLog, "log", "", "CSV file for the first trial's energy per step (stable schedule)")
	optimiseCmd.Flags().BoolVar(&optNoSave, "no-save", false, "Do not record the run in the store")
	rootCmd.AddCommand(optimiseCmd)
}

func runOptimise(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if err := applyOptimiseFlags(cmd, cfg); err != nil {
		return printer.Error("invalid option", err.Error(), []string{"See 'sweep optimise --help' for the accepted values"})
	}

	c, err := loadCorpus(cfg.Corpus)
	if err != nil {
		return err
	}
	start, err := layout.ReadFile(cfg.Layout)
	if err != nil {
		return printer.Error(
			"cannot load the starting layout",
			err.Error(),
			[]string{fmt.Sprintf("Check the layout:\n  sweep check %s", cfg.Layout)},
		)
	}
	if _, err := layout.Annotate(start); err != nil {
		return printer.Error("the starting layout cannot be optimised", err.Error(), nil)
	}

	seed := cfg.Trials.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	printer.Step("Optimising %s with the %s model: %d trials, %s schedule, %d characters of corpus\n",
		cfg.Layout, cfg.Model, cfg.Trials.Count, cfg.Schedule.Mode, c.Chars())

	summary, err := trials.Run(ctx, trials.Config{
		Count:    cfg.Trials.Count,
		Seed:     seed,
		Workers:  cfg.Trials.Workers,
		Deadline: cfg.Deadline(),
	}, trialRunner(cfg, start, c))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return printer.Error("optimisation interrupted", "No result was written.", nil)
		}
		if errors.Is(err, anneal.ErrTooConstrained) {
			return printer.Error(
				"layout is too constrained to optimise",
				err.Error(),
				[]string{"Pin fewer positions in sweep.yml", "Use pins.alpha: layer to let letters move"},
			)
		}
		return printer.Error("optimisation failed", err.Error(), nil)
	}

	printer.Info("\n")
	if err := summary.WriteTable(printer.Writer()); err != nil {
		return err
	}

	best := summary.Best.Result
	if err := layout.WriteFile(cfg.Output, best.Layout); err != nil {
		return printer.Error("cannot write the best layout", err.Error(), nil)
	}
	printer.Success("Best layout (%.3f%% better) written to %s\n", best.Improvement, cfg.Output)

	if optNoSave || cfg.Store.Backend == config.BackendNone {
		return nil
	}
	id, err := recordRun(cmd.Context(), cfg, seed, c, summary)
	if err != nil {
		// The layout is already on disk, so a store failure is not fatal
		printer.Warning("run not recorded: %v\n", err)
		return nil
	}
	printer.Info("Run recorded as %s (sweep hoard %s)\n", id[:8], id[:8])
	return nil
}

// applyOptimiseFlags copies explicitly set flags over cfg and revalidates it.
func applyOptimiseFlags(cmd *cobra.Command, cfg *config.SweepConfig) error {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = optModel
	}
	if flags.Changed("mode") {
		cfg.Schedule.Mode = optMode
	}
	if flags.Changed("iterations") {
		cfg.Schedule.Iterations = optIterations
	}
	if flags.Changed("trials") {
		cfg.Trials.Count = optTrials
	}
	if flags.Changed("seed") {
		cfg.Trials.Seed = optSeed
	}
	if flags.Changed("deadline") {
		cfg.Trials.Deadline = optDeadline
	}
	if flags.Changed("workers") {
		cfg.Trials.Workers = optWorkers
	}
	if flags.Changed("output") {
		cfg.Output = optOutput
	}
	if flags.Changed("log") {
		cfg.Schedule.Log = optLog
	}
	return cfg.Validate()
}

// trialRunner builds the function each trial runs. Every trial gets its own
// model instance; the first trial of a stable schedule writes the energy log
// when one is configured.
func trialRunner(cfg *config.SweepConfig, start layout.Layout, c *corpus.Corpus) trials.RunFunc {
	s := cfg.Schedule
	pins := cfg.AnnealPins()

	return func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error) {
		m, err := cost.New(cfg.Model)
		if err != nil {
			return anneal.Result{}, err
		}
		opts := anneal.Options{
			TempScale: s.TempScale,
			Pins:      pins,
			Rand:      rng,
			Progress: func(i int) {
				if i > 0 && i%progressEvery == 0 {
					log.Printf("[Anneal] Trial %d at iteration %d", trial, i)
				}
			},
		}

		if s.Mode == config.ModeFixed {
			return anneal.OptimiseFixed(ctx, m, s.Iterations, s.K, start, c.Texts, opts)
		}
		if trial != 0 || s.Log == "" {
			return anneal.OptimiseUntilStable(ctx, m, s.MaxUnchanged, s.HalfLife, start, c.Texts, opts)
		}

		f, err := os.Create(s.Log)
		if err != nil {
			return anneal.Result{}, fmt.Errorf("failed to create energy log: %w", err)
		}
		res, err := anneal.OptimiseLog(ctx, m, s.MaxUnchanged, s.HalfLife, start, c.Texts, f, opts)
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close energy log: %w", cerr)
		}
		return res, err
	}
}

// recordRun stores the run summary and returns its ID.
func recordRun(ctx context.Context, cfg *config.SweepConfig, seed int64, c *corpus.Corpus, summary *trials.Summary) (string, error) {
	store, err := hoard.Open(ctx, cfg.Store)
	if err != nil {
		return "", err
	}
	defer store.Close()

	best := summary.Best.Result
	run, err := hoard.NewRun(cfg.Model, cfg.Schedule.Mode, best.Layout)
	if err != nil {
		return "", err
	}
	s := cfg.Schedule
	if s.Mode == config.ModeFixed {
		run.Iterations = s.Iterations
		run.K = s.K
	} else {
		run.HalfLife = s.HalfLife
		run.MaxUnchanged = s.MaxUnchanged
	}
	run.TempScale = s.TempScale
	run.Trials = len(summary.Outcomes)
	run.Seed = seed
	run.InitialEnergy = best.InitialEnergy
	run.FinalEnergy = best.FinalEnergy
	run.Improvement = best.Improvement
	run.MeanImprovement = summary.MeanImprovement
	run.StdDev = summary.StdDev
	run.MeanDistance = summary.MeanDistance
	run.CorpusDigest = c.Digest

	if err := store.Save(ctx, run); err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return run.ID, nil
}
