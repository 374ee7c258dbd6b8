// Package trials runs independent annealing runs from one starting layout
// in parallel and summarises how far and how consistently they improved it.
package trials

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/dyluth/sweep/pkg/anneal"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/olekukonko/tablewriter"
)

// RunFunc performs one trial. It must honour ctx and draw all randomness
// from rng.
type RunFunc func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error)

// Config controls how trials are scheduled.
type Config struct {
	Count int
	// Seed of trial i is Seed+i.
	Seed int64
	// Workers bounds concurrency; 0 means GOMAXPROCS.
	Workers int
	// Deadline, if positive, cancels unfinished trials after this long.
	Deadline time.Duration
}

// Outcome is one finished trial.
type Outcome struct {
	Trial    int
	Seed     int64
	Result   anneal.Result
	Duration time.Duration
}

// Summary aggregates the trials that finished in time.
type Summary struct {
	Outcomes []Outcome
	// Discarded counts trials cut off by the deadline.
	Discarded int
	// MeanImprovement and StdDev are over the completed trials' Improvement.
	MeanImprovement float64
	StdDev          float64
	// MeanDistance is the mean Hamming distance over all ordered pairs of
	// completed layouts, self pairs included.
	MeanDistance float64
	Best         Outcome
	Elapsed      time.Duration
}

type job struct {
	trial int
	seed  int64
}

// Run executes cfg.Count trials of run on a bounded pool of goroutines.
//
// Trials that return ctx's error after the deadline are discarded. Any other
// trial error aborts the batch once running trials stop. It is an error for
// no trial to finish.
func Run(ctx context.Context, cfg Config, run RunFunc) (*Summary, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("trial count must be >= 1, got %d", cfg.Count)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, cfg.Count)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Deadline > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(runCtx, cfg.Deadline)
		defer stop()
	}

	start := time.Now()
	log.Printf("[Trials] Starting %d trials on %d workers (seed %d)", cfg.Count, workers, cfg.Seed)

	jobs := make(chan job, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		jobs <- job{trial: i, seed: cfg.Seed + int64(i)}
	}
	close(jobs)

	var (
		mu        sync.Mutex
		outcomes  []Outcome
		discarded int
		firstErr  error
		wg        sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if runCtx.Err() != nil {
					mu.Lock()
					discarded++
					mu.Unlock()
					continue
				}

				began := time.Now()
				res, err := run(runCtx, j.trial, rand.New(rand.NewSource(j.seed)))
				elapsed := time.Since(began)

				mu.Lock()
				switch {
				case err == nil:
					outcomes = append(outcomes, Outcome{Trial: j.trial, Seed: j.seed, Result: res, Duration: elapsed})
					log.Printf("[Trials] Trial %d finished: improvement %.3f%% in %s", j.trial, res.Improvement, elapsed.Round(time.Millisecond))
				case runCtx.Err() != nil && errors.Is(err, runCtx.Err()):
					discarded++
					log.Printf("[Trials] Trial %d discarded after %s: %v", j.trial, elapsed.Round(time.Millisecond), err)
				default:
					if firstErr == nil {
						firstErr = fmt.Errorf("trial %d: %w", j.trial, err)
						cancel()
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("no trial finished before the %s deadline", cfg.Deadline)
	}

	s := Summarise(outcomes)
	s.Discarded = discarded
	s.Elapsed = time.Since(start)
	log.Printf("[Trials] %d trials completed, %d discarded, best improvement %.3f%%", len(outcomes), discarded, s.Best.Result.Improvement)
	return s, nil
}

// Summarise computes statistics over completed trials. Outcomes are
// reordered by trial number.
func Summarise(outcomes []Outcome) *Summary {
	s := &Summary{Outcomes: outcomes}
	if len(outcomes) == 0 {
		return s
	}
	slices.SortFunc(outcomes, func(a, b Outcome) int { return cmp.Compare(a.Trial, b.Trial) })

	n := float64(len(outcomes))
	var sum float64
	for _, o := range outcomes {
		sum += o.Result.Improvement
	}
	s.MeanImprovement = sum / n

	var variance float64
	for _, o := range outcomes {
		d := o.Result.Improvement - s.MeanImprovement
		variance += d * d
	}
	s.StdDev = math.Sqrt(variance / n)

	var dist int
	for _, a := range outcomes {
		for _, b := range outcomes {
			dist += layout.HammingDist(a.Result.Layout, b.Result.Layout)
		}
	}
	s.MeanDistance = float64(dist) / (n * n)

	s.Best = outcomes[0]
	for _, o := range outcomes[1:] {
		if o.Result.Improvement > s.Best.Result.Improvement {
			s.Best = o
		}
	}
	return s
}

// WriteTable renders one row per trial followed by the aggregate figures.
func (s *Summary) WriteTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("TRIAL", "SEED", "ITERATIONS", "INITIAL", "FINAL", "IMPROVEMENT", "TIME")
	for _, o := range s.Outcomes {
		row := []string{
			fmt.Sprintf("%d", o.Trial),
			fmt.Sprintf("%d", o.Seed),
			fmt.Sprintf("%d", o.Result.Iterations),
			fmt.Sprintf("%.4f", o.Result.InitialEnergy),
			fmt.Sprintf("%.4f", o.Result.FinalEnergy),
			fmt.Sprintf("%.3f%%", o.Result.Improvement),
			o.Duration.Round(time.Millisecond).String(),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "layout MD = %.2f, mean = %.3f%%, stddev = %.3f, best = %.3f%% (trial %d), discarded = %d, in %s\n",
		s.MeanDistance, s.MeanImprovement, s.StdDev, s.Best.Result.Improvement, s.Best.Trial, s.Discarded, s.Elapsed.Round(time.Millisecond))
	return err
}
