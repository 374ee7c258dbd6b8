// Package anneal searches for low-cost layouts by simulated annealing.
//
// Each run mutates a private annotated copy of the starting layout, scores
// it with a cost model and accepts or rejects the change with the Metropolis
// criterion. Runs are sequential; independent runs share only the corpus.
package anneal

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/dyluth/sweep/pkg/cost"
	"github.com/dyluth/sweep/pkg/layout"
)

// Options are the knobs shared by every schedule.
type Options struct {
	// TempScale sets the initial temperature as a fraction of the
	// starting energy.
	TempScale float64
	// Pins constrains mutations. The zero value means DefaultPins.
	Pins Pins
	// Rand drives mutation and acceptance. Nil seeds from the clock.
	Rand *rand.Rand
	// Progress, if set, is called with the iteration number before each
	// step. It must not retain or modify anything owned by the run.
	Progress func(iteration int)
}

// Result describes a finished run.
type Result struct {
	Layout        layout.Layout
	InitialEnergy float64
	FinalEnergy   float64
	Iterations    int
	// Improvement is 100*(initial-final)/initial.
	Improvement float64
}

type annealer struct {
	model   cost.Model
	corpus  [][]layout.Char
	al      *layout.Annotated
	pins    Pins
	rng     *rand.Rand
	initial float64
	energy  float64
	t0      float64
}

type outcome uint8

const (
	improved outcome = iota
	unchanged
	acceptedWorse
	rejected
)

func newAnnealer(m cost.Model, start layout.Layout, corpus [][]layout.Char, opts Options) (*annealer, error) {
	al, err := layout.Annotate(start)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate starting layout: %w", err)
	}
	pins := opts.Pins
	if pins.Positions == nil && pins.Alpha == "" {
		pins = DefaultPins()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := cost.Cost(m, al, corpus)
	return &annealer{
		model:   m,
		corpus:  corpus,
		al:      al,
		pins:    pins,
		rng:     rng,
		initial: e,
		energy:  e,
		t0:      e * opts.TempScale,
	}, nil
}

// step applies one mutation and keeps or undoes it at the given temperature.
func (a *annealer) step(temperature float64) (outcome, error) {
	m, err := Generate(a.rng, a.al, a.pins)
	if err != nil {
		return rejected, err
	}
	m.Apply(a.al)
	next := cost.Cost(a.model, a.al, a.corpus)
	switch {
	case next < a.energy:
		a.energy = next
		return improved, nil
	case next == a.energy:
		return unchanged, nil
	}
	p := math.Exp((a.energy - next) / temperature)
	if a.rng.Float64() < p {
		a.energy = next
		return acceptedWorse, nil
	}
	m.Undo(a.al)
	return rejected, nil
}

func (a *annealer) result(iterations int) Result {
	improvement := 0.0
	if a.initial != 0 {
		improvement = 100 * (a.initial - a.energy) / a.initial
	}
	return Result{
		Layout:        a.al.Layout(),
		InitialEnergy: a.initial,
		FinalEnergy:   a.energy,
		Iterations:    iterations,
		Improvement:   improvement,
	}
}

// OptimiseFixed runs exactly n steps with temperature t0*exp(-k*i/n).
// If ctx ends early the layout reached so far is returned with ctx.Err().
func OptimiseFixed(ctx context.Context, m cost.Model, n int, k float64, start layout.Layout, corpus [][]layout.Char, opts Options) (Result, error) {
	a, err := newAnnealer(m, start, corpus, opts)
	if err != nil {
		return Result{}, err
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return a.result(i), err
		}
		if opts.Progress != nil {
			opts.Progress(i)
		}
		temperature := a.t0 * math.Exp(-k*float64(i)/float64(n))
		if _, err := a.step(temperature); err != nil {
			return a.result(i), err
		}
	}
	return a.result(n), nil
}

// OptimiseUntilStable runs with temperature t0*2^(-i/halfLife) until
// maxUnchanged consecutive steps fail to change the energy.
func OptimiseUntilStable(ctx context.Context, m cost.Model, maxUnchanged int, halfLife float64, start layout.Layout, corpus [][]layout.Char, opts Options) (Result, error) {
	return untilStable(ctx, m, maxUnchanged, halfLife, start, corpus, opts, nil)
}

// OptimiseLog is OptimiseUntilStable that also writes one CSV row of
// iteration, temperature and current energy to w before every step.
func OptimiseLog(ctx context.Context, m cost.Model, maxUnchanged int, halfLife float64, start layout.Layout, corpus [][]layout.Char, w io.Writer, opts Options) (Result, error) {
	if _, err := fmt.Fprintln(w, "iteration,temperature,energy"); err != nil {
		return Result{}, fmt.Errorf("failed to write log header: %w", err)
	}
	return untilStable(ctx, m, maxUnchanged, halfLife, start, corpus, opts, w)
}

func untilStable(ctx context.Context, m cost.Model, maxUnchanged int, halfLife float64, start layout.Layout, corpus [][]layout.Char, opts Options, w io.Writer) (Result, error) {
	a, err := newAnnealer(m, start, corpus, opts)
	if err != nil {
		return Result{}, err
	}
	count := 0
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return a.result(i), err
		}
		if opts.Progress != nil {
			opts.Progress(i)
		}
		temperature := a.t0 * math.Exp2(-float64(i)/halfLife)
		if w != nil {
			if _, err := fmt.Fprintf(w, "%d,%g,%g\n", i, temperature, a.energy); err != nil {
				return a.result(i), fmt.Errorf("failed to write log row: %w", err)
			}
		}
		out, err := a.step(temperature)
		if err != nil {
			return a.result(i), err
		}
		switch out {
		case improved, acceptedWorse:
			count = 0
		case unchanged, rejected:
			count++
		}
		if count >= maxUnchanged {
			return a.result(i + 1), nil
		}
	}
}
