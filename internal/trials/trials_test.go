package trials

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/dyluth/sweep/internal/testutil"
	"github.com/dyluth/sweep/pkg/anneal"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	start := testutil.QwertyLayout(t)

	var mu sync.Mutex
	draws := map[int]int64{}
	run := func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error) {
		mu.Lock()
		draws[trial] = rng.Int63()
		mu.Unlock()
		return anneal.Result{Layout: start, Improvement: float64(trial)}, nil
	}

	s, err := Run(context.Background(), Config{Count: 4, Seed: 100, Workers: 2}, run)
	require.NoError(t, err)

	require.Len(t, s.Outcomes, 4)
	for i, o := range s.Outcomes {
		assert.Equal(t, i, o.Trial)
		assert.Equal(t, int64(100+i), o.Seed)
		assert.Equal(t, rand.New(rand.NewSource(int64(100+i))).Int63(), draws[i])
	}
	assert.Equal(t, 0, s.Discarded)
	assert.InDelta(t, 1.5, s.MeanImprovement, 1e-9)
	assert.InDelta(t, math.Sqrt(1.25), s.StdDev, 1e-9)
	assert.Equal(t, 0.0, s.MeanDistance)
	assert.Equal(t, 3, s.Best.Trial)
}

func TestRunDeadline(t *testing.T) {
	start := testutil.QwertyLayout(t)
	run := func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error) {
		if trial == 0 {
			return anneal.Result{Layout: start, Improvement: 7}, nil
		}
		<-ctx.Done()
		return anneal.Result{}, ctx.Err()
	}

	s, err := Run(context.Background(), Config{Count: 4, Workers: 4, Deadline: 50 * time.Millisecond}, run)
	require.NoError(t, err)
	require.Len(t, s.Outcomes, 1)
	assert.Equal(t, 3, s.Discarded)
	assert.Equal(t, 7.0, s.Best.Result.Improvement)

	t.Run("nothing finishes", func(t *testing.T) {
		slow := func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error) {
			<-ctx.Done()
			return anneal.Result{}, ctx.Err()
		}
		_, err := Run(context.Background(), Config{Count: 2, Deadline: 20 * time.Millisecond}, slow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no trial finished")
	})
}

func TestRunErrors(t *testing.T) {
	t.Run("trial failure aborts", func(t *testing.T) {
		boom := errors.New("boom")
		run := func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error) {
			if trial == 2 {
				return anneal.Result{}, boom
			}
			return anneal.Result{}, nil
		}
		_, err := Run(context.Background(), Config{Count: 5, Workers: 1}, run)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "trial 2")
	})

	t.Run("too constrained is reported", func(t *testing.T) {
		run := func(ctx context.Context, trial int, rng *rand.Rand) (anneal.Result, error) {
			return anneal.Result{}, &anneal.ConstrainedError{Stage: "first slot", Attempts: anneal.MaxAttempts}
		}
		_, err := Run(context.Background(), Config{Count: 1}, run)
		assert.ErrorIs(t, err, anneal.ErrTooConstrained)
	})

	t.Run("invalid count", func(t *testing.T) {
		_, err := Run(context.Background(), Config{}, nil)
		assert.Error(t, err)
	})
}

func TestSummarise(t *testing.T) {
	a := testutil.QwertyLayout(t)
	b := a.Clone()
	b.Layers[1][0], b.Layers[1][1] = b.Layers[1][1], b.Layers[1][0]
	require.Equal(t, 2, layout.HammingDist(a, b))

	s := Summarise([]Outcome{
		{Trial: 1, Result: anneal.Result{Layout: b, Improvement: 4}},
		{Trial: 0, Result: anneal.Result{Layout: a, Improvement: 2}},
	})
	assert.Equal(t, 0, s.Outcomes[0].Trial)
	assert.Equal(t, 3.0, s.MeanImprovement)
	assert.Equal(t, 1.0, s.StdDev)
	assert.Equal(t, 1.0, s.MeanDistance)
	assert.Equal(t, 1, s.Best.Trial)

	var buf bytes.Buffer
	require.NoError(t, s.WriteTable(&buf))
	assert.Contains(t, buf.String(), "TRIAL")
	assert.Contains(t, buf.String(), "layout MD = 1.00, mean = 3.000%")
}
