package anneal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/dyluth/sweep/internal/testutil"
	"github.com/dyluth/sweep/pkg/cost"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/dyluth/sweep/pkg/typing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	al := testutil.QwertyAnnotated(t)

	tests := []struct {
		name   string
		pins   Pins
		slot   layout.Slot
		expect PinClass
	}{
		{"space is pinned by default", DefaultPins(), layout.Slot{Layer: 0, Pos: 31}, PinnedPosition},
		{"layer key", DefaultPins(), layout.Slot{Layer: 0, Pos: 30}, PinnedLayer},
		{"shift key", DefaultPins(), layout.Slot{Layer: 0, Pos: 33}, PinnedLayer},
		{"letter under position policy", DefaultPins(), layout.Slot{Layer: 0, Pos: 0}, PinnedPosition},
		{"letter under layer policy", Pins{Alpha: AlphaLayer}, layout.Slot{Layer: 0, Pos: 0}, PinnedLayer},
		{"symbol", DefaultPins(), layout.Slot{Layer: 1, Pos: 0}, Free},
		{"empty key", DefaultPins(), layout.Slot{Layer: 2, Pos: 0}, Free},
		{"explicit pin beats layer key", Pins{Positions: []layout.Slot{{Layer: 0, Pos: 30}}}, layout.Slot{Layer: 0, Pos: 30}, PinnedPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.pins.Classify(al, tt.slot))
		})
	}

	t.Run("single layer relaxes layer pins", func(t *testing.T) {
		var l layout.Layout
		l.Layers = make([]layout.Layer, 1)
		l.Layers[0][33] = layout.ShiftKey()
		l.Layers[0][0] = layout.Typing(layout.KeyA)
		single, err := layout.Annotate(l)
		require.NoError(t, err)

		assert.Equal(t, Free, DefaultPins().Classify(single, layout.Slot{Layer: 0, Pos: 33}))
		assert.Equal(t, Free, Pins{Alpha: AlphaLayer}.Classify(single, layout.Slot{Layer: 0, Pos: 0}))
		assert.Equal(t, PinnedPosition, DefaultPins().Classify(single, layout.Slot{Layer: 0, Pos: 0}))
	})
}

func TestAlphaPolicyValid(t *testing.T) {
	assert.True(t, AlphaPosition.Valid())
	assert.True(t, AlphaLayer.Valid())
	assert.False(t, AlphaPolicy("anywhere").Valid())
}

func assertUndoRestores(t *testing.T, rng *rand.Rand, al *layout.Annotated, pins Pins) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		start := al.Clone()
		m, err := Generate(rng, al, pins)
		require.NoError(t, err)
		m.Apply(al)
		m.Undo(al)
		require.True(t, start.Equal(al), "mutation %s not undone correctly", m)
	}
}

func TestMutationUndo(t *testing.T) {
	for _, pins := range []Pins{DefaultPins(), {Alpha: AlphaLayer}} {
		t.Run(fmt.Sprintf("alpha %s", pins.Alpha), func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))

			t.Run("fresh layout", func(t *testing.T) {
				assertUndoRestores(t, rng, testutil.QwertyAnnotated(t), pins)
			})

			t.Run("shuffled layout", func(t *testing.T) {
				al := testutil.QwertyAnnotated(t)
				for i := 0; i < 1000; i++ {
					m, err := Generate(rng, al, pins)
					require.NoError(t, err)
					m.Apply(al)
				}
				require.NoError(t, al.CheckConsistent())
				assertUndoRestores(t, rng, al, pins)
			})
		})
	}
}

func TestGenerateRespectsPins(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	al := testutil.QwertyAnnotated(t)
	pins := Pins{Positions: []layout.Slot{{Layer: 0, Pos: 31}}, Alpha: AlphaLayer}

	sawNumLayout := false
	for i := 0; i < 2000; i++ {
		m, err := Generate(rng, al, pins)
		require.NoError(t, err)

		if m.Kind == SwapNumLayout {
			sawNumLayout = true
			assert.Equal(t, al.NumLayout(), m.From)
			assert.NotEqual(t, m.From, m.To)
		} else {
			ca, cb := pins.Classify(al, m.A), pins.Classify(al, m.B)
			assert.NotEqual(t, PinnedPosition, ca, "mutation %s", m)
			assert.NotEqual(t, PinnedPosition, cb, "mutation %s", m)
			if m.A.Layer != m.B.Layer {
				assert.NotEqual(t, PinnedLayer, ca, "mutation %s", m)
				assert.NotEqual(t, PinnedLayer, cb, "mutation %s", m)
			}
			assert.False(t, isDigit(al, m.A) || isDigit(al, m.B), "digit moved alone by %s", m)
			assert.NotEqual(t, al.Key(m.A), al.Key(m.B))
		}
		m.Apply(al)
	}
	assert.True(t, sawNumLayout)
	require.NoError(t, al.CheckConsistent())

	space, ok := al.Preferred(' ')
	require.True(t, ok)
	assert.Equal(t, layout.CharIdxEntry{Layer: 0, Pos: 31}, space)
}

func TestGenerateTooConstrained(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	t.Run("every slot pinned", func(t *testing.T) {
		al := testutil.QwertyAnnotated(t)
		var pins Pins
		for layer := 0; layer < al.NumLayers(); layer++ {
			for pos := 0; pos < layout.NumKeys; pos++ {
				pins.Positions = append(pins.Positions, layout.Slot{Layer: layer, Pos: pos})
			}
		}

		_, err := Generate(rng, al, pins)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTooConstrained))

		var cerr *ConstrainedError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "first slot", cerr.Stage)
		assert.Equal(t, MaxAttempts, cerr.Attempts)
	})

	t.Run("every free key identical", func(t *testing.T) {
		l := layout.Layout{Layers: make([]layout.Layer, 1)}
		al, err := layout.Annotate(l)
		require.NoError(t, err)

		_, err = Generate(rng, al, DefaultPins())
		var cerr *ConstrainedError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "distinct keys", cerr.Stage)
	})
}

func TestOptimiseFixed(t *testing.T) {
	start := testutil.QwertyLayout(t)
	corpus := testutil.Corpus(t)

	run := func(seed int64) Result {
		progress := 0
		res, err := OptimiseFixed(context.Background(), cost.NewHeuristic(), 200, 5, start, corpus, Options{
			TempScale: 0,
			Rand:      rand.New(rand.NewSource(seed)),
			Progress:  func(i int) { progress = i + 1 },
		})
		require.NoError(t, err)
		assert.Equal(t, 200, progress)
		return res
	}

	res := run(42)
	assert.Equal(t, 200, res.Iterations)
	assert.LessOrEqual(t, res.FinalEnergy, res.InitialEnergy)
	assert.GreaterOrEqual(t, res.Improvement, 0.0)

	al, err := layout.Annotate(res.Layout)
	require.NoError(t, err)
	assert.Equal(t, cost.Cost(cost.NewHeuristic(), al, corpus), res.FinalEnergy)

	t.Run("letters keep their positions", func(t *testing.T) {
		for pos := 0; pos < layout.FirstThumb; pos++ {
			if c, ok := start.Key(0, pos).TypedChar(false); ok && isAlpha(c) {
				assert.Equal(t, start.Key(0, pos), res.Layout.Key(0, pos))
			}
		}
	})

	t.Run("same seed same result", func(t *testing.T) {
		again := run(42)
		assert.True(t, res.Layout.Equal(again.Layout))
		assert.Equal(t, res.FinalEnergy, again.FinalEnergy)
	})
}

func TestOptimiseUntilStable(t *testing.T) {
	start := testutil.QwertyLayout(t)
	corpus := testutil.Corpus(t)

	res, err := OptimiseUntilStable(context.Background(), cost.NewSimple(), 30, 50, start, corpus, Options{
		TempScale: 0.01,
		Rand:      rand.New(rand.NewSource(9)),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Iterations, 30)

	_, err = layout.Annotate(res.Layout)
	require.NoError(t, err)
}

func TestOptimiseLog(t *testing.T) {
	start := testutil.QwertyLayout(t)
	corpus := testutil.Corpus(t)
	var buf bytes.Buffer

	res, err := OptimiseLog(context.Background(), cost.NewHeuristic(), 20, 50, start, corpus, &buf, Options{
		TempScale: 0.5,
		Rand:      rand.New(rand.NewSource(11)),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, res.Iterations+1)
	assert.Equal(t, "iteration,temperature,energy", lines[0])
	assert.Equal(t, fmt.Sprintf("0,%g,%g", res.InitialEnergy*0.5, res.InitialEnergy), lines[1])

	for i, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, fmt.Sprintf("%d,", i)), "row %d is %q", i, line)
	}
}

func TestOptimiseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := testutil.QwertyLayout(t)
	res, err := OptimiseFixed(ctx, cost.NewHeuristic(), 1000, 5, start, testutil.Corpus(t), Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Iterations)
	assert.True(t, start.Equal(res.Layout))
}

func TestOptimiseRejectsBadLayout(t *testing.T) {
	var l layout.Layout
	l.Layers = make([]layout.Layer, 1)
	l.Layers[0][5] = layout.LayerKey(3)

	_, err := OptimiseFixed(context.Background(), cost.NewHeuristic(), 10, 5, l, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to annotate starting layout")
}

// countdown scores every evaluation lower than the one before.
type countdown struct{ next float64 }

func (c *countdown) Name() string { return "countdown" }

func (c *countdown) CostOfTyping(typing.Stream) (float64, int) {
	c.next--
	return c.next, 1
}

func (c *countdown) LayoutCost(*layout.Annotated) float64 { return 0 }

func TestOptimiseAlwaysImproving(t *testing.T) {
	m := &countdown{next: 1000}
	corpus := [][]layout.Char{layout.MustEncode("a")}

	res, err := OptimiseFixed(context.Background(), m, 100, 5, testutil.QwertyLayout(t), corpus, Options{
		TempScale: 0.1,
		Rand:      rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, 999.0, res.InitialEnergy)
	assert.Less(t, res.FinalEnergy, res.InitialEnergy)
	assert.Greater(t, res.Improvement, 0.0)
}
