package anneal

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/dyluth/sweep/pkg/layout"
)

// MaxAttempts bounds every constrained random pick in Generate.
const MaxAttempts = 1000

// ErrTooConstrained is returned when the pins leave no legal mutation.
var ErrTooConstrained = errors.New("layout too constrained to mutate")

// ConstrainedError records which pick ran out of attempts.
type ConstrainedError struct {
	Stage    string
	Attempts int
}

func (e *ConstrainedError) Error() string {
	return fmt.Sprintf("%v: no candidate for %s after %d attempts", ErrTooConstrained, e.Stage, e.Attempts)
}

func (e *ConstrainedError) Unwrap() error { return ErrTooConstrained }

// MutationKind distinguishes the two mutation shapes.
type MutationKind uint8

const (
	// SwapKeys exchanges two slots.
	SwapKeys MutationKind = iota
	// SwapNumLayout moves the digits as a block to another placement.
	SwapNumLayout
)

// Mutation is one reversible change to an annotated layout.
type Mutation struct {
	Kind MutationKind
	// A and B are the exchanged slots of a SwapKeys mutation.
	A, B layout.Slot
	// From and To are the digit placements of a SwapNumLayout mutation.
	From, To int
}

func (m Mutation) String() string {
	if m.Kind == SwapNumLayout {
		return fmt.Sprintf("num layout %d -> %d", m.From, m.To)
	}
	return fmt.Sprintf("swap %s <-> %s", m.A, m.B)
}

// Apply performs the mutation.
func (m Mutation) Apply(al *layout.Annotated) {
	switch m.Kind {
	case SwapKeys:
		al.Swap(m.A, m.B)
	case SwapNumLayout:
		if al.NumLayout() != m.From {
			panic(fmt.Sprintf("apply %s: layout uses num layout %d", m, al.NumLayout()))
		}
		al.SwitchToNumLayout(m.To)
	}
}

// Undo reverses a mutation previously applied to al.
func (m Mutation) Undo(al *layout.Annotated) {
	switch m.Kind {
	case SwapKeys:
		al.Swap(m.A, m.B)
	case SwapNumLayout:
		if al.NumLayout() != m.To {
			panic(fmt.Sprintf("undo %s: layout uses num layout %d", m, al.NumLayout()))
		}
		al.SwitchToNumLayout(m.From)
	}
}

// Generate picks a random legal mutation that changes the layout.
//
// The first slot is any slot not pinned to its position. A digit there
// turns the mutation into a switch to a different digit placement. Otherwise
// the second slot honours the first slot's pin class: same layer for
// layer-pinned keys, same position for key-pinned keys, any free non-digit
// slot otherwise. Mutations that would swap two identical keys are redrawn.
func Generate(rng *rand.Rand, al *layout.Annotated, pins Pins) (Mutation, error) {
	for i := 0; i < MaxAttempts; i++ {
		m, err := generate(rng, al, pins)
		if err != nil {
			return Mutation{}, err
		}
		if m.Kind == SwapNumLayout || al.Key(m.A) != al.Key(m.B) {
			return m, nil
		}
	}
	return Mutation{}, &ConstrainedError{Stage: "distinct keys", Attempts: MaxAttempts}
}

func randomSlot(rng *rand.Rand, al *layout.Annotated) layout.Slot {
	return layout.Slot{Layer: rng.Intn(al.NumLayers()), Pos: rng.Intn(layout.NumKeys)}
}

// pick draws candidates until accept returns true.
func pick[T any](stage string, draw func() T, accept func(T) bool) (T, error) {
	for i := 0; i < MaxAttempts; i++ {
		v := draw()
		if accept(v) {
			return v, nil
		}
	}
	var zero T
	return zero, &ConstrainedError{Stage: stage, Attempts: MaxAttempts}
}

func generate(rng *rand.Rand, al *layout.Annotated, pins Pins) (Mutation, error) {
	a, err := pick("first slot",
		func() layout.Slot { return randomSlot(rng, al) },
		func(s layout.Slot) bool { return pins.Classify(al, s) != PinnedPosition })
	if err != nil {
		return Mutation{}, err
	}

	if isDigit(al, a) {
		to, err := pick("digit placement",
			func() int { return rng.Intn(layout.NumNumLayouts) },
			func(n int) bool { return n != al.NumLayout() })
		if err != nil {
			return Mutation{}, err
		}
		return Mutation{Kind: SwapNumLayout, From: al.NumLayout(), To: to}, nil
	}

	var draw func() layout.Slot
	var accept func(layout.Slot) bool
	switch pins.Classify(al, a) {
	case PinnedLayer:
		draw = func() layout.Slot { return layout.Slot{Layer: a.Layer, Pos: rng.Intn(layout.NumKeys)} }
		accept = func(s layout.Slot) bool {
			c := pins.Classify(al, s)
			return c != PinnedKey && c != PinnedPosition && !isDigit(al, s)
		}
	case PinnedKey:
		draw = func() layout.Slot { return layout.Slot{Layer: rng.Intn(al.NumLayers()), Pos: a.Pos} }
		accept = func(s layout.Slot) bool {
			c := pins.Classify(al, s)
			return c != PinnedLayer && c != PinnedPosition && !isDigit(al, s)
		}
	default:
		draw = func() layout.Slot { return randomSlot(rng, al) }
		accept = func(s layout.Slot) bool {
			return pins.Classify(al, s) == Free && !isDigit(al, s)
		}
	}
	b, err := pick("second slot", draw, accept)
	if err != nil {
		return Mutation{}, err
	}
	return Mutation{Kind: SwapKeys, A: a, B: b}, nil
}
