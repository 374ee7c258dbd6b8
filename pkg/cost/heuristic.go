package cost

import (
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/dyluth/sweep/pkg/typing"
)

// keyCost is the base cost of pressing each position.
var keyCost = [layout.NumKeys]float64{
	30, 24, 20, 22, 32, 32, 22, 20, 24, 30,
	16, 13, 11, 10, 29, 29, 10, 11, 13, 16,
	32, 26, 23, 16, 30, 30, 16, 23, 26, 32,
	16, 11, 11, 16,
}

const outwardPenalty = 1

// sameFingerHeld is the cost of pressing a key with a finger that is
// already holding another key down.
const sameFingerHeld = 255

// Heuristic scores typing with precomputed per-position tables: a base key
// cost, a cost for the transition from the previous key and a cost for each
// key held while another is tapped.
type Heuristic struct {
	nextKey [layout.NumKeys][layout.NumKeys]float64
	heldKey [layout.NumKeys][layout.NumKeys]float64
}

// NewHeuristic builds the transition tables.
func NewHeuristic() *Heuristic {
	h := &Heuristic{}
	for i := 0; i < layout.NumKeys; i++ {
		for j := 0; j < layout.NumKeys; j++ {
			h.nextKey[i][j] = float64(nextKeyCost(i, j))
			h.heldKey[i][j] = float64(heldKeyCost(i, j))
		}
	}
	return h
}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) CostOfTyping(events typing.Stream) (float64, int) {
	var held heldKeys
	prev := -1
	total := 0.0
	count := 0

	for {
		ev, ok := events.Next()
		if !ok {
			return total, count
		}
		switch ev.Kind {
		case typing.Tap:
			total += keyCost[ev.Pos]
			for _, k := range held {
				total += h.heldKey[k][ev.Pos]
			}
			if prev >= 0 {
				total += h.nextKey[prev][ev.Pos]
			}
			if ev.ForChar {
				count++
			}
			prev = ev.Pos
		case typing.Hold:
			held.push(ev.Pos)
			prev = -1
		case typing.Release:
			held.release(ev.Pos)
		case typing.Unknown:
			prev = -1
		}
	}
}

func (h *Heuristic) LayoutCost(al *layout.Annotated) float64 {
	return memorability(al)
}

func vertPenalty(f layout.Finger) int {
	switch f {
	case layout.Middle:
		return 2
	case layout.Index:
		return 3
	case layout.Ring:
		return 5
	case layout.Pinky:
		return 7
	default:
		return 10
	}
}

func horizPenalty(f layout.Finger) int {
	switch f {
	case layout.Middle:
		return 6
	case layout.Index:
		return 5
	case layout.Ring:
		return 8
	case layout.Pinky:
		return 12
	default:
		return 3
	}
}

func repeatStrength(f layout.Finger) int {
	switch f {
	case layout.Index:
		return 6
	case layout.Middle:
		return 7
	case layout.Ring:
		return 12
	case layout.Pinky:
		return 18
	default:
		return 10
	}
}

func holdStrength(f layout.Finger) int {
	switch f {
	case layout.Ring:
		return 8
	case layout.Pinky:
		return 10
	default:
		return 6
	}
}

// thumbFingerCost covers awkward thumb and finger combinations on one hand.
// Columns 1 and 2 are the inner thumb keys, 4 and 5 the stretched index
// columns, 3 and 6 the index home columns.
func thumbFingerCost(thumbCol, fingerCol, fingerRow int) (int, bool) {
	inner := thumbCol == 1 || thumbCol == 2
	centre := fingerCol == 4 || fingerCol == 5
	near := fingerCol == 3 || fingerCol == 6
	switch {
	case inner && centre && fingerRow <= 1:
		return 2, true
	case inner && centre && fingerRow == 2:
		return 3, true
	case inner && near && fingerRow == 2:
		return 2, true
	case !inner && centre && fingerRow <= 1:
		return 3, true
	case !inner && centre && fingerRow == 2:
		return 5, true
	case !inner && near && fingerRow == 2:
		return 2, true
	}
	return 0, false
}

// fingerToFingerCost is the same-hand, different-finger transition cost.
func fingerToFingerCost(from, to int) int {
	c0, c1 := layout.Col(from), layout.Col(to)
	d0, d1 := layout.DigitFor(from), layout.DigitFor(to)

	cost := 0
	if (d0.Hand() == layout.Left && c1 < c0) || (d0.Hand() == layout.Right && c1 > c0) {
		cost += outwardPenalty
	}
	if c0 == 4 || c0 == 5 || c1 == 4 || c1 == 5 {
		cost += 2
	}
	rowDist := abs(layout.Row(from) - layout.Row(to))
	return cost + LogNorm(rowDist*vertPenalty(d1.Finger()))
}

func nextKeyCost(from, to int) int {
	d0, d1 := layout.DigitFor(from), layout.DigitFor(to)
	f0, f1 := d0.Finger(), d1.Finger()

	switch {
	case d0 == d1:
		rowDist := abs(layout.Row(from) - layout.Row(to))
		colDist := abs(layout.Col(from) - layout.Col(to))
		sq := vertPenalty(f0)*rowDist*rowDist + horizPenalty(f0)*colDist*colDist
		return repeatStrength(f0) + LogNorm(sq)
	case d0.Hand() != d1.Hand():
		return 2
	case f0 == layout.Thumb:
		if c, ok := thumbFingerCost(layout.Col(from), layout.Col(to), layout.Row(to)); ok {
			return c
		}
		return outwardPenalty
	case f1 == layout.Thumb:
		c, _ := thumbFingerCost(layout.Col(to), layout.Col(from), layout.Row(from))
		return c
	default:
		return fingerToFingerCost(from, to)
	}
}

func heldKeyCost(held, pressed int) int {
	d0, d1 := layout.DigitFor(held), layout.DigitFor(pressed)
	f0, f1 := d0.Finger(), d1.Finger()
	strength := holdStrength(f0)

	switch {
	case d0 == d1:
		return sameFingerHeld
	case d0.Hand() != d1.Hand():
		return strength
	case f0 == layout.Thumb:
		if c, ok := thumbFingerCost(layout.Col(held), layout.Col(pressed), layout.Row(pressed)); ok {
			return strength + c
		}
		return strength + outwardPenalty
	case f1 == layout.Thumb:
		c, _ := thumbFingerCost(layout.Col(pressed), layout.Col(held), layout.Row(held))
		return strength + c
	default:
		return strength + fingerToFingerCost(held, pressed)
	}
}
