package cost

import (
	"math"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/dyluth/sweep/pkg/typing"
)

// Physical constants for the measured model. Distances are millimetres.
const (
	horizSep = 18.0
	vertSep  = 17.0

	distCost        = 2.5
	holdCost        = 0.5
	holdSameHand    = 0.5
	holdSameFinger  = 100.0
	repeatPenalty   = 3.0
	repeatFalloff   = 2.0
	repeatLookback  = 3
	measuredLayoutW = 6.0
)

// restingPos is where each digit sits when idle, as (row, col).
var restingPos = [layout.NumDigits][2]int{
	layout.LeftPinky:   {1, 0},
	layout.LeftRing:    {1, 1},
	layout.LeftMiddle:  {1, 2},
	layout.LeftIndex:   {1, 3},
	layout.LeftThumb:   {3, 1},
	layout.RightPinky:  {1, 9},
	layout.RightRing:   {1, 8},
	layout.RightMiddle: {1, 7},
	layout.RightIndex:  {1, 6},
	layout.RightThumb:  {3, 2},
}

func vertTravel(f layout.Finger) float64 {
	switch f {
	case layout.Index:
		return 62
	case layout.Middle:
		return 72
	case layout.Ring:
		return 64
	case layout.Pinky:
		return 49
	default:
		return math.MaxInt16
	}
}

func horizTravel(f layout.Finger) float64 {
	switch f {
	case layout.Index:
		return 37
	case layout.Thumb:
		return 70
	default:
		return math.MaxInt16
	}
}

func strengthCost(f layout.Finger) float64 {
	switch f {
	case layout.Index:
		return 1.0
	case layout.Middle:
		return 1.1
	case layout.Ring:
		return 1.3
	case layout.Pinky:
		return 1.5
	default:
		return 1.2
	}
}

// restingOffset accounts for fingers resting above or below the row centre.
func restingOffset(f layout.Finger) float64 {
	switch f {
	case layout.Pinky:
		return -4
	case layout.Ring:
		return 2
	case layout.Middle:
		return 1
	case layout.Index:
		return -2
	default:
		return 0
	}
}

func distPenalty(f layout.Finger, horiz, vert float64) float64 {
	return distCost * (horiz/horizTravel(f) + vert/vertTravel(f))
}

func costFromResting(d layout.Digit, pos int) float64 {
	rest := restingPos[d]
	row, col := layout.Row(pos), layout.Col(pos)

	vert := 0.0
	switch {
	case row < rest[0]:
		vert = float64(rest[0]-row)*vertSep - restingOffset(d.Finger())
	case row > rest[0]:
		vert = float64(row-rest[0])*vertSep + restingOffset(d.Finger())
	}
	horiz := float64(abs(col-rest[1])) * horizSep

	return strengthCost(d.Finger()) * (1 + distPenalty(d.Finger(), horiz, vert))
}

func costFromPos(d layout.Digit, after int, from, to int) float64 {
	if layout.DigitFor(to) != d {
		return 0
	}
	vert := float64(abs(layout.Row(to)-layout.Row(from))) * vertSep
	horiz := float64(abs(layout.Col(to)-layout.Col(from))) * horizSep
	return strengthCost(d.Finger()) *
		(1 + distPenalty(d.Finger(), horiz, vert)) *
		repeatPenalty / math.Pow(repeatFalloff, float64(after))
}

func costOfHolding(held, pressed layout.Digit) float64 {
	switch {
	case held == pressed:
		return holdSameFinger
	case held.Hand() != pressed.Hand():
		return strengthCost(held.Finger()) * holdCost
	default:
		return strengthCost(held.Finger()) * (holdCost + holdSameHand)
	}
}

// Measured models finger travel in millimetres from each digit's resting
// position, scaled by finger strength. Reusing a digit soon after its last
// press costs extra, falling off geometrically with the number of events in
// between.
type Measured struct {
	fromResting [layout.NumKeys]float64
	fromPos     [layout.NumKeys][layout.NumKeys][repeatLookback]float64
	holding     [layout.NumKeys][layout.NumKeys]float64
}

// NewMeasured precomputes the per-position tables.
func NewMeasured() *Measured {
	m := &Measured{}
	for from := 0; from < layout.NumKeys; from++ {
		d := layout.DigitFor(from)
		m.fromResting[from] = costFromResting(d, from)
		for to := 0; to < layout.NumKeys; to++ {
			for after := 0; after < repeatLookback; after++ {
				m.fromPos[from][to][after] = costFromPos(d, after, from, to)
			}
			m.holding[from][to] = costOfHolding(d, layout.DigitFor(to))
		}
	}
	return m
}

func (m *Measured) Name() string { return "measured" }

type lastUse struct {
	pressed bool
	at      int
	pos     int
}

func (m *Measured) initialLastUse() [layout.NumDigits]lastUse {
	var out [layout.NumDigits]lastUse
	for d, rest := range restingPos {
		out[d] = lastUse{pos: rest[0]*layout.NumCols + rest[1]}
	}
	return out
}

func (m *Measured) CostOfTyping(events typing.Stream) (float64, int) {
	last := m.initialLastUse()
	var held heldKeys
	total := 0.0
	count := 0

	for at := 0; ; at++ {
		ev, ok := events.Next()
		if !ok {
			return total, count
		}
		switch ev.Kind {
		case typing.Tap:
			total += m.press(at, &last, held, ev.Pos)
			if ev.ForChar {
				count++
			}
		case typing.Hold:
			total += m.press(at, &last, held, ev.Pos)
			held.push(ev.Pos)
		case typing.Release:
			last[layout.DigitFor(ev.Pos)] = lastUse{pressed: true, at: at, pos: ev.Pos}
			held.release(ev.Pos)
		}
	}
}

func (m *Measured) press(at int, last *[layout.NumDigits]lastUse, held heldKeys, pos int) float64 {
	d := layout.DigitFor(pos)
	prev := last[d]

	cost := m.fromResting[pos]
	if prev.pressed {
		if elapsed := at - prev.at - 1; elapsed < repeatLookback {
			cost = m.fromPos[prev.pos][pos][elapsed]
		}
	}
	for _, k := range held {
		cost += m.holding[k][pos]
	}

	last[d] = lastUse{pressed: true, at: at, pos: pos}
	return cost
}

func (m *Measured) LayoutCost(al *layout.Annotated) float64 {
	return measuredLayoutW * memorability(al)
}
