package cost

import (
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/dyluth/sweep/pkg/typing"
)

// Surcharges for tapping while modifiers are held in the simple model.
const (
	simpleHeldCost       = 2
	simpleHeldSameFinger = 20
)

// Simple charges only for finger movement: each tap costs the log of the
// squared distance from where that digit last pressed, and reusing a digit
// soon after its previous press is multiplied up by recency. It has no
// layout term.
type Simple struct{}

// NewSimple returns the simple model.
func NewSimple() *Simple { return &Simple{} }

func (s *Simple) Name() string { return "simple" }

type simpleLastUse struct {
	at       int // 0 when the digit has not been used yet
	row, col int
}

func (s *Simple) CostOfTyping(events typing.Stream) (float64, int) {
	var last [layout.NumDigits]simpleLastUse
	for d, rest := range restingPos {
		last[d] = simpleLastUse{row: rest[0], col: rest[1]}
	}

	var held heldKeys
	total := 0
	count := 0

	for i := 1; ; i++ {
		ev, ok := events.Next()
		if !ok {
			return float64(total), count
		}
		switch ev.Kind {
		case typing.Tap:
			d := layout.DigitFor(ev.Pos)
			row, col := layout.Row(ev.Pos), layout.Col(ev.Pos)
			dr := abs(last[d].row - row)
			dc := abs(last[d].col - col)
			move := 1 + LogNorm(dr*dr+(2*dc)*(2*dc))
			if last[d].at > 0 {
				total += 10 * move / (i - last[d].at)
			} else {
				total += move
			}
			for _, k := range held {
				if layout.DigitFor(k) == d {
					total += simpleHeldSameFinger
				} else {
					total += simpleHeldCost
				}
			}
			last[d] = simpleLastUse{at: i, row: row, col: col}
			if ev.ForChar {
				count++
			}
		case typing.Hold:
			held.push(ev.Pos)
		case typing.Release:
			held.release(ev.Pos)
		}
	}
}

func (s *Simple) LayoutCost(*layout.Annotated) float64 { return 0 }
