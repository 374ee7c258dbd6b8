package anneal

import (
	"fmt"

	"github.com/dyluth/sweep/pkg/layout"
)

// PinClass says how far the key in a slot may move.
type PinClass uint8

const (
	// Free keys may move anywhere another free key sits.
	Free PinClass = iota
	// PinnedKey keys stay on their physical key but may change layer.
	PinnedKey
	// PinnedLayer keys stay on their layer but may change position.
	PinnedLayer
	// PinnedPosition keys never move.
	PinnedPosition
)

func (p PinClass) String() string {
	switch p {
	case Free:
		return "free"
	case PinnedKey:
		return "key"
	case PinnedLayer:
		return "layer"
	case PinnedPosition:
		return "position"
	default:
		return fmt.Sprintf("PinClass(%d)", uint8(p))
	}
}

// AlphaPolicy decides how letters are pinned.
type AlphaPolicy string

const (
	// AlphaPosition keeps every letter on its starting slot.
	AlphaPosition AlphaPolicy = "position"
	// AlphaLayer lets letters move within their layer.
	AlphaLayer AlphaPolicy = "layer"
)

// Valid reports whether p is a known policy.
func (p AlphaPolicy) Valid() bool {
	return p == AlphaPosition || p == AlphaLayer
}

// DefaultPins returns the pin set used when none is configured: the home
// layer space bar stays put and letters keep their positions.
func DefaultPins() Pins {
	return Pins{
		Positions: []layout.Slot{{Layer: 0, Pos: 31}},
		Alpha:     AlphaPosition,
	}
}

// Pins is the set of placement constraints for a run.
type Pins struct {
	// Positions are slots whose key never moves.
	Positions []layout.Slot
	// Alpha is the pin policy for keys typing a letter unshifted.
	Alpha AlphaPolicy
}

// Classify returns the pin class of a slot. Explicit positions win, then
// shift and layer keys (home layer only), then letters per the alpha policy.
// On a single-layer layout the layer constraint is vacuous.
func (p Pins) Classify(al *layout.Annotated, s layout.Slot) PinClass {
	class := p.classify(al, s)
	if al.NumLayers() == 1 {
		switch class {
		case PinnedLayer:
			return Free
		case PinnedKey:
			return PinnedPosition
		}
	}
	return class
}

func (p Pins) classify(al *layout.Annotated, s layout.Slot) PinClass {
	for _, pinned := range p.Positions {
		if pinned == s {
			return PinnedPosition
		}
	}
	k := al.Key(s)
	if k.IsModifier() {
		return PinnedLayer
	}
	if c, ok := k.TypedChar(false); ok && isAlpha(c) {
		if p.Alpha == AlphaLayer {
			return PinnedLayer
		}
		return PinnedPosition
	}
	return Free
}

func isAlpha(c layout.Char) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(al *layout.Annotated, s layout.Slot) bool {
	c, ok := al.Key(s).TypedChar(false)
	return ok && layout.IsNumber(c)
}
