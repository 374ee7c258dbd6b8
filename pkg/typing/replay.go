package typing

import "github.com/dyluth/sweep/pkg/layout"

// Typist simulates the firmware's one-shot layer and shift handling.
type Typist struct {
	al           *layout.Annotated
	layer        int
	layerOneshot bool
	shift        bool
	shiftOneshot bool
}

// NewTypist starts on the home layer with shift released.
func NewTypist(al *layout.Annotated) *Typist {
	return &Typist{al: al}
}

// Apply performs one event and returns the character it typed, if any.
// Character taps resolve against the active layer. Holds, releases and the
// modifier taps Oneshot makes of them are read from the home layer, where
// every modifier lives.
func (ty *Typist) Apply(ev Event) (layout.Char, bool) {
	switch ev.Kind {
	case Tap:
		layer := ty.layer
		if !ev.ForChar {
			layer = 0
		}
		k := ty.al.Key(layout.Slot{Layer: layer, Pos: ev.Pos})
		switch k.Kind {
		case layout.KindLayer:
			ty.layer, ty.layerOneshot = int(k.Layer), true
		case layout.KindShift:
			ty.shift, ty.shiftOneshot = true, true
		default:
			c, ok := k.TypedChar(ty.shift)
			ty.finishOneshot()
			return c, ok
		}

	case Hold:
		k := ty.al.Key(layout.Slot{Layer: 0, Pos: ev.Pos})
		switch k.Kind {
		case layout.KindLayer:
			ty.layer, ty.layerOneshot = int(k.Layer), false
		case layout.KindShift:
			ty.shift, ty.shiftOneshot = true, false
		}

	case Release:
		k := ty.al.Key(layout.Slot{Layer: 0, Pos: ev.Pos})
		switch k.Kind {
		case layout.KindLayer:
			ty.layer, ty.layerOneshot = 0, false
		case layout.KindShift:
			ty.shift, ty.shiftOneshot = false, false
		}

	case Unknown:
		ty.finishOneshot()
	}
	return 0, false
}

func (ty *Typist) finishOneshot() {
	if ty.layerOneshot {
		ty.layer, ty.layerOneshot = 0, false
	}
	if ty.shiftOneshot {
		ty.shift, ty.shiftOneshot = false, false
	}
}

// Replay types an event stream on al and returns the resulting text.
func Replay(al *layout.Annotated, events Stream) []layout.Char {
	ty := NewTypist(al)
	var out []layout.Char
	for {
		ev, ok := events.Next()
		if !ok {
			return out
		}
		if c, ok := ty.Apply(ev); ok {
			out = append(out, c)
		}
	}
}
