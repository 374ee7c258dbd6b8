package typing

import "fmt"

// OneshotStream rewrites Hold/Release pairs that guard exactly one keystroke
// into a single modifier tap, and drops pairs that guard none.
type OneshotStream struct {
	src Lookahead
}

// Oneshot compresses src. It never emits more events than it consumes.
func Oneshot(src Lookahead) *OneshotStream {
	return &OneshotStream{src: src}
}

// Next panics if a held key is never released.
func (o *OneshotStream) Next() (Event, bool) {
	for {
		ev, ok := o.src.Next()
		if !ok {
			return Event{}, false
		}
		if ev.Kind != Hold {
			return ev, true
		}

		if out, keep := o.compress(ev); keep {
			return out, true
		}
	}
}

// compress scans forward from a Hold to its Release. It returns the event to
// emit in place of the hold, or false if the pair guarded nothing.
func (o *OneshotStream) compress(hold Event) (Event, bool) {
	used := false
	for i := 0; ; i++ {
		next, ok := o.src.PeekNth(i)
		if !ok {
			panic(fmt.Sprintf("key %d held but not released", hold.Pos))
		}

		switch next.Kind {
		case Tap, Unknown:
			if used {
				return hold, true
			}
			used = true
		case Release:
			if next.Pos != hold.Pos {
				continue
			}
			o.src.RemoveNth(i)
			if used {
				return TapEvent(hold.Pos, false), true
			}
			return Event{}, false
		}
	}
}
