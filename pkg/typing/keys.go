package typing

import "github.com/dyluth/sweep/pkg/layout"

// KeyStream synthesises the hardware actions that type a text. Layers and
// shift are held while needed and released as soon as a character needs a
// different state. It emits at most three events per input character plus
// two final releases.
type KeyStream struct {
	Buffered

	al      *layout.Annotated
	chars   []layout.Char
	next    int
	layer   int
	shifted bool
	done    bool
}

// Keys returns the action stream for chars on al. The layout must not be
// mutated while the stream is being read.
func Keys(al *layout.Annotated, chars []layout.Char) *KeyStream {
	ks := &KeyStream{al: al, chars: chars}
	ks.fill = ks.step
	return ks
}

// Reset rewinds the stream to the start of its input.
func (ks *KeyStream) Reset() {
	ks.buf.clear()
	ks.next = 0
	ks.layer = 0
	ks.shifted = false
	ks.done = false
}

func (ks *KeyStream) step(q *deque) bool {
	if ks.next >= len(ks.chars) {
		if ks.done {
			return false
		}
		ks.done = true
		ks.releaseAll(q)
		return true
	}

	c := ks.chars[ks.next]
	ks.next++

	e, ok := ks.resolve(c)
	if !ok {
		ks.releaseAll(q)
		q.pushBack(UnknownEvent())
		return true
	}

	if ks.layer != 0 && e.Layer != ks.layer {
		ks.releaseLayer(q)
	}
	if ks.shifted && !e.Shifted {
		ks.releaseShift(q)
	}
	if e.Shifted && !ks.shifted {
		// shift lives on the home layer
		if ks.layer != 0 {
			ks.releaseLayer(q)
		}
		pos, _ := ks.al.ShiftIdx()
		q.pushBack(HoldEvent(pos))
		ks.shifted = true
	}
	if e.Layer != 0 && ks.layer != e.Layer {
		pos, _ := ks.al.LayerIdx(e.Layer)
		q.pushBack(HoldEvent(pos))
		ks.layer = e.Layer
	}
	q.pushBack(TapEvent(e.Pos, true))
	return true
}

// resolve finds the preferred way to type c, treating it as unknown when the
// shift or layer key it needs is missing from the layout.
func (ks *KeyStream) resolve(c layout.Char) (layout.CharIdxEntry, bool) {
	e, ok := ks.al.Preferred(c)
	if !ok {
		return e, false
	}
	if e.Shifted {
		if _, ok := ks.al.ShiftIdx(); !ok {
			return e, false
		}
	}
	if e.Layer != 0 {
		if _, ok := ks.al.LayerIdx(e.Layer); !ok {
			return e, false
		}
	}
	return e, true
}

func (ks *KeyStream) releaseLayer(q *deque) {
	pos, _ := ks.al.LayerIdx(ks.layer)
	q.pushBack(ReleaseEvent(pos))
	ks.layer = 0
}

func (ks *KeyStream) releaseShift(q *deque) {
	pos, _ := ks.al.ShiftIdx()
	q.pushBack(ReleaseEvent(pos))
	ks.shifted = false
}

func (ks *KeyStream) releaseAll(q *deque) {
	if ks.layer != 0 {
		ks.releaseLayer(q)
	}
	if ks.shifted {
		ks.releaseShift(q)
	}
}
