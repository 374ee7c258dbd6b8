package layout

import (
	"fmt"
	"slices"
)

// Slot addresses one key of a layout.
type Slot struct {
	Layer int
	Pos   int
}

func (s Slot) String() string { return fmt.Sprintf("%d:%d", s.Layer, s.Pos) }

// Annotated wraps a Layout with lookup indices derived from it:
//   - charIdx: every way of typing each character
//   - layerIdx: home-layer position of each layer's switch key (-1 if none)
//   - shiftIdx: home-layer position of the shift key (-1 if none)
//   - numLayer, numLayout: the digit layer and which NumLayouts row it uses
//
// Swap is the only mutator and keeps every index an exact function of the
// layout. A failed consistency check panics with *InvariantError.
type Annotated struct {
	layout    Layout
	charIdx   CharIdx
	layerIdx  []int
	shiftIdx  int
	numLayout int
	numLayer  int
}

// Annotate builds the indices for a layout. The layout is copied.
//
// Shift and layer keys must sit on the home layer, at most one key per
// target, and layer keys must refer to existing layers. If any digit is
// present, all ten must be on one layer in one of the NumLayouts placements.
func Annotate(l Layout) (*Annotated, error) {
	if len(l.Layers) == 0 {
		return nil, fmt.Errorf("layout has no layers")
	}

	al := &Annotated{
		layout:   l.Clone(),
		layerIdx: make([]int, len(l.Layers)),
		shiftIdx: -1,
	}
	for i := range al.layerIdx {
		al.layerIdx[i] = -1
	}

	for layer, keys := range al.layout.Layers {
		for pos, k := range keys {
			for _, shifted := range []bool{false, true} {
				if c, ok := k.TypedChar(shifted); ok {
					al.charIdx[c].insert(CharIdxEntry{Layer: layer, Pos: pos, Shifted: shifted})
				}
			}

			if !k.IsModifier() {
				continue
			}
			if layer != 0 {
				return nil, fmt.Errorf("%s at %s: shift and layer keys must be on the home layer", k.Token(), Slot{layer, pos})
			}
			if k.Kind == KindShift {
				if al.shiftIdx >= 0 {
					return nil, fmt.Errorf("duplicate shift key at positions %d and %d", al.shiftIdx, pos)
				}
				al.shiftIdx = pos
				continue
			}
			n := int(k.Layer)
			if n >= len(al.layerIdx) {
				return nil, fmt.Errorf("%s at position %d refers to missing layer (layout has %d)", k.Token(), pos, len(al.layerIdx))
			}
			if al.layerIdx[n] >= 0 {
				return nil, fmt.Errorf("duplicate key for layer %d at positions %d and %d", n, al.layerIdx[n], pos)
			}
			al.layerIdx[n] = pos
		}
	}

	numLayer, numLayout, err := findNumLayout(&al.charIdx)
	if err != nil {
		return nil, err
	}
	al.numLayer, al.numLayout = numLayer, numLayout
	return al, nil
}

// findNumLayout locates the digit layer and matches its placement against
// NumLayouts. A layout without digits reports (0, 0).
func findNumLayout(ci *CharIdx) (layer, index int, err error) {
	zero, ok := ci.Preferred(Numbers[0])
	if !ok {
		for _, c := range Numbers {
			if _, ok := ci.Preferred(c); ok {
				return 0, 0, fmt.Errorf("digit %q present but '0' is not", c)
			}
		}
		return 0, 0, nil
	}

	layer = zero.Layer
	var positions [10]int
	for i, c := range Numbers {
		e, ok := ci.Preferred(c)
		if !ok {
			return 0, 0, fmt.Errorf("digit %q is not reachable", c)
		}
		if e.Layer != layer || e.Shifted {
			return 0, 0, fmt.Errorf("digit %q is not on the digit layer %d", c, layer)
		}
		positions[i] = e.Pos
	}

	for i, candidate := range NumLayouts {
		if candidate == positions {
			return layer, i, nil
		}
	}
	return 0, 0, fmt.Errorf("digit placement %v is not a known digit layout", positions)
}

// Layout returns a copy of the underlying layout.
func (al *Annotated) Layout() Layout { return al.layout.Clone() }

// Key returns the key at a slot.
func (al *Annotated) Key(s Slot) Key { return al.layout.Layers[s.Layer][s.Pos] }

// NumLayers returns the number of layers.
func (al *Annotated) NumLayers() int { return len(al.layout.Layers) }

// Preferred returns the best way to type c.
func (al *Annotated) Preferred(c Char) (CharIdxEntry, bool) { return al.charIdx.Preferred(c) }

// Entries returns every way to type c, least preferred first.
func (al *Annotated) Entries(c Char) []CharIdxEntry { return al.charIdx.Entries(c) }

// LayerIdx returns the home-layer position of the key switching to layer n.
func (al *Annotated) LayerIdx(n int) (int, bool) {
	if n < 0 || n >= len(al.layerIdx) || al.layerIdx[n] < 0 {
		return 0, false
	}
	return al.layerIdx[n], true
}

// ShiftIdx returns the home-layer position of the shift key.
func (al *Annotated) ShiftIdx() (int, bool) {
	if al.shiftIdx < 0 {
		return 0, false
	}
	return al.shiftIdx, true
}

// NumLayout returns the index into NumLayouts of the current digit placement.
func (al *Annotated) NumLayout() int { return al.numLayout }

// NumLayer returns the layer holding the digits.
func (al *Annotated) NumLayer() int { return al.numLayer }

// Clone returns an independent copy.
func (al *Annotated) Clone() *Annotated {
	return &Annotated{
		layout:    al.layout.Clone(),
		charIdx:   al.charIdx.clone(),
		layerIdx:  slices.Clone(al.layerIdx),
		shiftIdx:  al.shiftIdx,
		numLayout: al.numLayout,
		numLayer:  al.numLayer,
	}
}

// Equal reports whether the layouts and every derived index match.
func (al *Annotated) Equal(o *Annotated) bool {
	return al.layout.Equal(o.layout) &&
		al.charIdx.equal(&o.charIdx) &&
		slices.Equal(al.layerIdx, o.layerIdx) &&
		al.shiftIdx == o.shiftIdx &&
		al.numLayout == o.numLayout &&
		al.numLayer == o.numLayer
}

// CheckConsistent rebuilds the indices from scratch and compares them.
func (al *Annotated) CheckConsistent() error {
	fresh, err := Annotate(al.layout)
	if err != nil {
		return fmt.Errorf("layout no longer annotates: %w", err)
	}
	if !al.Equal(fresh) {
		return fmt.Errorf("derived indices differ from a fresh annotation")
	}
	return nil
}

type indexChange struct {
	c     Char
	entry CharIdxEntry
}

// Swap exchanges the keys at a and b. All index entries of both slots are
// removed before any new entry is inserted, so a character typed by both
// slots is relocated correctly.
func (al *Annotated) Swap(a, b Slot) {
	if a == b {
		return
	}
	keyA := al.layout.Layers[a.Layer][a.Pos]
	keyB := al.layout.Layers[b.Layer][b.Pos]

	var changes [4]indexChange
	n := 0
	stage := func(from Slot, k Key, to Slot, shifted bool) {
		c, ok := k.TypedChar(shifted)
		if !ok {
			return
		}
		old := CharIdxEntry{Layer: from.Layer, Pos: from.Pos, Shifted: shifted}
		if !al.charIdx[c].remove(old) {
			invariantf("swap", "no index entry for %q at %s", c.Rune(), from)
		}
		changes[n] = indexChange{c: c, entry: CharIdxEntry{Layer: to.Layer, Pos: to.Pos, Shifted: shifted}}
		n++
	}
	stage(a, keyA, b, false)
	stage(b, keyB, a, false)
	stage(a, keyA, b, true)
	stage(b, keyB, a, true)

	for _, ch := range changes[:n] {
		if !al.charIdx[ch.c].insert(ch.entry) {
			invariantf("swap", "duplicate index entry for %q at %d:%d", ch.c.Rune(), ch.entry.Layer, ch.entry.Pos)
		}
	}

	al.moveModifier(keyA, a, b)
	al.moveModifier(keyB, b, a)

	al.layout.Layers[a.Layer][a.Pos] = keyB
	al.layout.Layers[b.Layer][b.Pos] = keyA

	if al.layout.Layers[a.Layer][a.Pos] != keyB || al.layout.Layers[b.Layer][b.Pos] != keyA {
		invariantf("swap", "keys at %s and %s were not exchanged", a, b)
	}
}

func (al *Annotated) moveModifier(k Key, from, to Slot) {
	var idx *int
	switch k.Kind {
	case KindLayer:
		idx = &al.layerIdx[k.Layer]
	case KindShift:
		idx = &al.shiftIdx
	default:
		return
	}
	if from.Layer != 0 || to.Layer != 0 {
		invariantf("swap", "%s moved from %s to %s; must stay on the home layer", k.Token(), from, to)
	}
	if *idx != from.Pos {
		invariantf("swap", "index for %s is %d, key found at %d", k.Token(), *idx, from.Pos)
	}
	*idx = to.Pos
}

// SwitchToNumLayout moves the ten digits to placement NumLayouts[index],
// one swap per digit, all on the digit layer.
func (al *Annotated) SwitchToNumLayout(index int) {
	if index < 0 || index >= NumNumLayouts {
		invariantf("switch_to_num_layout", "digit layout %d out of range", index)
	}
	al.checkNumLayout(al.numLayout)

	for i, newPos := range NumLayouts[index] {
		e, ok := al.charIdx.Preferred(Numbers[i])
		if !ok || e.Layer != al.numLayer || e.Shifted {
			invariantf("switch_to_num_layout", "digit %d is not on the digit layer %d", i, al.numLayer)
		}
		al.Swap(Slot{Layer: al.numLayer, Pos: e.Pos}, Slot{Layer: al.numLayer, Pos: newPos})
	}
	al.numLayout = index

	al.checkNumLayout(index)
}

func (al *Annotated) checkNumLayout(want int) {
	layer, got, err := findNumLayout(&al.charIdx)
	if err != nil {
		invariantf("switch_to_num_layout", "%v", err)
	}
	if layer != al.numLayer || got != want {
		invariantf("switch_to_num_layout", "digit layout is %d on layer %d, expected %d on layer %d", got, layer, want, al.numLayer)
	}
}
