package layout

// Layer is one full assignment of keys to the 34 physical positions.
type Layer [NumKeys]Key

// Layout is an ordered list of layers; index 0 is the home layer.
// No structural invariant is enforced: reachability of characters and
// placement of layer keys are the caller's responsibility.
type Layout struct {
	Layers []Layer
}

// NumLayers returns the number of layers.
func (l Layout) NumLayers() int { return len(l.Layers) }

// Key returns the key at a slot.
func (l Layout) Key(layer, pos int) Key { return l.Layers[layer][pos] }

// Clone returns a deep copy.
func (l Layout) Clone() Layout {
	layers := make([]Layer, len(l.Layers))
	copy(layers, l.Layers)
	return Layout{Layers: layers}
}

// Equal reports whether both layouts have identical layers.
func (l Layout) Equal(other Layout) bool {
	if len(l.Layers) != len(other.Layers) {
		return false
	}
	for i := range l.Layers {
		if l.Layers[i] != other.Layers[i] {
			return false
		}
	}
	return true
}

// HammingDist counts the slots whose keys differ. Every slot of a layer
// present in only one of the layouts counts as different.
func HammingDist(a, b Layout) int {
	shared := min(len(a.Layers), len(b.Layers))
	dist := 0
	for i := 0; i < shared; i++ {
		for pos := 0; pos < NumKeys; pos++ {
			if a.Layers[i][pos] != b.Layers[i][pos] {
				dist++
			}
		}
	}
	extra := len(a.Layers) + len(b.Layers) - 2*shared
	return dist + extra*NumKeys
}
