package cost

import "github.com/dyluth/sweep/pkg/layout"

// Character classes whose members should share a layer and shift state.
var (
	lowerAlpha   = charRange('a', 'z')
	upperAlpha   = charRange('A', 'Z')
	mathsSymbols = chars("+-*/%=!@<>^&|")
	brackets     = chars("(){}[]<>")
	quotes       = chars("'\"`")
	punctuation  = chars(",.;:!?\"'-")
	lines        = chars("-_\\|/~")
)

// orderedPairs should sit left then right, mirrored or adjacent.
var orderedPairs = [][2]layout.Char{
	{'(', ')'}, {'{', '}'}, {'[', ']'}, {'<', '>'},
}

// similarPairs should sit near each other.
var similarPairs = [][2]layout.Char{
	{'+', '-'}, {'*', '/'}, {'+', '*'}, {'-', '/'}, {'/', '%'},
	{'\\', '/'}, {'\\', '|'}, {'/', '|'}, {'"', '\''}, {'*', '&'},
	{'!', '?'}, {'.', ','}, {'$', 0xA3}, {'-', '_'}, {'-', '~'},
	{'\'', '`'}, {';', ':'},
}

func charRange(lo, hi layout.Char) []layout.Char {
	out := make([]layout.Char, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		out = append(out, c)
	}
	return out
}

func chars(s string) []layout.Char {
	return layout.MustEncode(s)
}

// memorability penalises layouts that are hard to learn: paired symbols far
// apart, character classes scattered over layers, and modifiers off the
// thumb row.
func memorability(al *layout.Annotated) float64 {
	ordered := 0.0
	for _, p := range orderedPairs {
		l, lok := al.Preferred(p[0])
		r, rok := al.Preferred(p[1])
		if lok && rok {
			ordered += orderedPairPenalty(l, r)
		}
	}

	similar := 0.0
	for _, p := range similarPairs {
		a, aok := al.Preferred(p[0])
		b, bok := al.Preferred(p[1])
		if aok && bok {
			similar += similarPairPenalty(a, b)
		}
	}

	return 0.01*ordered +
		0.002*similar +
		0.01*layerVariation(al, lowerAlpha) +
		0.01*layerVariation(al, upperAlpha) +
		0.002*layerVariation(al, mathsSymbols) +
		0.002*layerVariation(al, brackets) +
		0.002*layerVariation(al, quotes) +
		0.002*layerVariation(al, punctuation) +
		0.002*layerVariation(al, lines) +
		0.1*spacePenalty(al) +
		0.1*shiftPenalty(al) +
		0.1*layerKeyPenalty(al)
}

func sameLayerState(a, b layout.CharIdxEntry) bool {
	return a.Layer == b.Layer && a.Shifted == b.Shifted
}

func orderedPairPenalty(l, r layout.CharIdxEntry) float64 {
	if !sameLayerState(l, r) {
		if l.Pos != r.Pos {
			return 6
		}
		return 2
	}

	lRow, lCol := layout.Row(l.Pos), layout.Col(l.Pos)
	rRow, rCol := layout.Row(r.Pos), layout.Col(r.Pos)
	switch {
	case lRow == rRow:
		mirrored := (lRow == layout.ThumbRow && lCol < 2 && rCol == 3-lCol) || (lCol < 5 && rCol == 9-lCol)
		if mirrored || rCol == lCol+1 {
			return 0
		}
		if lCol < rCol && (rCol < 5 || 5 <= lCol) {
			return 1
		}
		return 4
	case lCol == rCol:
		return 1
	default:
		return 4
	}
}

func similarPairPenalty(a, b layout.CharIdxEntry) float64 {
	if !sameLayerState(a, b) {
		if a.Pos != b.Pos {
			return 4
		}
		return 1
	}

	aRow, aCol := layout.Row(a.Pos), layout.Col(a.Pos)
	bRow, bCol := layout.Row(b.Pos), layout.Col(b.Pos)
	switch {
	case aRow == bRow:
		mirrored := (aRow == layout.ThumbRow && bCol == 3-aCol) || bCol == 9-aCol
		if mirrored || bCol == aCol+1 || aCol == bCol+1 {
			return 0
		}
		return 2
	case aCol == bCol:
		return 0
	default:
		return 2
	}
}

// layerVariation is the number of pairs in the class typed with a different
// layer or shift state, divided by the number of typable members.
func layerVariation(al *layout.Annotated, class []layout.Char) float64 {
	var states []layout.CharIdxEntry
	for _, c := range class {
		if e, ok := al.Preferred(c); ok {
			states = append(states, layout.CharIdxEntry{Layer: e.Layer, Shifted: e.Shifted})
		}
	}
	if len(states) == 0 {
		return 0
	}
	different := 0
	for i, a := range states {
		for _, b := range states[i+1:] {
			if a != b {
				different++
			}
		}
	}
	return float64(different) / float64(len(states))
}

func spacePenalty(al *layout.Annotated) float64 {
	e, ok := al.Preferred(' ')
	if !ok {
		return 3
	}
	switch e.Pos {
	case 31:
		return 0
	case 32:
		return 1
	default:
		return 3
	}
}

func shiftPenalty(al *layout.Annotated) float64 {
	pos, ok := al.ShiftIdx()
	if !ok || layout.IsThumb(pos) {
		return 0
	}
	return 2
}

func layerKeyPenalty(al *layout.Annotated) float64 {
	penalty := 0.0
	for n := 1; n < al.NumLayers(); n++ {
		pos, ok := al.LayerIdx(n)
		if !ok || !layout.IsThumb(pos) {
			penalty += 2
		}
	}
	return penalty
}
