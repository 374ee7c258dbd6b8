package layout

import "sort"

// CharIdxEntry is one way of producing a character: the key at (Layer, Pos),
// pressed with or without shift.
type CharIdxEntry struct {
	Layer   int
	Pos     int
	Shifted bool
}

// Less orders entries by preference, least preferred first. An entry on the
// home layer beats any layered entry, unshifted beats shifted, then the
// smaller layer and finally the smaller position win.
func (e CharIdxEntry) Less(o CharIdxEntry) bool {
	eHome, oHome := e.Layer == 0, o.Layer == 0
	if eHome != oHome {
		return oHome
	}
	if e.Shifted != o.Shifted {
		return e.Shifted
	}
	if e.Layer != o.Layer {
		return e.Layer > o.Layer
	}
	return e.Pos > o.Pos
}

// entrySet is a sorted set of entries, least preferred first.
type entrySet []CharIdxEntry

func (s entrySet) search(e CharIdxEntry) int {
	return sort.Search(len(s), func(i int) bool { return !s[i].Less(e) })
}

// insert adds e, returning false if it was already present.
func (s *entrySet) insert(e CharIdxEntry) bool {
	i := s.search(e)
	if i < len(*s) && (*s)[i] == e {
		return false
	}
	*s = append(*s, CharIdxEntry{})
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = e
	return true
}

// remove deletes e, returning false if it was absent.
func (s *entrySet) remove(e CharIdxEntry) bool {
	i := s.search(e)
	if i >= len(*s) || (*s)[i] != e {
		return false
	}
	*s = append((*s)[:i], (*s)[i+1:]...)
	if len(*s) == 0 {
		*s = nil
	}
	return true
}

func (s entrySet) max() (CharIdxEntry, bool) {
	if len(s) == 0 {
		return CharIdxEntry{}, false
	}
	return s[len(s)-1], true
}

// CharIdx maps every character to the set of slots that can type it.
type CharIdx [256]entrySet

// Preferred returns the best way to type c, if any.
func (ci *CharIdx) Preferred(c Char) (CharIdxEntry, bool) {
	return ci[c].max()
}

// Entries returns all ways to type c, least preferred first.
func (ci *CharIdx) Entries(c Char) []CharIdxEntry {
	out := make([]CharIdxEntry, len(ci[c]))
	copy(out, ci[c])
	return out
}

func (ci *CharIdx) clone() CharIdx {
	var out CharIdx
	for c, set := range ci {
		if len(set) > 0 {
			out[c] = append(entrySet(nil), set...)
		}
	}
	return out
}

func (ci *CharIdx) equal(o *CharIdx) bool {
	for c := range ci {
		if len(ci[c]) != len(o[c]) {
			return false
		}
		for i := range ci[c] {
			if ci[c][i] != o[c][i] {
				return false
			}
		}
	}
	return true
}
