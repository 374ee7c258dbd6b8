package layout

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Char is a single character of the Windows-1252 code page.
type Char byte

// CharFromRune converts a rune to its single-byte representation.
// Returns false if the rune has no Windows-1252 encoding.
func CharFromRune(r rune) (Char, bool) {
	b, ok := charmap.Windows1252.EncodeRune(r)
	return Char(b), ok
}

// Rune returns the Unicode code point for the character.
func (c Char) Rune() rune {
	return charmap.Windows1252.DecodeByte(byte(c))
}

// String renders the character as UTF-8.
func (c Char) String() string {
	return string(c.Rune())
}

// EncodeError reports a rune with no single-byte representation.
type EncodeError struct {
	Rune   rune
	Offset int // byte offset of the rune in the input string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("character %q (U+%04X) at offset %d has no Windows-1252 encoding", e.Rune, e.Rune, e.Offset)
}

// Encode converts a UTF-8 string to single-byte characters.
// Fails with *EncodeError on the first rune outside the code page.
func Encode(s string) ([]Char, error) {
	out := make([]Char, 0, len(s))
	for i, r := range s {
		c, ok := CharFromRune(r)
		if !ok {
			return nil, &EncodeError{Rune: r, Offset: i}
		}
		out = append(out, c)
	}
	return out, nil
}

// MustEncode is like Encode but panics on error. Intended for literals in tests.
func MustEncode(s string) []Char {
	chars, err := Encode(s)
	if err != nil {
		panic(err)
	}
	return chars
}

// Decode converts single-byte characters back to a UTF-8 string.
func Decode(chars []Char) string {
	runes := make([]rune, len(chars))
	for i, c := range chars {
		runes[i] = c.Rune()
	}
	return string(runes)
}
