package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharset(t *testing.T) {
	t.Run("ascii and latin-1 characters encode", func(t *testing.T) {
		chars, err := Encode("Hi £5 ¬")
		require.NoError(t, err)
		assert.Equal(t, []Char{'H', 'i', ' ', 0xA3, '5', ' ', 0xAC}, chars)
	})

	t.Run("euro sign uses the windows-1252 slot", func(t *testing.T) {
		c, ok := CharFromRune('€')
		require.True(t, ok)
		assert.Equal(t, Char(0x80), c)
	})

	t.Run("characters outside the code page fail", func(t *testing.T) {
		_, err := Encode("ok 漢")
		require.Error(t, err)

		var ee *EncodeError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, '漢', ee.Rune)
		assert.Equal(t, 3, ee.Offset)
	})

	t.Run("decode reverses encode", func(t *testing.T) {
		s := "The quick brown fox; £3 & ¬!\n\t"
		assert.Equal(t, s, Decode(MustEncode(s)))
	})
}

func TestKeyCodeChars(t *testing.T) {
	tests := []struct {
		kc      KeyCode
		typed   Char
		shifted Char
	}{
		{KeyA, 'a', 'A'},
		{Digit2, '2', '"'},
		{Digit3, '3', 0xA3},
		{Apostrophe, '\'', '@'},
		{Hash, '#', '~'},
		{Backslash, '\\', '|'},
		{Grave, '`', 0xAC},
		{Space, ' ', ' '},
		{Enter, '\n', '\n'},
	}

	for _, tt := range tests {
		t.Run(tt.kc.Token(), func(t *testing.T) {
			assert.Equal(t, tt.typed, tt.kc.TypedChar())
			assert.Equal(t, tt.shifted, tt.kc.ShiftedChar())
		})
	}

	t.Run("key variants resolve characters", func(t *testing.T) {
		c, ok := Typing(KeyA).TypedChar(false)
		assert.True(t, ok)
		assert.Equal(t, Char('a'), c)

		c, ok = Typing(KeyA).TypedChar(true)
		assert.True(t, ok)
		assert.Equal(t, Char('A'), c)

		c, ok = Shifted(Digit1).TypedChar(false)
		assert.True(t, ok)
		assert.Equal(t, Char('!'), c)

		for _, k := range []Key{EmptyKey(), ShiftKey(), LayerKey(1)} {
			_, ok := k.TypedChar(false)
			assert.False(t, ok, k.Token())
		}
	})
}

func TestDigitFor(t *testing.T) {
	assert.Equal(t, LeftPinky, DigitFor(0))
	assert.Equal(t, LeftIndex, DigitFor(14))
	assert.Equal(t, RightIndex, DigitFor(25))
	assert.Equal(t, RightPinky, DigitFor(29))
	assert.Equal(t, LeftThumb, DigitFor(30))
	assert.Equal(t, LeftThumb, DigitFor(31))
	assert.Equal(t, RightThumb, DigitFor(32))
	assert.Equal(t, RightThumb, DigitFor(33))

	assert.Equal(t, Right, RightRing.Hand())
	assert.Equal(t, Ring, RightRing.Finger())
	assert.Equal(t, LeftMiddle, NewDigit(Left, Middle))
}
