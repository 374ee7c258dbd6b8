package layout

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadQwerty(t *testing.T) Layout {
	t.Helper()
	l, err := ReadFile(filepath.Join("testdata", "qwerty.json"))
	require.NoError(t, err)
	return l
}

func randomKey(rng *rand.Rand) Key {
	switch rng.Intn(5) {
	case 0:
		return EmptyKey()
	case 1:
		return ShiftKey()
	case 2:
		return LayerKey(uint8(rng.Intn(256)))
	case 3:
		return Shifted(KeyCode(rng.Intn(int(numKeyCodes))))
	default:
		return Typing(KeyCode(rng.Intn(int(numKeyCodes))))
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		token string
		want  Key
	}{
		{"KC_A", Typing(KeyA)},
		{"KC_0", Typing(Digit0)},
		{"KC_COMM", Typing(Comma)},
		{"KC_NUBS", Typing(Backslash)},
		{"KC_NUHS", Typing(Hash)},
		{"LSFT(KC_9)", Shifted(Digit9)},
		{"KC_NO", EmptyKey()},
		{"OSM(MOD_LSFT)", ShiftKey()},
		{"OSL(0)", LayerKey(0)},
		{"OSL(12)", LayerKey(12)},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseKey(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.token, got.Token())
		})
	}

	t.Run("rejects unknown tokens", func(t *testing.T) {
		for _, token := range []string{"", "KC_FOO", "LSFT(KC_FOO)", "OSM(MOD_RSFT)", "OSL(256)", "OSL(x)", "LSFT(KC_A", "kc_a b", "KC_A)"} {
			_, err := ParseKey(token)
			require.Error(t, err, token)
			assert.True(t, IsParseError(err, UnknownValue), token)
		}
	})

	t.Run("every key code round trips", func(t *testing.T) {
		for _, kc := range AllKeyCodes() {
			for _, k := range []Key{Typing(kc), Shifted(kc)} {
				got, err := ParseKey(k.Token())
				require.NoError(t, err)
				assert.Equal(t, k, got)
			}
		}
	})
}

func TestLayoutJSONRoundTrip(t *testing.T) {
	t.Run("fixture", func(t *testing.T) {
		l := loadQwerty(t)
		data, err := json.Marshal(l)
		require.NoError(t, err)

		decoded, err := Parse(data)
		require.NoError(t, err)
		assert.True(t, l.Equal(decoded))
	})

	t.Run("random layouts", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 200; i++ {
			l := Layout{Layers: make([]Layer, 1+rng.Intn(4))}
			for li := range l.Layers {
				for pos := range l.Layers[li] {
					l.Layers[li][pos] = randomKey(rng)
				}
			}

			data, err := json.Marshal(l)
			require.NoError(t, err)

			var decoded Layout
			require.NoError(t, json.Unmarshal(data, &decoded))
			require.True(t, l.Equal(decoded), "iteration %d", i)
		}
	})

	t.Run("encoding emits all four fields", func(t *testing.T) {
		data, err := json.Marshal(loadQwerty(t))
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Equal(t, KeyboardName, fields["keyboard"])
		assert.Equal(t, KeymapName, fields["keymap"])
		assert.Equal(t, LayoutName, fields["layout"])
		assert.Len(t, fields["layers"], 3)
	})
}

func TestParseErrors(t *testing.T) {
	layer := `["` + strings.Repeat(`KC_NO","`, NumKeys-1) + `KC_NO"]`
	tests := []struct {
		name  string
		input string
		kind  ParseErrorKind
		field string
	}{
		{"not an object", `[]`, WrongType, ""},
		{"missing keyboard", `{"keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[]}`, MissingValue, "keyboard"},
		{"wrong keyboard", `{"keyboard":"planck","keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[]}`, WrongValue, "keyboard"},
		{"keyboard not a string", `{"keyboard":3,"keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[]}`, WrongType, "keyboard"},
		{"missing keymap", `{"keyboard":"ferris/sweep","layout":"LAYOUT_split_3x5_2","layers":[]}`, MissingValue, "keymap"},
		{"wrong layout", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT","layers":[]}`, WrongValue, "layout"},
		{"missing layers", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT_split_3x5_2"}`, MissingValue, "layers"},
		{"layers not an array", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT_split_3x5_2","layers":{}}`, WrongType, "layers"},
		{"no layers", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[]}`, WrongLength, "layers"},
		{"short layer", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[["KC_A"]]}`, WrongLength, "layers[0]"},
		{"token not a string", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[` + strings.Replace(layer, `"KC_NO"`, `7`, 1) + `]}`, WrongType, "layers[0][0]"},
		{"unknown token", `{"keyboard":"ferris/sweep","keymap":"x","layout":"LAYOUT_split_3x5_2","layers":[` + layer + `,` + strings.Replace(layer, `"KC_NO"`, `"KC_F13"`, 1) + `]}`, UnknownValue, "layers[1][0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind, pe.Error())
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestReadWriteFile(t *testing.T) {
	l := loadQwerty(t)
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, WriteFile(path, l))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, l.Equal(got))

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestValidateSchema(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "qwerty.json"))
	require.NoError(t, err)
	assert.NoError(t, ValidateSchema(data))

	bad := strings.Replace(string(data), `"KC_Q"`, `"not a token"`, 1)
	assert.Error(t, ValidateSchema([]byte(bad)))

	assert.Error(t, ValidateSchema([]byte(`{"keyboard":"ferris/sweep"}`)))
}

func TestFingerprint(t *testing.T) {
	l := loadQwerty(t)
	other := l.Clone()
	assert.Equal(t, Fingerprint(l), Fingerprint(other))
	assert.Len(t, ShortFingerprint(l), 12)

	other.Layers[0][0], other.Layers[0][1] = other.Layers[0][1], other.Layers[0][0]
	assert.NotEqual(t, Fingerprint(l), Fingerprint(other))
}

func TestHammingDist(t *testing.T) {
	l := loadQwerty(t)
	assert.Equal(t, 0, HammingDist(l, l))

	swapped := l.Clone()
	swapped.Layers[0][0], swapped.Layers[0][1] = swapped.Layers[0][1], swapped.Layers[0][0]
	assert.Equal(t, 2, HammingDist(l, swapped))

	fewer := Layout{Layers: l.Layers[:2]}
	assert.Equal(t, NumKeys, HammingDist(l, fewer))
	assert.Equal(t, NumKeys, HammingDist(fewer, l))
}
