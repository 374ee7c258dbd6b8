package layout

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// keyToken is the grammar for a single firmware keycode token:
//
//	KC_<NAME> | LSFT(KC_<NAME>) | OSM(MOD_LSFT) | OSL(<n>)
//
// KC_NO is captured as a plain name and resolved to an empty key.
type keyToken struct {
	Shift   bool    `parser:"  @\"OSM\" \"(\" \"MOD_LSFT\" \")\""`
	Layer   *int    `parser:"| \"OSL\" \"(\" @Number \")\""`
	Shifted *string `parser:"| \"LSFT\" \"(\" @Ident \")\""`
	Plain   *string `parser:"| @Ident"`
}

var tokenLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[()]`},
})

var tokenParser = participle.MustBuild[keyToken](
	participle.Lexer(tokenLexer),
)

// ParseKey parses a firmware keycode token such as "KC_A", "LSFT(KC_1)",
// "KC_NO", "OSM(MOD_LSFT)" or "OSL(2)".
func ParseKey(token string) (Key, error) {
	parsed, err := tokenParser.ParseString("", token)
	if err != nil {
		return Key{}, &ParseError{Kind: UnknownValue, Found: token}
	}

	switch {
	case parsed.Shift:
		return ShiftKey(), nil
	case parsed.Layer != nil:
		if *parsed.Layer < 0 || *parsed.Layer > 255 {
			return Key{}, &ParseError{Kind: UnknownValue, Found: token}
		}
		return LayerKey(uint8(*parsed.Layer)), nil
	case parsed.Shifted != nil:
		kc, ok := KeyCodeFromToken(*parsed.Shifted)
		if !ok {
			return Key{}, &ParseError{Kind: UnknownValue, Found: token}
		}
		return Shifted(kc), nil
	case parsed.Plain != nil:
		if *parsed.Plain == "KC_NO" {
			return EmptyKey(), nil
		}
		kc, ok := KeyCodeFromToken(*parsed.Plain)
		if !ok {
			return Key{}, &ParseError{Kind: UnknownValue, Found: token}
		}
		return Typing(kc), nil
	}
	return Key{}, &ParseError{Kind: UnknownValue, Found: token}
}
