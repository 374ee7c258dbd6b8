package layout

import "fmt"

// KeyKind is the role a key plays in the layout.
type KeyKind uint8

const (
	// KindEmpty produces nothing (KC_NO).
	KindEmpty KeyKind = iota
	// KindTyping produces the key code's typed or shifted character depending on shift.
	KindTyping
	// KindShifted always produces the key code's shifted character (LSFT(...)).
	KindShifted
	// KindShift is the one-shot shift modifier (OSM(MOD_LSFT)).
	KindShift
	// KindLayer is the one-shot layer switch to Key.Layer (OSL(n)).
	KindLayer
)

// Key is one slot of a layer.
// Code is meaningful for KindTyping and KindShifted, Layer for KindLayer.
type Key struct {
	Kind  KeyKind
	Code  KeyCode
	Layer uint8
}

// Constructors for each key variant.
func Typing(kc KeyCode) Key  { return Key{Kind: KindTyping, Code: kc} }
func Shifted(kc KeyCode) Key { return Key{Kind: KindShifted, Code: kc} }
func EmptyKey() Key          { return Key{Kind: KindEmpty} }
func ShiftKey() Key          { return Key{Kind: KindShift} }
func LayerKey(n uint8) Key   { return Key{Kind: KindLayer, Layer: n} }

// TypedChar returns the character the key produces with the given shift state.
// Empty, Shift and Layer keys produce nothing.
func (k Key) TypedChar(shifted bool) (Char, bool) {
	switch k.Kind {
	case KindTyping:
		if shifted {
			return k.Code.ShiftedChar(), true
		}
		return k.Code.TypedChar(), true
	case KindShifted:
		return k.Code.ShiftedChar(), true
	default:
		return 0, false
	}
}

// IsModifier reports whether the key is a shift or layer key.
func (k Key) IsModifier() bool {
	return k.Kind == KindShift || k.Kind == KindLayer
}

// Token renders the key in firmware keymap syntax.
func (k Key) Token() string {
	switch k.Kind {
	case KindTyping:
		return k.Code.Token()
	case KindShifted:
		return fmt.Sprintf("LSFT(%s)", k.Code.Token())
	case KindShift:
		return "OSM(MOD_LSFT)"
	case KindLayer:
		return fmt.Sprintf("OSL(%d)", k.Layer)
	default:
		return "KC_NO"
	}
}

func (k Key) String() string { return k.Token() }
