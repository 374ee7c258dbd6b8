package layout

// KeyCode identifies a physical key on a UK ISO keyboard.
type KeyCode uint8

const (
	KeyA KeyCode = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Digit0
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9
	Comma
	Dot
	Apostrophe
	Semicolon
	Backslash
	Slash
	LeftSquareBracket
	RightSquareBracket
	Hash
	Grave
	Minus
	Equals
	Space
	Enter
	Tab

	numKeyCodes
)

// HomingKeys are the keys that carry a tactile bump on a standard keyboard.
var HomingKeys = []KeyCode{KeyF, KeyJ, KeyT, KeyN, KeyU, KeyH, Space}

type keyCodeInfo struct {
	token   string
	typed   Char
	shifted Char
}

// '£' and '¬' are 0xA3 and 0xAC in Windows-1252.
var keyCodeTable = [numKeyCodes]keyCodeInfo{
	KeyA: {"KC_A", 'a', 'A'}, KeyB: {"KC_B", 'b', 'B'}, KeyC: {"KC_C", 'c', 'C'},
	KeyD: {"KC_D", 'd', 'D'}, KeyE: {"KC_E", 'e', 'E'}, KeyF: {"KC_F", 'f', 'F'},
	KeyG: {"KC_G", 'g', 'G'}, KeyH: {"KC_H", 'h', 'H'}, KeyI: {"KC_I", 'i', 'I'},
	KeyJ: {"KC_J", 'j', 'J'}, KeyK: {"KC_K", 'k', 'K'}, KeyL: {"KC_L", 'l', 'L'},
	KeyM: {"KC_M", 'm', 'M'}, KeyN: {"KC_N", 'n', 'N'}, KeyO: {"KC_O", 'o', 'O'},
	KeyP: {"KC_P", 'p', 'P'}, KeyQ: {"KC_Q", 'q', 'Q'}, KeyR: {"KC_R", 'r', 'R'},
	KeyS: {"KC_S", 's', 'S'}, KeyT: {"KC_T", 't', 'T'}, KeyU: {"KC_U", 'u', 'U'},
	KeyV: {"KC_V", 'v', 'V'}, KeyW: {"KC_W", 'w', 'W'}, KeyX: {"KC_X", 'x', 'X'},
	KeyY: {"KC_Y", 'y', 'Y'}, KeyZ: {"KC_Z", 'z', 'Z'},

	Digit0: {"KC_0", '0', ')'}, Digit1: {"KC_1", '1', '!'}, Digit2: {"KC_2", '2', '"'},
	Digit3: {"KC_3", '3', 0xA3}, Digit4: {"KC_4", '4', '$'}, Digit5: {"KC_5", '5', '%'},
	Digit6: {"KC_6", '6', '^'}, Digit7: {"KC_7", '7', '&'}, Digit8: {"KC_8", '8', '*'},
	Digit9: {"KC_9", '9', '('},

	Comma:              {"KC_COMM", ',', '<'},
	Dot:                {"KC_DOT", '.', '>'},
	Apostrophe:         {"KC_QUOT", '\'', '@'},
	Semicolon:          {"KC_SCLN", ';', ':'},
	Backslash:          {"KC_NUBS", '\\', '|'},
	Slash:              {"KC_SLSH", '/', '?'},
	LeftSquareBracket:  {"KC_LBRC", '[', '{'},
	RightSquareBracket: {"KC_RBRC", ']', '}'},
	Hash:               {"KC_NUHS", '#', '~'},
	Grave:              {"KC_GRV", '`', 0xAC},
	Minus:              {"KC_MINS", '-', '_'},
	Equals:             {"KC_EQL", '=', '+'},
	Space:              {"KC_SPC", ' ', ' '},
	Enter:              {"KC_ENT", '\n', '\n'},
	Tab:                {"KC_TAB", '\t', '\t'},
}

var keyCodeByToken = func() map[string]KeyCode {
	m := make(map[string]KeyCode, numKeyCodes)
	for kc := KeyCode(0); kc < numKeyCodes; kc++ {
		m[keyCodeTable[kc].token] = kc
	}
	return m
}()

// AllKeyCodes returns every key code in declaration order.
func AllKeyCodes() []KeyCode {
	out := make([]KeyCode, numKeyCodes)
	for i := range out {
		out[i] = KeyCode(i)
	}
	return out
}

// TypedChar is the character produced without shift.
func (kc KeyCode) TypedChar() Char { return keyCodeTable[kc].typed }

// ShiftedChar is the character produced with shift held.
func (kc KeyCode) ShiftedChar() Char { return keyCodeTable[kc].shifted }

// Token returns the firmware keycode name, e.g. "KC_COMM".
func (kc KeyCode) Token() string { return keyCodeTable[kc].token }

func (kc KeyCode) String() string { return kc.Token() }

// Valid reports whether kc is one of the known key codes.
func (kc KeyCode) Valid() bool { return kc < numKeyCodes }

// KeyCodeFromToken looks up a key code by its firmware name.
func KeyCodeFromToken(token string) (KeyCode, bool) {
	kc, ok := keyCodeByToken[token]
	return kc, ok
}
