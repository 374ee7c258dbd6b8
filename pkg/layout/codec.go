package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// Fixed header values for the Ferris Sweep QMK keymap format.
const (
	KeyboardName = "ferris/sweep"
	KeymapName   = "sweep"
	LayoutName   = "LAYOUT_split_3x5_2"
)

type layoutFile struct {
	Keyboard string     `json:"keyboard"`
	Keymap   string     `json:"keymap"`
	Layout   string     `json:"layout"`
	Layers   [][]string `json:"layers"`
}

// MarshalJSON encodes the layout as a QMK keymap JSON object.
func (l Layout) MarshalJSON() ([]byte, error) {
	file := layoutFile{
		Keyboard: KeyboardName,
		Keymap:   KeymapName,
		Layout:   LayoutName,
		Layers:   make([][]string, len(l.Layers)),
	}
	for i, layer := range l.Layers {
		tokens := make([]string, NumKeys)
		for pos, k := range layer {
			tokens[pos] = k.Token()
		}
		file.Layers[i] = tokens
	}
	return json.Marshal(file)
}

// UnmarshalJSON decodes a QMK keymap JSON object. Any failure is a *ParseError
// and leaves the receiver unchanged.
func (l *Layout) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Parse decodes layout JSON. Decoding is total-or-fail.
func Parse(data []byte) (Layout, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return Layout{}, &ParseError{Kind: WrongType, Expected: "JSON object", Found: err.Error()}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return Layout{}, wrongType("", "object", root)
	}

	if err := requireString(obj, "keyboard", KeyboardName); err != nil {
		return Layout{}, err
	}
	if err := requireString(obj, "keymap", ""); err != nil {
		return Layout{}, err
	}
	if err := requireString(obj, "layout", LayoutName); err != nil {
		return Layout{}, err
	}

	rawLayers, ok := obj["layers"]
	if !ok {
		return Layout{}, &ParseError{Kind: MissingValue, Field: "layers"}
	}
	layerList, ok := rawLayers.([]any)
	if !ok {
		return Layout{}, wrongType("layers", "array", rawLayers)
	}
	if len(layerList) == 0 {
		return Layout{}, &ParseError{Kind: WrongLength, Field: "layers", Expected: "at least 1", Found: "0"}
	}

	layers := make([]Layer, len(layerList))
	for i, rawLayer := range layerList {
		field := fmt.Sprintf("layers[%d]", i)
		tokens, ok := rawLayer.([]any)
		if !ok {
			return Layout{}, wrongType(field, "array", rawLayer)
		}
		if len(tokens) != NumKeys {
			return Layout{}, &ParseError{
				Kind:     WrongLength,
				Field:    field,
				Expected: fmt.Sprint(NumKeys),
				Found:    fmt.Sprint(len(tokens)),
			}
		}
		for pos, rawToken := range tokens {
			keyField := fmt.Sprintf("%s[%d]", field, pos)
			token, ok := rawToken.(string)
			if !ok {
				return Layout{}, wrongType(keyField, "string", rawToken)
			}
			key, err := ParseKey(token)
			if err != nil {
				if pe, ok := err.(*ParseError); ok {
					pe.Field = keyField
				}
				return Layout{}, err
			}
			layers[i][pos] = key
		}
	}

	return Layout{Layers: layers}, nil
}

// requireString checks obj[field] is a string, and equal to want when want is non-empty.
func requireString(obj map[string]any, field, want string) error {
	raw, ok := obj[field]
	if !ok {
		return &ParseError{Kind: MissingValue, Field: field}
	}
	s, ok := raw.(string)
	if !ok {
		return wrongType(field, "string", raw)
	}
	if want != "" && s != want {
		return &ParseError{Kind: WrongValue, Field: field, Expected: want, Found: s}
	}
	return nil
}

func wrongType(field, expected string, found any) *ParseError {
	return &ParseError{Kind: WrongType, Field: field, Expected: expected, Found: jsonKind(found)}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ReadFile reads and decodes a layout file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	return l, nil
}

// Marshal encodes a layout as indented JSON with a trailing newline, the
// format WriteFile produces.
func Marshal(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile encodes a layout as indented JSON.
func WriteFile(path string, l Layout) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}
