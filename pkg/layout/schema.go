package layout

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "sweep://layout.schema.json"

// layoutSchema describes the keymap file shape. Token syntax is checked by
// the schema pattern; whether a name is a known key code is left to Parse.
const layoutSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["keyboard", "keymap", "layout", "layers"],
  "properties": {
    "keyboard": {"const": "ferris/sweep"},
    "keymap": {"type": "string"},
    "layout": {"const": "LAYOUT_split_3x5_2"},
    "layers": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "array",
        "minItems": 34,
        "maxItems": 34,
        "items": {
          "type": "string",
          "pattern": "^(KC_[A-Z0-9_]+|LSFT\\(KC_[A-Z0-9_]+\\)|OSM\\(MOD_LSFT\\)|OSL\\([0-9]+\\))$"
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(layoutSchema)); err != nil {
		return nil, fmt.Errorf("failed to add layout schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateSchema checks raw layout JSON against the keymap file schema.
// It reports every structural problem at once, which Parse does not.
func ValidateSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("layout does not match schema: %w", err)
	}
	return nil
}
