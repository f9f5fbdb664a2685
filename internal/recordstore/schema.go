package recordstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) for
// the FieldsJSON payload of a record. Label and receipt payloads share
// one schema with every field optional; unknown documents carry an empty
// object.
func BuildRecordJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"price":    map[string]any{"type": "number", "minimum": 0},
			"quantity": map[string]any{"type": "integer", "minimum": 1},
			"vintage":  vintageProp(),
		},
		"required": []string{"name", "price", "quantity"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			// label fields
			"name":           map[string]any{"type": "string", "minLength": 1},
			"vintage":        vintageProp(),
			"producer":       map[string]any{"type": "string"},
			"region":         map[string]any{"type": "string"},
			"appellation":    map[string]any{"type": "string"},
			"variety":        map[string]any{"type": "string"},
			"alcohol":        map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"volume":         map[string]any{"type": "string"},
			"classification": map[string]any{"type": "string"},
			// receipt fields
			"store":          map[string]any{"type": "string"},
			"date":           map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"time":           map[string]any{"type": "string", "pattern": `^\d{2}:\d{2}(:\d{2})?$`},
			"items":          map[string]any{"type": "array", "items": item},
			"subtotal":       map[string]any{"type": "number"},
			"tax":            map[string]any{"type": "number"},
			"total":          map[string]any{"type": "number"},
			"payment_method": map[string]any{"type": "string"},
		},
	}
}

func vintageProp() map[string]any {
	return map[string]any{"type": "integer", "minimum": 1950, "maximum": 2039}
}

// ValidateFieldsJSON validates a FieldsJSON payload before it is written
// to the store.
func ValidateFieldsJSON(data []byte) error {
	b, err := json.Marshal(BuildRecordJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("fields do not match schema: %w", err)
	}
	return nil
}
