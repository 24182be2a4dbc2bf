package sections

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// databaseSchema constrains the on-disk section database shape enough
// to catch a corrupted or hand-edited file before it's merged into the
// in-memory entries.
var databaseSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []string{"version", "sections"},
	"properties": map[string]any{
		"version": map[string]any{"type": "integer"},
		"sections": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":     "object",
				"required": []string{"variants", "usage_count"},
				"properties": map[string]any{
					"variants":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"usage_count":        map[string]any{"type": "integer", "minimum": 0},
					"embedding_centroid": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
				},
			},
		},
		"learning": map[string]any{"type": "object"},
	},
}

// validateAgainstSchema checks raw section-database JSON against
// databaseSchema before it is trusted for merging.
func validateAgainstSchema(data []byte) error {
	schemaJSON, err := json.Marshal(databaseSchema)
	if err != nil {
		return fmt.Errorf("marshal section database schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("sections_database.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("add section database schema: %w", err)
	}
	schema, err := compiler.Compile("sections_database.schema.json")
	if err != nil {
		return fmt.Errorf("compile section database schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal section database: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("section database does not match schema: %w", err)
	}
	return nil
}
