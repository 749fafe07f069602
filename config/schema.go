package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the plugin configuration.
// It reflects the Config struct from types.go; the Extensions field is
// excluded via its jsonschema tag.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown keys inside known sections should fail validation.
		AllowAdditionalProperties: false,
		// Expand struct references instead of using $ref for a cleaner root.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "codex-wakatime configuration"
	schema.Description = "Schema for the codex-wakatime config.yml."

	// Extension sections (like logging) live inline at the top level,
	// so the root object stays open while the known sections are closed.
	schema.AdditionalProperties = nil

	return json.MarshalIndent(schema, "", "  ")
}
