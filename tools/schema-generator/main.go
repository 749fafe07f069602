// Generates the JSON schema for config.yml, for editor integration via
// yaml-language-server. The embedded validator reflects the same types at
// load time, so this file is documentation, not a source of truth.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/codex-wakatime/config"
)

func main() {
	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	outputDir := "schema/definitions"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	outputPath := filepath.Join(outputDir, "config.schema.json")
	if err := os.WriteFile(outputPath, schemaBytes, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated config schema at %s", outputPath)
}
