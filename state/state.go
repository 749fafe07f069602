// Package state reads and writes the small JSON state files that are the
// plugin's only durable memory across invocations.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Read loads the JSON state file at path into v.
// Returns os.ErrNotExist (wrapped) when the file is missing and a parse error
// when the content is not valid JSON. Callers treat both the same way: state
// is absent, never partially trusted.
func Read(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("state file %s: %w", path, err)
		}
		return fmt.Errorf("read state file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse state file %s: %w", path, err)
	}

	return nil
}

// Write persists v as indented JSON at path, creating parent directories as
// needed. The write is staged through a temp file and renamed so a crash
// never leaves a half-written state file behind.
func Write(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close state file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
