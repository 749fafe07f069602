// Package config loads the plugin's own YAML configuration and the shared
// WakaTime settings file. The config is loaded once at startup and injected
// into every component at construction.
package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/grovetools/codex-wakatime/errors"
	"github.com/grovetools/codex-wakatime/pkg/paths"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	return LoadFromBytes(data)
}

// LoadDefault loads the configuration from the default location:
// CODEX_WAKATIME_CONFIG if set, otherwise config.yml in the config
// directory. A missing default file is not an error; the plugin runs
// on defaults alone.
func LoadDefault() (*Config, error) {
	if path := os.Getenv("CODEX_WAKATIME_CONFIG"); path != "" {
		return Load(path)
	}

	path := paths.ConfigFile()
	if path == "" {
		cfg := &Config{}
		cfg.SetDefaults()
		return cfg, nil
	}

	cfg, err := Load(path)
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeConfigNotFound {
			cfg = &Config{}
			cfg.SetDefaults()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes parses configuration from a byte array.
func LoadFromBytes(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	// Validate the raw document against the schema before decoding into
	// the typed struct, so type mismatches surface with field locations.
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
	}

	if raw != nil {
		validator, err := NewSchemaValidator()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
		}
		if err := validator.Validate(raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
		}
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
	}

	// Set defaults
	config.SetDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
