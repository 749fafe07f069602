package config

import (
	"fmt"
	"time"

	"github.com/grovetools/codex-wakatime/pkg/paths"
	"github.com/mitchellh/mapstructure"
)

// Defaults applied by SetDefaults.
const (
	DefaultCategory       = "ai coding"
	DefaultRateLimit      = "60s"
	DefaultCommandTimeout = "30s"
	DefaultUpdateInterval = "24h"
)

// Categories wakatime-cli accepts for --category.
var validCategories = map[string]bool{
	"coding":         true,
	"building":       true,
	"indexing":       true,
	"debugging":      true,
	"browsing":       true,
	"running tests":  true,
	"writing tests":  true,
	"manual testing": true,
	"writing docs":   true,
	"code reviewing": true,
	"researching":    true,
	"learning":       true,
	"designing":      true,
	"ai coding":      true,
}

// HeartbeatConfig controls rate limiting and heartbeat dispatch.
type HeartbeatConfig struct {
	Category       string `yaml:"category,omitempty" jsonschema:"description=WakaTime category reported with every heartbeat,default=ai coding"`
	RateLimit      string `yaml:"rate_limit,omitempty" jsonschema:"description=Minimum interval between heartbeat batches as a Go duration,default=60s"`
	CommandTimeout string `yaml:"command_timeout,omitempty" jsonschema:"description=Timeout for a single wakatime-cli invocation as a Go duration,default=30s"`
}

// ExtractorConfig controls how file activity is extracted from messages.
type ExtractorConfig struct {
	StrictExtensions bool `yaml:"strict_extensions,omitempty" jsonschema:"description=Only report files whose extension is in the tracked set,default=false"`
}

// WakaTimeConfig controls wakatime-cli resolution and the shared
// WakaTime settings file.
type WakaTimeConfig struct {
	Home           string `yaml:"home,omitempty" jsonschema:"description=Override for the WakaTime home directory (default $WAKATIME_HOME or ~/.wakatime)"`
	ConfigFile     string `yaml:"config_file,omitempty" jsonschema:"description=Path to the shared WakaTime settings file (default ~/.wakatime.cfg)"`
	UpdateInterval string `yaml:"update_interval,omitempty" jsonschema:"description=How often to check for a newer wakatime-cli release as a Go duration,default=24h"`
}

// CodexConfig controls where the Codex CLI integration looks for its files.
type CodexConfig struct {
	Home string `yaml:"home,omitempty" jsonschema:"description=Override for the Codex home directory (default $CODEX_HOME or ~/.codex)"`
}

// Config represents the config.yml configuration.
type Config struct {
	Heartbeat HeartbeatConfig `yaml:"heartbeat,omitempty" jsonschema:"description=Rate limiting and heartbeat dispatch settings"`
	Extractor ExtractorConfig `yaml:"extractor,omitempty" jsonschema:"description=File activity extraction settings"`
	WakaTime  WakaTimeConfig  `yaml:"wakatime,omitempty" jsonschema:"description=wakatime-cli resolution settings"`
	Codex     CodexConfig     `yaml:"codex,omitempty" jsonschema:"description=Codex CLI integration settings"`

	// Extensions captures all other top-level keys. The logging section
	// lives here and is decoded by the logging package itself.
	Extensions map[string]interface{} `yaml:",inline" jsonschema:"-"`
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Heartbeat.Category == "" {
		c.Heartbeat.Category = DefaultCategory
	}
	if c.Heartbeat.RateLimit == "" {
		c.Heartbeat.RateLimit = DefaultRateLimit
	}
	if c.Heartbeat.CommandTimeout == "" {
		c.Heartbeat.CommandTimeout = DefaultCommandTimeout
	}
	if c.WakaTime.UpdateInterval == "" {
		c.WakaTime.UpdateInterval = DefaultUpdateInterval
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// Extensions map into a strongly-typed struct provided by the caller.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// WakaTimeDebug reports whether the shared WakaTime settings file turns
// debug mode on. Every WakaTime plugin on the machine honors this switch.
func (c *Config) WakaTimeDebug() bool {
	settings, err := WakaTimeSettings(c.WakaTime.SettingsFile())
	if err != nil {
		return false
	}
	return settings.Debug
}

// RateLimitDuration returns the parsed minimum interval between
// heartbeat batches.
func (h HeartbeatConfig) RateLimitDuration() time.Duration {
	return durationOrDefault(h.RateLimit, 60*time.Second)
}

// CommandTimeoutDuration returns the parsed per-invocation timeout for
// wakatime-cli.
func (h HeartbeatConfig) CommandTimeoutDuration() time.Duration {
	return durationOrDefault(h.CommandTimeout, 30*time.Second)
}

// UpdateIntervalDuration returns the parsed interval between remote
// version checks for wakatime-cli.
func (w WakaTimeConfig) UpdateIntervalDuration() time.Duration {
	return durationOrDefault(w.UpdateInterval, 24*time.Hour)
}

// SettingsFile returns the WakaTime settings file path, honoring the
// config override.
func (w WakaTimeConfig) SettingsFile() string {
	if w.ConfigFile != "" {
		return paths.ExpandUser(w.ConfigFile)
	}
	return paths.WakaTimeConfigFile()
}

// HomeDir returns the directory where wakatime-cli binaries live.
func (w WakaTimeConfig) HomeDir() string {
	if w.Home != "" {
		return paths.ExpandUser(w.Home)
	}
	return paths.WakaTimeHome()
}

// HomeDir returns the Codex home directory.
func (c CodexConfig) HomeDir() string {
	if c.Home != "" {
		return paths.ExpandUser(c.Home)
	}
	return paths.CodexHome()
}

func durationOrDefault(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
