package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/codex-wakatime/errors"
)

func TestLoadFromBytesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(""))
	if err != nil {
		t.Fatalf("Failed to load empty config: %v", err)
	}

	if cfg.Heartbeat.Category != "ai coding" {
		t.Errorf("Expected default category 'ai coding', got '%s'", cfg.Heartbeat.Category)
	}
	if got := cfg.Heartbeat.RateLimitDuration(); got != 60*time.Second {
		t.Errorf("Expected default rate limit 60s, got %v", got)
	}
	if got := cfg.Heartbeat.CommandTimeoutDuration(); got != 30*time.Second {
		t.Errorf("Expected default command timeout 30s, got %v", got)
	}
	if got := cfg.WakaTime.UpdateIntervalDuration(); got != 24*time.Hour {
		t.Errorf("Expected default update interval 24h, got %v", got)
	}
	if cfg.Extractor.StrictExtensions {
		t.Error("Expected strict_extensions to default to false")
	}
}

func TestLoadFromBytesTypedSections(t *testing.T) {
	yamlContent := []byte(`
heartbeat:
  category: coding
  rate_limit: 2m
  command_timeout: 10s
extractor:
  strict_extensions: true
wakatime:
  home: /opt/wakatime
  update_interval: 1h
codex:
  home: /opt/codex
`)

	cfg, err := LoadFromBytes(yamlContent)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Heartbeat.Category != "coding" {
		t.Errorf("Expected category 'coding', got '%s'", cfg.Heartbeat.Category)
	}
	if got := cfg.Heartbeat.RateLimitDuration(); got != 2*time.Minute {
		t.Errorf("Expected rate limit 2m, got %v", got)
	}
	if !cfg.Extractor.StrictExtensions {
		t.Error("Expected strict_extensions to be true")
	}
	if cfg.WakaTime.HomeDir() != "/opt/wakatime" {
		t.Errorf("Expected wakatime home '/opt/wakatime', got '%s'", cfg.WakaTime.HomeDir())
	}
	if cfg.Codex.HomeDir() != "/opt/codex" {
		t.Errorf("Expected codex home '/opt/codex', got '%s'", cfg.Codex.HomeDir())
	}
}

// TestLoggingExtension verifies that the inline logging section is captured
// and can be decoded by its owning package.
func TestLoggingExtension(t *testing.T) {
	yamlContent := []byte(`
heartbeat:
  category: ai coding

logging:
  level: debug
  report_caller: true
`)

	cfg, err := LoadFromBytes(yamlContent)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Extensions == nil {
		t.Fatal("Extensions map should not be nil")
	}
	if _, ok := cfg.Extensions["logging"]; !ok {
		t.Fatal("Expected 'logging' extension to be present")
	}

	type logCfg struct {
		Level        string `yaml:"level"`
		ReportCaller bool   `yaml:"report_caller"`
	}

	var lc logCfg
	if err := cfg.UnmarshalExtension("logging", &lc); err != nil {
		t.Fatalf("Failed to unmarshal logging extension: %v", err)
	}
	if lc.Level != "debug" {
		t.Errorf("Expected level 'debug', got '%s'", lc.Level)
	}
	if !lc.ReportCaller {
		t.Error("Expected report_caller to be true")
	}
}

func TestLoadFromBytesEnvExpansion(t *testing.T) {
	t.Setenv("WAKA_TEST_HOME", "/custom/wakatime")

	yamlContent := []byte(`
wakatime:
  home: ${WAKA_TEST_HOME}
  config_file: ${WAKA_TEST_CFG:-/fallback/.wakatime.cfg}
`)

	cfg, err := LoadFromBytes(yamlContent)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.WakaTime.Home != "/custom/wakatime" {
		t.Errorf("Expected expanded home '/custom/wakatime', got '%s'", cfg.WakaTime.Home)
	}
	if cfg.WakaTime.ConfigFile != "/fallback/.wakatime.cfg" {
		t.Errorf("Expected fallback config file, got '%s'", cfg.WakaTime.ConfigFile)
	}
}

func TestLoadFromBytesSchemaFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"section is not an object", "heartbeat: nope"},
		{"duration is not a string", "heartbeat:\n  rate_limit: 60"},
		{"unknown key inside section", "heartbeat:\n  ratelimit: 60s"},
		{"strict_extensions is not a bool", "extractor:\n  strict_extensions: sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.content))
			if err == nil {
				t.Fatal("Expected schema validation to fail")
			}
			if errors.GetCode(err) != errors.ErrCodeConfigValidation {
				t.Errorf("Expected validation error code, got %s", errors.GetCode(err))
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	cfg.Heartbeat.RateLimit = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected invalid duration to fail validation")
	}

	cfg = &Config{}
	cfg.SetDefaults()
	cfg.Heartbeat.Category = "daydreaming"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected unknown category to fail validation")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	if errors.GetCode(err) != errors.ErrCodeConfigNotFound {
		t.Errorf("Expected config not found code, got %s", errors.GetCode(err))
	}
}

func TestLoadDefaultMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("CODEX_WAKATIME_HOME", t.TempDir())
	t.Setenv("CODEX_WAKATIME_CONFIG", "")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("Expected defaults for a missing config file, got error: %v", err)
	}
	if cfg.Heartbeat.Category != "ai coding" {
		t.Errorf("Expected default category, got '%s'", cfg.Heartbeat.Category)
	}
}

func TestLoadDefaultExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	content := []byte("heartbeat:\n  rate_limit: 45s\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODEX_WAKATIME_CONFIG", path)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("Failed to load config from explicit path: %v", err)
	}
	if got := cfg.Heartbeat.RateLimitDuration(); got != 45*time.Second {
		t.Errorf("Expected rate limit 45s, got %v", got)
	}

	// An explicit path that doesn't exist is an error, unlike the default.
	t.Setenv("CODEX_WAKATIME_CONFIG", filepath.Join(dir, "nope.yml"))
	if _, err := LoadDefault(); err == nil {
		t.Error("Expected an error for a missing explicit config path")
	}
}
