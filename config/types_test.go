package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDurationAccessors(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"empty uses fallback", "", time.Minute, time.Minute},
		{"valid duration", "90s", time.Minute, 90 * time.Second},
		{"zero allowed", "0s", time.Minute, 0},
		{"garbage uses fallback", "soon", time.Minute, time.Minute},
		{"negative uses fallback", "-5s", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := durationOrDefault(tt.value, tt.fallback); got != tt.want {
				t.Errorf("durationOrDefault(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestUnmarshalExtensionMissingKey(t *testing.T) {
	cfg := &Config{}

	type target struct {
		Level string `yaml:"level"`
	}
	var tgt target
	if err := cfg.UnmarshalExtension("logging", &tgt); err != nil {
		t.Fatalf("Missing extension key should not error: %v", err)
	}
	if tgt.Level != "" {
		t.Errorf("Expected zero value for missing extension, got '%s'", tgt.Level)
	}
}

func TestSettingsFileOverride(t *testing.T) {
	w := WakaTimeConfig{ConfigFile: "/etc/wakatime.cfg"}
	if got := w.SettingsFile(); got != "/etc/wakatime.cfg" {
		t.Errorf("Expected override to win, got '%s'", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	w = WakaTimeConfig{ConfigFile: "~/custom.cfg"}
	if got := w.SettingsFile(); got != filepath.Join(home, "custom.cfg") {
		t.Errorf("Expected tilde expansion, got '%s'", got)
	}

	t.Setenv("WAKATIME_HOME", "/srv/waka")
	w = WakaTimeConfig{}
	if got := w.SettingsFile(); got != "/srv/waka/.wakatime.cfg" {
		t.Errorf("Expected WAKATIME_HOME settings file, got '%s'", got)
	}
}

func TestGenerateSchemaMentionsSections(t *testing.T) {
	data, err := GenerateSchema()
	if err != nil {
		t.Fatalf("Failed to generate schema: %v", err)
	}

	for _, key := range []string{"heartbeat", "extractor", "wakatime", "codex", "strict_extensions"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected schema to mention %q", key)
		}
	}
	if strings.Contains(string(data), "Extensions") {
		t.Error("Extensions field should be excluded from the schema")
	}
}
