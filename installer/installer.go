// Package installer manages the notify hook in the Codex CLI config that
// points at this binary. The config is handled as a raw TOML key map so
// every unrelated setting survives the round trip untouched.
package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/codex-wakatime/errors"
	"github.com/grovetools/codex-wakatime/logging"
	"github.com/grovetools/codex-wakatime/pkg/paths"
)

// Config points the installer at a Codex config file and the binary to
// register. Zero values use the real environment.
type Config struct {
	// ConfigPath is the Codex config.toml location.
	ConfigPath string

	// ExecutablePath is the binary the hook should invoke.
	ExecutablePath string
}

func (c Config) withDefaults() (Config, error) {
	if c.ConfigPath == "" {
		c.ConfigPath = paths.CodexConfigFile()
	}
	if c.ExecutablePath == "" {
		exe, err := os.Executable()
		if err != nil {
			return c, fmt.Errorf("resolve own executable: %w", err)
		}
		c.ExecutablePath = exe
	}

	abs, err := filepath.Abs(c.ExecutablePath)
	if err != nil {
		return c, fmt.Errorf("resolve executable path: %w", err)
	}
	c.ExecutablePath = abs
	return c, nil
}

// Install writes notify = ["<this binary>"] into the Codex config,
// preserving every other key.
func Install(cfg Config) error {
	log := logging.NewLogger("installer")

	cfg, err := cfg.withDefaults()
	if err != nil {
		return errors.HookInstallFailed(err)
	}

	raw, mode, err := readConfig(cfg.ConfigPath)
	if err != nil {
		return errors.HookInstallFailed(err)
	}

	current := notifyCommand(raw)
	if len(current) == 1 && current[0] == cfg.ExecutablePath {
		log.WithField("config", cfg.ConfigPath).Info("Codex notify hook already installed")
		return nil
	}
	if len(current) > 0 {
		log.WithField("notify", current).Warn("Replacing existing notify command")
	}

	raw["notify"] = []string{cfg.ExecutablePath}

	if err := writeConfig(cfg.ConfigPath, raw, mode); err != nil {
		return errors.HookInstallFailed(err)
	}

	log.WithFields(logrus.Fields{
		"config": cfg.ConfigPath,
		"hook":   cfg.ExecutablePath,
	}).Info("Installed Codex notify hook")
	return nil
}

// Uninstall removes the notify hook when it belongs to this tool. A notify
// command pointing at anything else is left alone.
func Uninstall(cfg Config) error {
	log := logging.NewLogger("installer")

	cfg, err := cfg.withDefaults()
	if err != nil {
		return errors.HookUninstallFailed(err)
	}

	raw, mode, err := readConfig(cfg.ConfigPath)
	if err != nil {
		return errors.HookUninstallFailed(err)
	}

	current := notifyCommand(raw)
	if len(current) == 0 {
		log.Info("No Codex notify hook configured")
		return nil
	}
	if !referencesBinary(current, cfg.ExecutablePath) {
		log.WithField("notify", current).Warn("notify is not managed by codex-wakatime, leaving it in place")
		return nil
	}

	delete(raw, "notify")

	if err := writeConfig(cfg.ConfigPath, raw, mode); err != nil {
		return errors.HookUninstallFailed(err)
	}

	log.WithField("config", cfg.ConfigPath).Info("Removed Codex notify hook")
	return nil
}

// HookState describes how the Codex notify hook currently relates to this
// binary.
type HookState struct {
	// Command is the configured notify command, nil when none is set.
	Command []string

	// Managed reports whether the command invokes this tool.
	Managed bool
}

// InspectHook reports the current notify hook without modifying anything.
func InspectHook(cfg Config) (HookState, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return HookState{}, err
	}

	raw, _, err := readConfig(cfg.ConfigPath)
	if err != nil {
		return HookState{}, err
	}

	cmd := notifyCommand(raw)
	return HookState{
		Command: cmd,
		Managed: len(cmd) > 0 && referencesBinary(cmd, cfg.ExecutablePath),
	}, nil
}

// readConfig loads the TOML file as a raw key map. A missing file yields an
// empty map and the default mode.
func readConfig(path string) (map[string]interface{}, os.FileMode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, 0644, nil
		}
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	mode := os.FileMode(0644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, mode, nil
}

// writeConfig replaces the config atomically, keeping the previous file
// mode.
func writeConfig(path string, raw map[string]interface{}, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}

	return nil
}

// notifyCommand decodes the notify key, tolerating both the array form and
// a bare string.
func notifyCommand(raw map[string]interface{}) []string {
	value, ok := raw["notify"]
	if !ok {
		return nil
	}

	var cmd []string
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cmd,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil
	}
	if err := decoder.Decode(value); err != nil {
		return nil
	}
	return cmd
}

// referencesBinary reports whether the notify command invokes this tool,
// matched by binary name so a moved or rebuilt install still uninstalls.
func referencesBinary(cmd []string, executable string) bool {
	name := filepath.Base(executable)
	for _, part := range cmd {
		if filepath.Base(part) == name {
			return true
		}
	}
	return false
}
