// Package paths provides XDG-compliant path resolution for codex-wakatime,
// plus the home directories of the two ecosystems it bridges.
//
// Resolution order for the tool's own directories:
// 1. CODEX_WAKATIME_HOME (portable root) → $CODEX_WAKATIME_HOME/{config,state,cache}
// 2. XDG env vars → $XDG_*_HOME/codex-wakatime
// 3. Platform defaults → ~/.config/codex-wakatime, ~/.local/state/codex-wakatime, etc.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "codex-wakatime"

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if appHome := os.Getenv("CODEX_WAKATIME_HOME"); appHome != "" {
		return filepath.Join(appHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if appHome := os.Getenv("CODEX_WAKATIME_HOME"); appHome != "" {
		return filepath.Join(appHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// getCacheHome returns the base cache home directory.
func getCacheHome() string {
	if appHome := os.Getenv("CODEX_WAKATIME_HOME"); appHome != "" {
		return filepath.Join(appHome, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// ConfigDir returns the configuration directory.
// Used for config.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appDirName)
}

// StateDir returns the state directory.
// Used for the rate-limit and dependency state files and the log file.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appDirName)
}

// CacheDir returns the cache directory.
// Used for download staging during wakatime-cli acquisition.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appDirName)
}

// ConfigFile returns the path of the tool's own config file.
func ConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yml")
}

// RateLimitStateFile returns the path of the heartbeat rate-limit state file.
func RateLimitStateFile() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "heartbeat.json")
}

// DependencyStateFile returns the path of the wakatime-cli version-check state file.
func DependencyStateFile() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "wakatime-cli.json")
}

// LogFile returns the path of the plugin log file.
func LogFile() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "codex-wakatime.log")
}

// CodexHome returns the Codex CLI home directory, honoring CODEX_HOME.
func CodexHome() string {
	if codexHome := os.Getenv("CODEX_HOME"); codexHome != "" {
		return codexHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".codex")
	}
	return ""
}

// CodexConfigFile returns the path of the Codex CLI configuration file,
// where the notify hook is registered.
func CodexConfigFile() string {
	home := CodexHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "config.toml")
}

// WakaTimeHome returns the WakaTime home directory, honoring WAKATIME_HOME.
// The cached wakatime-cli binary lives here.
func WakaTimeHome() string {
	if wakaHome := os.Getenv("WAKATIME_HOME"); wakaHome != "" {
		return wakaHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".wakatime")
	}
	return ""
}

// WakaTimeConfigFile returns the path of the WakaTime settings file.
// Per WakaTime convention it lives inside WAKATIME_HOME when that is set,
// and directly in the user's home directory otherwise.
func WakaTimeConfigFile() string {
	if wakaHome := os.Getenv("WAKATIME_HOME"); wakaHome != "" {
		return filepath.Join(wakaHome, ".wakatime.cfg")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".wakatime.cfg")
	}
	return ""
}

// ExpandUser expands a leading tilde in a path.
func ExpandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// EnsureDirs creates the tool's directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		StateDir(),
		CacheDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
