package errors

import (
	"fmt"
	"os/exec"
	"time"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *PluginError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PluginError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// UnsupportedPlatform creates an error for an OS/architecture pair that has
// no known wakatime-cli build.
func UnsupportedPlatform(goos, goarch string) *PluginError {
	return New(ErrCodeUnsupportedPlatform,
		fmt.Sprintf("no wakatime-cli build for platform %s/%s", goos, goarch)).
		WithDetail("os", goos).
		WithDetail("arch", goarch)
}

// ReleaseLookupFailed creates an error for a failed remote release query
func ReleaseLookupFailed(err error) *PluginError {
	return Wrap(err, ErrCodeReleaseLookup, "failed to look up latest wakatime-cli release")
}

// DownloadFailed creates an error for a failed binary download
func DownloadFailed(url string, err error) *PluginError {
	return Wrap(err, ErrCodeDownloadFailed, fmt.Sprintf("failed to download %s", url)).
		WithDetail("url", url)
}

// BinaryUnavailable creates the terminal "no usable wakatime-cli" error
func BinaryUnavailable(reason string) *PluginError {
	return New(ErrCodeBinaryUnavailable, fmt.Sprintf("wakatime-cli unavailable: %s", reason))
}

// CommandTimeout creates an error for a command killed by its deadline
func CommandTimeout(cmd string, timeout time.Duration) *PluginError {
	return New(ErrCodeCommandTimeout, fmt.Sprintf("command timed out after %s: %s", timeout, cmd)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout.String())
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *PluginError {
	pluginErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		pluginErr = pluginErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return pluginErr
}

// StateWriteFailed creates a state persistence error
func StateWriteFailed(path string, err error) *PluginError {
	return Wrap(err, ErrCodeStateWrite, fmt.Sprintf("failed to write state file: %s", path)).
		WithDetail("path", path)
}

// HookInstallFailed creates a hook installation error
func HookInstallFailed(err error) *PluginError {
	return Wrap(err, ErrCodeHookInstall, "failed to install the Codex notify hook")
}

// HookUninstallFailed creates a hook removal error
func HookUninstallFailed(err error) *PluginError {
	return Wrap(err, ErrCodeHookUninstall, "failed to remove the Codex notify hook")
}
