package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/codex-wakatime/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. codex-wakatime runs with defaults; create %s to customize.\n", configHint(err))
		return err

	case errors.ErrCodeConfigValidation, errors.ErrCodeConfigInvalid:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'codex-wakatime config validate' for details.\n")
		return err

	case errors.ErrCodeBinaryUnavailable, errors.ErrCodeDownloadFailed, errors.ErrCodeReleaseLookup:
		fmt.Fprintf(os.Stderr, "❌ wakatime-cli is not available: %v\n", err)
		fmt.Fprintf(os.Stderr, "Install it manually (https://github.com/wakatime/wakatime-cli) or check your network.\n")
		return err

	case errors.ErrCodeUnsupportedPlatform:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Install wakatime-cli on PATH to use codex-wakatime on this platform.\n")
		return err

	case errors.ErrCodeHookInstall, errors.ErrCodeHookUninstall:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Check that the Codex config file is writable.\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		if h.Verbose {
			if pluginErr, ok := err.(*errors.PluginError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", pluginErr.ToJSON())
			}
		}
		return err
	}
}

func configHint(err error) string {
	if pluginErr, ok := err.(*errors.PluginError); ok {
		if path, ok := pluginErr.Details["path"].(string); ok {
			return path
		}
	}
	return "the config file"
}
