package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/codex-wakatime/cli"
	"github.com/grovetools/codex-wakatime/command"
	"github.com/grovetools/codex-wakatime/config"
	"github.com/grovetools/codex-wakatime/installer"
	"github.com/grovetools/codex-wakatime/pkg/paths"
	"github.com/grovetools/codex-wakatime/ratelimit"
	"github.com/grovetools/codex-wakatime/state"
	"github.com/grovetools/codex-wakatime/theme"
	"github.com/grovetools/codex-wakatime/version"
	"github.com/grovetools/codex-wakatime/wakatime"
)

const cliVersionTimeout = 5 * time.Second

// StatusOutput is the machine-readable report of the plugin's setup.
type StatusOutput struct {
	Version          string   `json:"version"`
	CLIPresent       bool     `json:"wakatime_cli_present"`
	CLIPath          string   `json:"wakatime_cli_path,omitempty"`
	CLIVersion       string   `json:"wakatime_cli_version,omitempty"`
	APIKeyConfigured bool     `json:"api_key_configured"`
	SettingsFile     string   `json:"settings_file"`
	HookInstalled    bool     `json:"hook_installed"`
	HookCommand      []string `json:"hook_command,omitempty"`
	CodexConfig      string   `json:"codex_config"`
	LastHeartbeat    string   `json:"last_heartbeat,omitempty"`
	ConfigFile       string   `json:"config_file"`
	LogFile          string   `json:"log_file"`
}

// NewStatusCmd creates the `status` command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the WakaTime integration",
		Long: `Reports whether everything the plugin needs is in place: the
wakatime-cli binary, the WakaTime API key, the Codex notify hook, and
when the last heartbeat was sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg := loadConfigOrDefaults(opts)

			status := collectStatus(cmd, cfg)

			if opts.JSONOutput {
				jsonData, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal status: %w", err)
				}
				fmt.Println(string(jsonData))
				return nil
			}

			printStatus(status)
			return nil
		},
	}
}

func collectStatus(cmd *cobra.Command, cfg *config.Config) StatusOutput {
	status := StatusOutput{
		Version:      version.Version,
		SettingsFile: cfg.WakaTime.SettingsFile(),
		CodexConfig:  codexConfigPath(cfg),
		ConfigFile:   paths.ConfigFile(),
		LogFile:      paths.LogFile(),
	}

	resolver := wakatime.NewResolver(wakatime.ResolverConfig{
		InstallDir: cfg.WakaTime.HomeDir(),
		StatePath:  paths.DependencyStateFile(),
	})
	if path, ok := resolver.InstalledPath(); ok {
		status.CLIPresent = true
		status.CLIPath = path
		status.CLIVersion = cliVersion(cmd, path)
	}

	if settings, err := config.WakaTimeSettings(status.SettingsFile); err == nil {
		status.APIKeyConfigured = settings.HasAPIKey
	}

	if hook, err := installer.InspectHook(installer.Config{ConfigPath: status.CodexConfig}); err == nil {
		status.HookInstalled = hook.Managed
		status.HookCommand = hook.Command
	}

	var rl ratelimit.State
	if err := state.Read(paths.RateLimitStateFile(), &rl); err == nil && !rl.LastHeartbeatAt.IsZero() {
		status.LastHeartbeat = rl.LastHeartbeatAt.Format(time.RFC3339)
	}

	return status
}

// cliVersion asks the installed binary for its version. Failures degrade to
// an empty string; status must work without a functioning binary.
func cliVersion(cmd *cobra.Command, bin string) string {
	runner := command.NewRunner(&command.RealExecutor{}, cliVersionTimeout)
	out, err := runner.Run(cmd.Context(), bin, "--version")
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line
}

func printStatus(status StatusOutput) {
	t := theme.DefaultTheme

	fmt.Printf("%s %s\n\n", t.Bold.Render("codex-wakatime"), status.Version)

	if status.CLIPresent {
		detail := status.CLIPath
		if status.CLIVersion != "" {
			detail = fmt.Sprintf("%s (%s)", status.CLIPath, status.CLIVersion)
		}
		printCheck(true, "wakatime-cli", detail)
	} else {
		printCheck(false, "wakatime-cli", "not installed (downloaded on first heartbeat)")
	}

	if status.APIKeyConfigured {
		printCheck(true, "API key", "configured in "+status.SettingsFile)
	} else {
		printCheck(false, "API key", "missing, add api_key to "+status.SettingsFile)
	}

	if status.HookInstalled {
		printCheck(true, "Codex hook", "installed in "+status.CodexConfig)
	} else if len(status.HookCommand) > 0 {
		printCheck(false, "Codex hook", fmt.Sprintf("notify runs %v, run 'codex-wakatime --install' to take over", status.HookCommand))
	} else {
		printCheck(false, "Codex hook", "not installed, run 'codex-wakatime --install'")
	}

	fmt.Println()
	if status.LastHeartbeat != "" {
		if at, err := time.Parse(time.RFC3339, status.LastHeartbeat); err == nil {
			fmt.Printf("  Last heartbeat: %s (%s)\n", formatAgo(at), status.LastHeartbeat)
		} else {
			fmt.Printf("  Last heartbeat: %s\n", status.LastHeartbeat)
		}
	} else {
		fmt.Printf("  Last heartbeat: %s\n", t.Muted.Render("never"))
	}

	configNote := ""
	if _, err := os.Stat(status.ConfigFile); err != nil {
		configNote = " " + t.Muted.Render("(not found, using defaults)")
	}
	fmt.Printf("  Config:         %s%s\n", status.ConfigFile, configNote)
	fmt.Printf("  Log:            %s\n", status.LogFile)
}

func printCheck(ok bool, label, detail string) {
	t := theme.DefaultTheme
	mark := t.Success.Render("✓")
	if !ok {
		mark = t.Error.Render("✗")
	}
	fmt.Printf("  %s %-13s %s\n", mark, label, detail)
}

func formatAgo(at time.Time) string {
	d := time.Since(at)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
