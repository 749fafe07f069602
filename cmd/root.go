// Package cmd implements the codex-wakatime command tree.
package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grovetools/codex-wakatime/cli"
	"github.com/grovetools/codex-wakatime/command"
	"github.com/grovetools/codex-wakatime/config"
	"github.com/grovetools/codex-wakatime/extract"
	"github.com/grovetools/codex-wakatime/heartbeat"
	"github.com/grovetools/codex-wakatime/installer"
	"github.com/grovetools/codex-wakatime/logging"
	"github.com/grovetools/codex-wakatime/notification"
	"github.com/grovetools/codex-wakatime/pkg/paths"
	"github.com/grovetools/codex-wakatime/pkg/profiling"
	"github.com/grovetools/codex-wakatime/ratelimit"
	"github.com/grovetools/codex-wakatime/turn"
	"github.com/grovetools/codex-wakatime/wakatime"
)

// NewRootCmd builds the codex-wakatime command tree. The root command itself
// is the Codex notify hook: it takes the notification JSON as its single
// argument and reports the turn to WakaTime.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"codex-wakatime [notification-json]",
		"WakaTime heartbeats for Codex CLI sessions",
	)
	rootCmd.Long = `codex-wakatime is a Codex notify hook that reports coding activity to
WakaTime. Codex invokes it once per completed agent turn with a JSON
notification; the hook extracts the files the turn touched and sends one
heartbeat per file through wakatime-cli.

Examples:
  # Register the notify hook in $CODEX_HOME/config.toml
  codex-wakatime --install

  # Inspect the current setup
  codex-wakatime status

  # Follow the plugin log
  codex-wakatime logs -f
`
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.RunE = runRootE

	rootCmd.Flags().Bool("install", false, "Install the Codex notify hook and exit")
	rootCmd.Flags().Bool("uninstall", false, "Remove the Codex notify hook and exit")

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun
	rootCmd.PersistentPostRun = profiler.PostRun

	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewLogsCmd())
	rootCmd.AddCommand(NewConfigCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)

	return rootCmd
}

func runRootE(cmd *cobra.Command, args []string) error {
	opts := cli.GetOptions(cmd)
	handler := cli.NewErrorHandler(opts.Verbose)

	install, _ := cmd.Flags().GetBool("install")
	uninstall, _ := cmd.Flags().GetBool("uninstall")

	switch {
	case install && uninstall:
		return fmt.Errorf("--install and --uninstall are mutually exclusive")
	case install:
		cfg := loadConfigOrDefaults(opts)
		path := codexConfigPath(cfg)
		if err := installer.Install(installer.Config{ConfigPath: path}); err != nil {
			return handler.Handle(err)
		}
		pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
		pretty.Success("Codex notify hook installed")
		pretty.Path("Config", path)
		return nil
	case uninstall:
		cfg := loadConfigOrDefaults(opts)
		path := codexConfigPath(cfg)
		if err := installer.Uninstall(installer.Config{ConfigPath: path}); err != nil {
			return handler.Handle(err)
		}
		pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
		st, err := installer.InspectHook(installer.Config{ConfigPath: path})
		if err == nil && len(st.Command) > 0 {
			pretty.WarnPretty("notify is managed by another tool, left in place")
		} else {
			pretty.Success("Codex notify hook removed")
		}
		return nil
	}

	if len(args) == 0 {
		return cmd.Help()
	}

	return handleNotification(cmd.Context(), opts, args[0])
}

// handleNotification runs the turn pipeline for one notification payload.
// Unusable input never fails the invocation: the hook must not be able to
// break the agent turn that triggered it.
func handleNotification(ctx context.Context, opts cli.CommandOptions, payload string) error {
	log := logging.NewLogger("cli")

	n, err := notification.Parse([]byte(payload))
	if err != nil {
		log.WithError(err).Debug("Ignoring unparseable notification")
		return nil
	}

	cfg := loadConfigOrDefaults(opts)

	if ctx == nil {
		ctx = context.Background()
	}

	return newOrchestrator(cfg).HandleTurn(ctx, n)
}

// loadConfigOrDefaults loads the tool config, falling back to defaults on
// any load error so a broken config file degrades rather than aborts.
func loadConfigOrDefaults(opts cli.CommandOptions) *config.Config {
	cfg, err := cli.LoadConfig(opts)
	if err != nil {
		logging.NewLogger("cli").WithError(err).Warn("Config unusable, continuing with defaults")
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	return cfg
}

// newOrchestrator wires the production turn pipeline from config.
func newOrchestrator(cfg *config.Config) *turn.Orchestrator {
	gate := ratelimit.New(paths.RateLimitStateFile(), cfg.Heartbeat.RateLimitDuration())

	resolver := wakatime.NewResolver(wakatime.ResolverConfig{
		InstallDir:     cfg.WakaTime.HomeDir(),
		StatePath:      paths.DependencyStateFile(),
		UpdateInterval: cfg.WakaTime.UpdateIntervalDuration(),
	})

	extractor := extract.New(extract.Options{
		StrictExtensions: cfg.Extractor.StrictExtensions,
	})

	debug := cfg.WakaTimeDebug()
	timeout := cfg.Heartbeat.CommandTimeoutDuration()

	return turn.New(
		turn.Config{Category: cfg.Heartbeat.Category},
		gate,
		resolver,
		extractor,
		func(bin string) turn.Sender {
			return heartbeat.NewDispatcher(bin, &command.RealExecutor{}, heartbeat.Options{
				Timeout: timeout,
				Debug:   debug,
			})
		},
	)
}

func codexConfigPath(cfg *config.Config) string {
	return filepath.Join(cfg.Codex.HomeDir(), "config.toml")
}
