package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/grovetools/codex-wakatime/cli"
	"github.com/grovetools/codex-wakatime/config"
	"github.com/grovetools/codex-wakatime/logging"
	"github.com/grovetools/codex-wakatime/pkg/paths"
	"github.com/grovetools/codex-wakatime/theme"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the plugin log",
		Long: `Prints the codex-wakatime log file. The hook runs headless under Codex,
so the log is the main way to see what it did.

Examples:
  # Show the whole log
  codex-wakatime logs

  # Show the last 50 lines and keep following
  codex-wakatime logs -f -n 50
`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().IntP("tail", "n", -1, "Number of lines to show from the end of the log (default: all)")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	opts := cli.GetOptions(cmd)
	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")

	logFile := resolveLogFile()

	if _, err := os.Stat(logFile); err != nil {
		if !follow {
			fmt.Printf("No log file yet at %s\n", logFile)
			return nil
		}
		// Following waits for the file to appear.
		fmt.Printf("Waiting for %s\n", theme.DefaultTheme.Muted.Render(logFile))
	} else if err := printExistingLines(logFile, tailLines, opts.JSONOutput); err != nil {
		return err
	}

	if !follow {
		return nil
	}

	t, err := tail.TailFile(logFile, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", logFile, err)
	}

	for line := range t.Lines {
		if line.Err != nil {
			continue
		}
		printLogLine(line.Text, opts.JSONOutput)
	}
	return nil
}

// resolveLogFile mirrors the logging package's sink selection so this
// command reads the same file the logger writes.
func resolveLogFile() string {
	var logCfg logging.Config
	if cfg, err := config.LoadDefault(); err == nil {
		_ = cfg.UnmarshalExtension("logging", &logCfg)
	}
	if logCfg.File.Path != "" {
		return paths.ExpandUser(logCfg.File.Path)
	}
	return paths.LogFile()
}

func printExistingLines(path string, tailLines int, jsonOutput bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if tailLines >= 0 && tailLines < len(lines) {
		lines = lines[len(lines)-tailLines:]
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		printLogLine(line, jsonOutput)
	}
	return nil
}

// printLogLine prints one log line. Lines from the JSON format preset are
// re-rendered for readability; anything else passes through as-is.
func printLogLine(line string, jsonOutput bool) {
	var logMap map[string]interface{}
	if err := json.Unmarshal([]byte(line), &logMap); err != nil {
		if jsonOutput {
			fallback := map[string]interface{}{"raw_line": line}
			jsonData, _ := json.Marshal(fallback)
			fmt.Println(string(jsonData))
			return
		}
		fmt.Println(line)
		return
	}

	if jsonOutput {
		fmt.Println(line)
		return
	}

	ts, _ := logMap["time"].(string)
	level, _ := logMap["level"].(string)
	msg, _ := logMap["msg"].(string)
	component, _ := logMap["component"].(string)

	parsedTime, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		parsedTime, _ = time.Parse(time.RFC3339, ts)
	}
	timeStr := parsedTime.Format("15:04:05")

	var levelStyle lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		levelStyle = theme.DefaultTheme.Error
	case "warning":
		levelStyle = theme.DefaultTheme.Warning
	case "info":
		levelStyle = theme.DefaultTheme.Info
	default:
		levelStyle = theme.DefaultTheme.Muted
	}

	sortedKeys := []string{}
	for k := range logMap {
		if k != "time" && k != "level" && k != "msg" && k != "component" {
			sortedKeys = append(sortedKeys, k)
		}
	}
	sort.Strings(sortedKeys)

	otherFields := []string{}
	for _, k := range sortedKeys {
		otherFields = append(otherFields, fmt.Sprintf("%s=%v", theme.DefaultTheme.Muted.Render(k), logMap[k]))
	}

	fmt.Printf("%s %s %s [%s] %s\n",
		timeStr,
		levelStyle.Render(strings.ToUpper(level)),
		msg,
		theme.DefaultTheme.Muted.Render(component),
		strings.Join(otherFields, " "),
	)
}
