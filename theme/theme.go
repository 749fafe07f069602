// Package theme provides the shared color palette and text styles used by
// codex-wakatime's CLI output and log formatting.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultThemeName = "kanagawa"

// --- Kanagawa Dragon (dark) palette ---
const (
	kanagawaGreen     = "#98BB6C"
	kanagawaYellow    = "#FF9E3B"
	kanagawaRed       = "#FF5D62"
	kanagawaOrange    = "#FFA066"
	kanagawaCyan      = "#7E9CD8"
	kanagawaBlue      = "#7FB4CA"
	kanagawaViolet    = "#957FB8"
	kanagawaMutedText = "#727169"
)

// --- Terminal (ANSI-friendly) palette ---
const (
	terminalGreen     = "2"
	terminalYellow    = "3"
	terminalRed       = "1"
	terminalOrange    = "208"
	terminalCyan      = "6"
	terminalBlue      = "4"
	terminalViolet    = "5"
	terminalMutedText = "8"
)

// Colors encapsulates the palette used by a theme. lipgloss.TerminalColor
// allows a mix of adaptive and static colors.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Orange    lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Blue      lipgloss.TerminalColor
	Violet    lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
}

// Theme holds the pre-configured styles shared across the CLI.
type Theme struct {
	Colors Colors

	// Status indicators
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Text hierarchy: Bold → Normal → Muted
	Bold   lipgloss.Style
	Normal lipgloss.Style
	Muted  lipgloss.Style
	Italic lipgloss.Style

	// Special styles
	Highlight lipgloss.Style
	Accent    lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"kanagawa": newKanagawaColors,
	"terminal": newTerminalColors,
}

// DefaultTheme is the theme instance used throughout the CLI.
var DefaultTheme = NewTheme()

// NewTheme creates a theme based on the CODEX_WAKATIME_THEME selection,
// falling back to the default palette.
func NewTheme() *Theme {
	name := strings.ToLower(os.Getenv("CODEX_WAKATIME_THEME"))
	builder, ok := themeRegistry[name]
	if !ok {
		builder = themeRegistry[defaultThemeName]
	}
	return newThemeFromColors(builder())
}

func newThemeFromColors(colors Colors) *Theme {
	return &Theme{
		Colors: colors,

		Success: lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(colors.Cyan).
			Bold(true),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Normal: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Faint(true),

		Italic: lipgloss.NewStyle().
			Italic(true),

		Highlight: lipgloss.NewStyle().
			Foreground(colors.Orange).
			Bold(true),

		Accent: lipgloss.NewStyle().
			Foreground(colors.Violet).
			Bold(true),
	}
}

func newKanagawaColors() Colors {
	return Colors{
		Green:     lipgloss.Color(kanagawaGreen),
		Yellow:    lipgloss.Color(kanagawaYellow),
		Red:       lipgloss.Color(kanagawaRed),
		Orange:    lipgloss.Color(kanagawaOrange),
		Cyan:      lipgloss.Color(kanagawaCyan),
		Blue:      lipgloss.Color(kanagawaBlue),
		Violet:    lipgloss.Color(kanagawaViolet),
		MutedText: lipgloss.Color(kanagawaMutedText),
	}
}

func newTerminalColors() Colors {
	return Colors{
		Green:     lipgloss.Color(terminalGreen),
		Yellow:    lipgloss.Color(terminalYellow),
		Red:       lipgloss.Color(terminalRed),
		Orange:    lipgloss.Color(terminalOrange),
		Cyan:      lipgloss.Color(terminalCyan),
		Blue:      lipgloss.Color(terminalBlue),
		Violet:    lipgloss.Color(terminalViolet),
		MutedText: lipgloss.Color(terminalMutedText),
	}
}
