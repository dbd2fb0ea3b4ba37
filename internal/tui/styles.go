package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/breathr/internal/breath"
	"github.com/sadopc/breathr/internal/store"
)

type palette struct {
	fg     lipgloss.Color
	muted  lipgloss.Color
	subtle lipgloss.Color
}

var palettes = map[store.Theme]palette{
	store.ThemeDark: {
		fg:     lipgloss.Color("#C0CAF5"),
		muted:  lipgloss.Color("#666666"),
		subtle: lipgloss.Color("#414868"),
	},
	store.ThemeLight: {
		fg:     lipgloss.Color("#1F2335"),
		muted:  lipgloss.Color("#8A8FA3"),
		subtle: lipgloss.Color("#C8CCD8"),
	},
}

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorHighlight = lipgloss.Color("#7AA2F7")

	colorFg     lipgloss.Color
	colorMuted  lipgloss.Color
	colorSubtle lipgloss.Color
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	timerStyle        lipgloss.Style
	titleStyle        lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
)

func init() {
	applyTheme(store.ThemeLight)
}

// applyTheme swaps the theme dependent colors and rebuilds every style.
func applyTheme(theme store.Theme) {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[store.ThemeLight]
	}
	colorFg, colorMuted, colorSubtle = p.fg, p.muted, p.subtle

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	timerStyle = lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorFg)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)
}

// stageStyle colors text with a stage color.
func stageStyle(c breath.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

func colorDot(c breath.Color) string {
	return stageStyle(c).Render("●")
}

func formTheme(t store.Theme) *huh.Theme {
	if t == store.ThemeDark {
		return huh.ThemeCharm()
	}
	return huh.ThemeBase()
}
