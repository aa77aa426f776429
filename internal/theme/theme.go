// Package theme decides whether the shell renders for a dark or a light
// terminal background and distributes the matching palette.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode names the two palettes.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// Palette carries the colors the shell panes share.
type Palette struct {
	Added      lipgloss.Style
	Removed    lipgloss.Style
	HunkHeader lipgloss.Style
	Border     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	StatusBar  lipgloss.Style
}

// Detect resolves the requested mode. "dark" and "light" force a palette;
// anything else probes the terminal background.
func Detect(requested string) Mode {
	switch requested {
	case "dark":
		return Dark
	case "light":
		return Light
	}
	if termenv.HasDarkBackground() {
		return Dark
	}
	return Light
}

// PaletteFor builds the lipgloss styles for a mode.
func PaletteFor(mode Mode) Palette {
	if mode == Light {
		return Palette{
			Added:      lipgloss.NewStyle().Background(lipgloss.Color("194")).Foreground(lipgloss.Color("22")),
			Removed:    lipgloss.NewStyle().Background(lipgloss.Color("224")).Foreground(lipgloss.Color("88")),
			HunkHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("26")).Bold(true),
			Border:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("250")),
			Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Selected:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("153")),
			StatusBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Background(lipgloss.Color("252")),
		}
	}
	return Palette{
		Added:      lipgloss.NewStyle().Background(lipgloss.Color("22")).Foreground(lipgloss.Color("120")),
		Removed:    lipgloss.NewStyle().Background(lipgloss.Color("52")).Foreground(lipgloss.Color("210")),
		HunkHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Border:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Selected:   lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63")),
		StatusBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")),
	}
}
