package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/catalogview/pkg/render"
)

// TermProfile holds the detected terminal color profile, computed once at
// package init.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns hex on ANSI256+ terminals and ANSI white (7) below that.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// ThemeBg returns hex on TrueColor terminals and no color otherwise, so
// limited palettes keep the terminal's own background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

type palette struct {
	text, subtext, muted, primary, border, highlight, danger, success string
	exposure, sensitivity, adaptive, other                             string
}

var (
	darkPalette = palette{
		text: "#F8F8F2", subtext: "#BFBFBF", muted: "#6272A4", primary: "#BD93F9",
		border: "#44475A", highlight: "#363949", danger: "#FF5555", success: "#50FA7B",
		exposure: render.ColorExposure, sensitivity: render.ColorSensitivity,
		adaptive: render.ColorAdaptiveCapacity, other: render.ColorDefault,
	}
	// Light accents are darkened to keep 4.5:1 on white.
	lightPalette = palette{
		text: "#1A1A1A", subtext: "#555555", muted: "#666666", primary: "#6B47D9",
		border: "#AAAAAA", highlight: "#E0E0E0", danger: "#CC0000", success: "#007700",
		exposure: "#A35F00", sensitivity: "#C62828", adaptive: "#00796B", other: "#1F4E99",
	}
	darkHighContrast = palette{
		text: "#FFFFFF", subtext: "#FFFFFF", muted: "#D0D0D0", primary: "#FFFF00",
		border: "#FFFFFF", highlight: "#000080", danger: "#FF6060", success: "#00FF00",
		exposure: "#FFC266", sensitivity: "#FF8A8A", adaptive: "#66FFCC", other: "#D6E6FF",
	}
	lightHighContrast = palette{
		text: "#000000", subtext: "#000000", muted: "#303030", primary: "#0000CC",
		border: "#000000", highlight: "#FFFF99", danger: "#A00000", success: "#005000",
		exposure: "#7A4500", sensitivity: "#8B0000", adaptive: "#004D40", other: "#00287A",
	}
)

// Theme holds the colors and pre-computed styles of one theme variant.
type Theme struct {
	Renderer     *lipgloss.Renderer
	Dark         bool
	HighContrast bool

	Text      lipgloss.TerminalColor
	Subtext   lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Primary   lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
	Highlight lipgloss.TerminalColor
	Danger    lipgloss.TerminalColor
	Success   lipgloss.TerminalColor

	Base        lipgloss.Style
	Title       lipgloss.Style
	Selected    lipgloss.Style
	MutedText   lipgloss.Style
	SubtextText lipgloss.Style
	Chip        lipgloss.Style
	ChipActive  lipgloss.Style
	StatusOK    lipgloss.Style
	StatusErr   lipgloss.Style

	pal palette
}

// NewTheme builds the dark or light variant, optionally high contrast.
func NewTheme(r *lipgloss.Renderer, dark, highContrast bool) Theme {
	p := lightPalette
	switch {
	case dark && highContrast:
		p = darkHighContrast
	case dark:
		p = darkPalette
	case highContrast:
		p = lightHighContrast
	}

	t := Theme{
		Renderer:     r,
		Dark:         dark,
		HighContrast: highContrast,
		Text:         ThemeFg(p.text),
		Subtext:      ThemeFg(p.subtext),
		Muted:        ThemeFg(p.muted),
		Primary:      ThemeFg(p.primary),
		Border:       ThemeFg(p.border),
		Highlight:    ThemeBg(p.highlight),
		Danger:       ThemeFg(p.danger),
		Success:      ThemeFg(p.success),
		pal:          p,
	}

	t.Base = r.NewStyle().Foreground(t.Text)
	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Text).
		Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SubtextText = r.NewStyle().Foreground(t.Subtext)
	t.Chip = r.NewStyle().Foreground(t.Subtext)
	t.ChipActive = r.NewStyle().Foreground(t.Primary).Bold(true).Underline(true)
	t.StatusOK = r.NewStyle().Foreground(t.Success)
	t.StatusErr = r.NewStyle().Foreground(t.Danger).Bold(true)
	if highContrast {
		t.Selected = t.Selected.Reverse(true)
	}
	return t
}

// Accent maps a category accent (render.CategoryColor) to this theme.
func (t Theme) Accent(hex string) lipgloss.TerminalColor {
	switch hex {
	case render.ColorExposure:
		return ThemeFg(t.pal.exposure)
	case render.ColorSensitivity:
		return ThemeFg(t.pal.sensitivity)
	case render.ColorAdaptiveCapacity:
		return ThemeFg(t.pal.adaptive)
	}
	return ThemeFg(t.pal.other)
}

// Name is the persisted theme value.
func (t Theme) Name() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

// GlamourStyle names the glamour standard style matching the theme.
func (t Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

// TestTheme returns the dark theme on a stdout renderer.
func TestTheme() Theme {
	return NewTheme(lipgloss.NewRenderer(os.Stdout), true, false)
}
