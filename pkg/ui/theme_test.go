package ui

import (
	"io"
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/catalogview/pkg/render"
)

func TestThemeVariants(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	tests := []struct {
		dark, hc bool
		name     string
		glamour  string
	}{
		{true, false, "dark", "dark"},
		{false, false, "light", "light"},
		{true, true, "dark", "dark"},
		{false, true, "light", "light"},
	}
	for _, tt := range tests {
		th := NewTheme(r, tt.dark, tt.hc)
		if th.Name() != tt.name || th.GlamourStyle() != tt.glamour {
			t.Errorf("NewTheme(dark=%v, hc=%v): name %q glamour %q", tt.dark, tt.hc, th.Name(), th.GlamourStyle())
		}
		if th.HighContrast != tt.hc {
			t.Errorf("HighContrast = %v, want %v", th.HighContrast, tt.hc)
		}
	}
}

func TestThemeAccentPerCategory(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()
	TermProfile = colorprofile.TrueColor

	th := NewTheme(lipgloss.NewRenderer(io.Discard), true, false)
	seen := map[lipgloss.TerminalColor]string{}
	for _, hex := range []string{render.ColorExposure, render.ColorSensitivity, render.ColorAdaptiveCapacity, render.ColorDefault} {
		c := th.Accent(hex)
		if prev, dup := seen[c]; dup {
			t.Errorf("accent for %s repeats %s", hex, prev)
		}
		seen[c] = hex
	}
	if th.Accent("#123456") != th.Accent(render.ColorDefault) {
		t.Error("unknown accents should use the default color")
	}
}

func TestHighContrastPalettesDiffer(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()
	TermProfile = colorprofile.TrueColor

	r := lipgloss.NewRenderer(io.Discard)
	if NewTheme(r, true, false).Text == NewTheme(r, true, true).Text {
		t.Error("dark high contrast should change the text color")
	}
	if NewTheme(r, false, false).Border == NewTheme(r, false, true).Border {
		t.Error("light high contrast should change the border color")
	}
}

func TestColorProfile_Detection(t *testing.T) {
	valid := map[colorprofile.Profile]bool{
		colorprofile.Unknown:   true,
		colorprofile.NoTTY:     true,
		colorprofile.ASCII:     true,
		colorprofile.ANSI:      true,
		colorprofile.ANSI256:   true,
		colorprofile.TrueColor: true,
	}
	if !valid[TermProfile] {
		t.Errorf("TermProfile has unexpected value: %d", TermProfile)
	}
}

func TestThemeBg_Profiles(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.TrueColor
	if _, ok := ThemeBg("#282A36").(lipgloss.NoColor); ok {
		t.Error("ThemeBg should return a hex color in TrueColor mode")
	}
	for _, p := range []colorprofile.Profile{colorprofile.ANSI256, colorprofile.ANSI} {
		TermProfile = p
		if _, ok := ThemeBg("#282A36").(lipgloss.NoColor); !ok {
			t.Errorf("ThemeBg should return NoColor below TrueColor (profile %d)", p)
		}
	}
}

func TestThemeFg_Profiles(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	for _, p := range []colorprofile.Profile{colorprofile.TrueColor, colorprofile.ANSI256} {
		TermProfile = p
		if _, ok := ThemeFg("#FF6B6B").(lipgloss.ANSIColor); ok {
			t.Errorf("ThemeFg should keep hex colors (profile %d)", p)
		}
	}

	TermProfile = colorprofile.ANSI
	c, ok := ThemeFg("#FF6B6B").(lipgloss.ANSIColor)
	if !ok || c != 7 {
		t.Errorf("ThemeFg should return ANSI white in ANSI mode, got %v", ThemeFg("#FF6B6B"))
	}
}
