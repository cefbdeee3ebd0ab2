package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// panelStyle returns the bordered box of a panel with the given outer size.
func (t Theme) panelStyle(width, height int, focused bool) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.Primary
	}
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		MaxHeight(max(height, 0))
}

// truncateRunesHelper truncates s to maxWidth cells, adding suffix if needed.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	sw := runewidth.StringWidth(suffix)
	if sw > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-sw, "") + suffix
}

func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// windowStart returns the first visible row so that cursor stays in a
// window of size rows.
func windowStart(cursor, size, total int) int {
	if size <= 0 || total <= size || cursor < size/2 {
		return 0
	}
	start := cursor - size/2
	if start > total-size {
		start = total - size
	}
	return start
}
