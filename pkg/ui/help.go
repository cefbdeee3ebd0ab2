package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# Keys

| Key | Action |
| --- | --- |
| tab / shift+tab | Cycle panel focus |
| j k / ↑ ↓ | Move in the focused panel |
| enter / space | Open indicator, select dataset |
| esc | Clear dataset, close overlays |
| / | Search indicators |
| ctrl+l | Clear search |
| c | Cycle category |
| t | Tag picker |
| 1-9 | Toggle a tag of the selected indicator |
| m | Match mode ANY / ALL |
| # | Paste a hash |
| y | Copy link to this view |
| e | Export HTML snapshot |
| [ ] / < > | Resize left gutter (small / large step) |
| { } / ( ) | Resize right gutter (small / large step) |
| = | Reset panel widths |
| T | Dark / light theme |
| H | High contrast |
| R | Reload catalog |
| ? | This help |
| q / ctrl+c | Quit |
`

// helpRenderer caches the glamour output per width and style.
type helpRenderer struct {
	width int
	style string
	out   string
}

func (h *helpRenderer) render(width int, style string) string {
	if h.out != "" && h.width == width && h.style == style {
		return h.out
	}
	h.width, h.style = width, style
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		h.out, err = r.Render(helpMarkdown)
	}
	if err != nil {
		h.out = helpMarkdown
	}
	h.out = strings.TrimRight(h.out, "\n ")
	return h.out
}

func (m *Model) renderHelpOverlay() string {
	t := m.theme
	width := min(72, max(m.width-4, 30))
	content := m.help.render(width-6, t.GlamourStyle())

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(width).
		Render(content + "\n\n" + t.MutedText.Italic(true).Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
