package ui

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/catalogview/pkg/filter"
	"github.com/vanderheijden86/catalogview/pkg/render"
)

// TagPickerModel is the multi-select tag overlay. Options arrive already in
// natural order; typing after '/' narrows them with a fuzzy match.
type TagPickerModel struct {
	all      []render.TagOption
	filtered []render.TagOption
	input    textinput.Model
	typing   bool
	cursor   int
	mode     filter.MatchMode
	width    int
	height   int
	theme    Theme
}

// NewTagPickerModel creates a picker over options.
func NewTagPickerModel(options []render.TagOption, mode filter.MatchMode, theme Theme) TagPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30

	m := TagPickerModel{input: ti, theme: theme}
	m.SetOptions(options, mode)
	return m
}

// SetSize updates the picker dimensions.
func (m *TagPickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetOptions refreshes checkbox state after a toggle, keeping the cursor
// on the same tag.
func (m *TagPickerModel) SetOptions(options []render.TagOption, mode filter.MatchMode) {
	current := m.Current()
	m.all = options
	m.mode = mode
	m.filterOptions()
	if current != "" {
		for i, o := range m.filtered {
			if o.ID == current {
				m.cursor = i
				break
			}
		}
	}
}

// Typing reports whether keystrokes go to the filter input.
func (m *TagPickerModel) Typing() bool { return m.typing }

// StartTyping focuses the filter input.
func (m *TagPickerModel) StartTyping() tea.Cmd {
	m.typing = true
	return m.input.Focus()
}

// StopTyping returns keys to the picker; the filter text stays.
func (m *TagPickerModel) StopTyping() {
	m.typing = false
	m.input.Blur()
}

// MoveUp moves the cursor up.
func (m *TagPickerModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// MoveDown moves the cursor down.
func (m *TagPickerModel) MoveDown() {
	if m.cursor < len(m.filtered)-1 {
		m.cursor++
	}
}

// Current returns the tag id under the cursor, or "".
func (m *TagPickerModel) Current() string {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return ""
	}
	return m.filtered[m.cursor].ID
}

// UpdateInput feeds a message to the filter input.
func (m *TagPickerModel) UpdateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filterOptions()
	return cmd
}

// Reset clears the filter text.
func (m *TagPickerModel) Reset() {
	m.input.SetValue("")
	m.StopTyping()
	m.cursor = 0
	m.filterOptions()
}

// FilteredCount returns the number of options shown.
func (m *TagPickerModel) FilteredCount() int { return len(m.filtered) }

func (m *TagPickerModel) filterOptions() {
	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	if query == "" {
		m.filtered = m.all
		m.clampCursor()
		return
	}

	type scored struct {
		opt   render.TagOption
		score int
		order int
	}
	var matches []scored
	for i, o := range m.all {
		s := max(fuzzyScore(o.ID, query), fuzzyScore(o.Label, query))
		if s > 0 {
			matches = append(matches, scored{o, s, i})
		}
	}
	// Higher score first; ties keep natural tag order.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].order < matches[j].order
	})

	m.filtered = make([]render.TagOption, len(matches))
	for i, s := range matches {
		m.filtered[i] = s.opt
	}
	m.clampCursor()
}

func (m *TagPickerModel) clampCursor() {
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// fuzzyScore scores query against label, 0 meaning no match. Exact beats
// prefix beats substring beats subsequence; subsequence matches earn extra
// for consecutive runs and word starts.
func fuzzyScore(label, query string) int {
	label = strings.ToLower(label)
	query = strings.ToLower(query)

	switch {
	case label == query:
		return 1000
	case strings.HasPrefix(label, query):
		return 500 + len(query)
	case strings.Contains(label, query):
		return 200 + len(query)
	}

	li, qi := 0, 0
	score, consecutive, last := 0, 0, -1
	for li < len(label) && qi < len(query) {
		if label[li] == query[qi] {
			qi++
			s := 10
			if last == li-1 {
				consecutive++
				s += consecutive * 5
			} else {
				consecutive = 0
			}
			if li == 0 || !unicode.IsLetter(rune(label[li-1])) {
				s += 15
			}
			score += s
			last = li
		}
		li++
	}
	if qi == len(query) {
		return score
	}
	return 0
}

// View renders the centered overlay.
func (m *TagPickerModel) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	t := m.theme

	boxWidth := min(64, max(width-6, 28))
	maxVisible := max(height-12, 3)

	var lines []string
	lines = append(lines, t.Title.Render(fmt.Sprintf("Filter by Tag  (match %s)", strings.ToUpper(m.mode.String()))), "")

	inputBorder := t.Border
	if m.typing {
		inputBorder = t.Primary
	}
	lines = append(lines, t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(inputBorder).
		Padding(0, 1).
		Width(boxWidth-8).
		Render(m.input.View()), "")

	if len(m.filtered) == 0 {
		lines = append(lines, t.MutedText.Italic(true).Render("  No matching tags"))
	} else {
		start := windowStart(m.cursor, maxVisible, len(m.filtered))
		end := min(start+maxVisible, len(m.filtered))
		for i := start; i < end; i++ {
			o := m.filtered[i]
			box := "[ ]"
			if o.Checked {
				box = "[x]"
			}
			prefix := "  "
			style := t.Base
			if i == m.cursor {
				prefix = "> "
				style = t.Title
			}
			lines = append(lines, style.Render(truncate(prefix+box+" "+o.Label, boxWidth-6)))
		}
		if len(m.filtered) > maxVisible {
			lines = append(lines, "", t.MutedText.Italic(true).Render(fmt.Sprintf("  (%d/%d)", m.cursor+1, len(m.filtered))))
		}
	}

	lines = append(lines, "", t.MutedText.Italic(true).Render("space: toggle | a: any/all | x: clear | /: filter | esc: close"))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
