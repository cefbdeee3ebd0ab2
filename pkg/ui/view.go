package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/catalogview/pkg/render"
)

// View renders the model.
func (m Model) View() string {
	switch {
	case m.focused == focusHelp:
		return m.renderHelpOverlay()
	case !m.loaded:
		return m.renderLoadingScreen()
	case m.loadErr != nil:
		return m.renderErrorScreen()
	case m.focused == focusTagPicker:
		return m.picker.View()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderIndicatorPanel(),
		m.renderMiddlePanel(),
		m.renderDetailPanel(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderLoadingScreen() string {
	t := m.theme
	lines := []string{t.Title.Render(render.EmptyLoading.Message())}
	if m.source != "" {
		lines = append(lines, "", t.MutedText.Render(m.source))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderErrorScreen() string {
	t := m.theme
	width := max(m.width-8, 20)
	lines := []string{
		t.StatusErr.Render(render.EmptyLoadFailed.Message()),
		"",
		t.Base.Width(width).Render(m.tree.Error),
		"",
		t.MutedText.Italic(true).Render("q: quit"),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	t := m.theme
	parts := []string{t.Title.Render("cv")}
	parts = append(parts, t.MutedText.Render(fmt.Sprintf("%d indicators · %d datasets", m.tree.Stats.Indicators, m.tree.Stats.Datasets)))
	if m.tree.Category != "" {
		parts = append(parts, t.Base.Render("category: "+m.tree.Category))
	}
	if tags := m.ctrl.State().ActiveTags(); len(tags) > 0 {
		parts = append(parts, t.Base.Render(fmt.Sprintf("tags (%s): %s", strings.ToUpper(m.tree.Mode.String()), render.Plain(strings.Join(tags, ",")))))
	}
	switch {
	case m.focused == focusSearch:
		parts = append(parts, m.search.View())
	case m.tree.Query != "":
		parts = append(parts, t.Base.Render("search: "+m.tree.Query))
	}
	return m.renderer.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter() string {
	t := m.theme
	style := m.renderer.NewStyle().MaxWidth(m.width)
	switch {
	case m.focused == focusHashPrompt:
		return style.Render(m.hashInput.View())
	case m.statusMsg != "" && m.statusIsError:
		return style.Render(t.StatusErr.Render(m.statusMsg))
	case m.statusMsg != "":
		return style.Render(t.StatusOK.Render(m.statusMsg))
	}
	hints := "? help  / search  t tags  c category  m mode  y copy link  q quit"
	hash := ""
	if h := m.ctrl.Hash(); h != "" {
		hash = "#" + h
	}
	gap := m.width - len(hints) - len(hash)
	if gap < 2 {
		return style.Render(t.MutedText.Render(truncate(hints, m.width)))
	}
	return style.Render(t.MutedText.Render(hints) + strings.Repeat(" ", gap) + t.SubtextText.Render(hash))
}

// indicatorRows is the number of list rows in the indicator panel.
func (m Model) indicatorRows() int {
	return max(m.bodyHeight()-3, 1)
}

func (m Model) renderIndicatorPanel() string {
	t := m.theme
	w, h := m.widths.Left, m.bodyHeight()
	iw := max(w-2, 1)

	lines := []string{t.Title.Render(truncate(fmt.Sprintf("Indicators (%d)", len(m.tree.Indicators)), iw))}
	if len(m.tree.Indicators) == 0 {
		lines = append(lines, t.MutedText.Render(truncate(render.EmptyNoMatches.Message(), iw)))
	}

	rows := m.indicatorRows()
	start := windowStart(m.ctrl.SelectedIndex(), rows, len(m.tree.Indicators))
	end := min(start+rows, len(m.tree.Indicators))
	for _, row := range m.tree.Indicators[start:end] {
		count := fmt.Sprintf("%d", row.DatasetCount)
		nameW := max(iw-3-len(count), 1)
		text := padRight(truncate(row.Name, nameW), nameW) + " " + count
		marker := t.Renderer.NewStyle().Foreground(t.Accent(row.Accent)).Render("▍")
		if row.Selected {
			lines = append(lines, marker+t.Selected.Render(" "+text))
		} else {
			lines = append(lines, marker+t.Base.Render(" "+text))
		}
	}

	return t.panelStyle(w, h, m.focused == focusIndicators).Render(strings.Join(lines, "\n"))
}

// middleHeader returns the styled lines above the dataset list.
func (m Model) middleHeader() []string {
	t := m.theme
	iw := max(m.widths.Middle-2, 1)
	ih := max(m.bodyHeight()-2, 1)

	hd := m.tree.Header
	if hd == nil {
		lines := []string{t.MutedText.Render(truncate(render.NoIndicatorTitle, iw))}
		if m.tree.Empty == render.EmptyNoMatches {
			lines = append(lines, "", t.Base.Render(truncate(m.tree.Empty.Message(), iw)),
				t.MutedText.Render(truncate(m.tree.Empty.Hint(), iw)))
		}
		return lines
	}

	accent := t.Renderer.NewStyle().Foreground(t.Accent(hd.Accent))
	lines := []string{t.Title.Render(truncate(hd.Title, iw))}
	meta := hd.Meta
	if hd.Category != "" {
		meta = hd.Category + "  " + meta
	}
	lines = append(lines, accent.Render(truncate(meta, iw)))

	for i, chip := range hd.Chips {
		prefix := "  "
		if i < 9 {
			prefix = fmt.Sprintf("%d ", i+1)
		}
		style := t.Chip
		if chip.Active {
			style = t.ChipActive
		}
		lines = append(lines, style.Render(truncate(prefix+chip.Label, iw)))
	}

	listMin := min(len(m.tree.Datasets), max(3, ih/3))
	budget := ih - 1 - listMin - len(lines) - 1
	if budget > 0 && len(hd.Paragraphs) > 0 {
		desc := wrapLines(m.renderer, strings.Join(hd.Paragraphs, "\n\n"), iw)
		if len(desc) > budget {
			desc = append(desc[:max(budget-1, 0)], "…")
		}
		lines = append(lines, "")
		for _, l := range desc {
			lines = append(lines, t.Base.Render(l))
		}
	}
	return lines
}

// datasetListTop is the screen row of the first dataset.
func (m Model) datasetListTop() int {
	// Header line, top border, header block, list title.
	return 1 + 1 + len(m.middleHeader()) + 1
}

func (m Model) datasetRows() int {
	return max(m.bodyHeight()-2-len(m.middleHeader())-1, 1)
}

func (m Model) renderMiddlePanel() string {
	t := m.theme
	w, h := m.widths.Middle, m.bodyHeight()
	iw := max(w-2, 1)

	lines := m.middleHeader()
	if m.tree.Header != nil {
		lines = append(lines, t.Title.Render(truncate(fmt.Sprintf("Datasets (%d)", len(m.tree.Datasets)), iw)))
		rows := m.datasetRows()
		start := windowStart(m.datasetCursor, rows, len(m.tree.Datasets))
		end := min(start+rows, len(m.tree.Datasets))
		for i := start; i < end; i++ {
			ds := m.tree.Datasets[i]
			mark := "  "
			if ds.Selected {
				mark = "● "
			}
			text := padRight(truncate(mark+ds.Name, iw), iw)
			if i == m.datasetCursor && m.focused == focusDatasets {
				lines = append(lines, t.Selected.Render(text))
			} else {
				lines = append(lines, t.Base.Render(text))
			}
		}
	}
	return t.panelStyle(w, h, m.focused == focusDatasets).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDetailPanel() string {
	t := m.theme
	w, h := m.widths.Right, m.bodyHeight()
	title := "Details"
	if d := m.tree.Detail; d != nil {
		title = d.Name
	}
	content := t.Title.Render(truncate(title, max(w-4, 1))) + "\n" + m.detail.View()
	return t.panelStyle(w, h, m.focused == focusDetail).Padding(0, 1).Render(content)
}

// detailContent is the viewport text for the selected dataset.
func (m Model) detailContent(width int) string {
	t := m.theme
	d := m.tree.Detail
	if d == nil {
		lines := []string{t.MutedText.Render(truncate(m.tree.Empty.Message(), width))}
		if hint := m.tree.Empty.Hint(); hint != "" {
			lines = append(lines, t.MutedText.Render(truncate(hint, width)))
		}
		return strings.Join(lines, "\n")
	}

	var b strings.Builder
	section := func(name string, paragraphs []string) {
		if len(paragraphs) == 0 {
			return
		}
		b.WriteString(t.Title.Render(name))
		b.WriteString("\n")
		for _, l := range wrapLines(m.renderer, strings.Join(paragraphs, "\n\n"), width) {
			b.WriteString(t.Base.Render(l))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if d.License != "" {
		b.WriteString(t.MutedText.Render(truncate("License: "+d.License, width)))
		b.WriteString("\n\n")
	}
	section("Description", d.Description)
	section("Source", d.Source)
	section("Citation", d.Citation)
	if d.Link != "" {
		b.WriteString(t.Title.Render("Link"))
		b.WriteString("\n")
		for _, l := range wrapLines(m.renderer, d.Link, width) {
			b.WriteString(t.ChipActive.Render(l))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// wrapLines word-wraps plain text to width and returns its lines.
func wrapLines(r *lipgloss.Renderer, text string, width int) []string {
	if width <= 0 || text == "" {
		return nil
	}
	wrapped := r.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}
