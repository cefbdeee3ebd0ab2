// Package ui is the terminal front end of cv: three resizable panels over a
// viewstate.Controller, drawn from the render.Tree projection.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/catalogview/pkg/config"
	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/export"
	"github.com/vanderheijden86/catalogview/pkg/layout"
	"github.com/vanderheijden86/catalogview/pkg/loader"
	"github.com/vanderheijden86/catalogview/pkg/localstore"
	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/render"
	"github.com/vanderheijden86/catalogview/pkg/viewstate"
	"github.com/vanderheijden86/catalogview/pkg/watcher"
)

// focus is the element receiving keys.
type focus int

const (
	focusIndicators focus = iota
	focusDatasets
	focusDetail
	focusSearch
	focusTagPicker
	focusHashPrompt
	focusHelp
)

func (f focus) String() string {
	switch f {
	case focusIndicators:
		return "indicators"
	case focusDatasets:
		return "datasets"
	case focusDetail:
		return "detail"
	case focusSearch:
		return "search"
	case focusTagPicker:
		return "tags"
	case focusHashPrompt:
		return "hash"
	case focusHelp:
		return "help"
	}
	return "unknown"
}

// Status messages shown after a copy attempt.
const (
	StatusLinkCopied     = "Link copied to clipboard"
	StatusLinkCopyFailed = "Failed to copy link"
)

// Options configure NewModel.
type Options struct {
	Source      string         // catalog path or URL
	LoadOptions loader.Options // passed to loader.LoadWithOptions
	Catalog     *model.Catalog // already loaded; skips the initial load
	Hash        string         // initial view-state; empty restores the last one
	Search      string         // initial search query
	Category    string         // initial category filter
	Config      config.Config
	Store       localstore.Store
	Watcher     *watcher.Watcher
}

// Model is the Bubble Tea model.
type Model struct {
	source    string
	loadOpts  loader.Options
	baseURL   string
	exportCfg config.ExportConfig
	store     localstore.Store
	watcher   *watcher.Watcher

	ctrl        *viewstate.Controller
	tree        render.Tree
	loaded      bool
	loadErr     error
	pendingHash string
	initSearch  string
	initCat     string

	layout     *layout.Manager
	widths     layout.Widths
	dragging   bool
	dragGutter layout.Gutter

	renderer *lipgloss.Renderer
	theme    Theme
	help     *helpRenderer

	width     int
	height    int
	focused   focus
	prevFocus focus

	search        textinput.Model
	hashInput     textinput.Model
	picker        TagPickerModel
	detail        viewport.Model
	datasetCursor int

	statusMsg     string
	statusIsError bool
	statusSeq     int

	copyText func(string) error
}

// NewModel builds the model. Without opts.Catalog the catalog is loaded by
// Init.
func NewModel(opts Options) Model {
	store := opts.Store
	if store == nil {
		store = localstore.Memory()
	}
	cfg := opts.Config

	dark := cfg.UI.Theme != "light"
	highContrast := cfg.UI.HighContrast
	if v, ok := store.Get(localstore.KeyTheme); ok {
		dark = v != "light"
	}
	if v, ok := store.Get(localstore.KeyHighContrast); ok {
		highContrast = v == "on"
	}

	lopts := layout.CellOptions()
	if cfg.UI.LeftWidth > 0 {
		lopts.DefaultLeft = cfg.UI.LeftWidth
	}
	if cfg.UI.RightFraction > 0 {
		lopts.RightFraction = cfg.UI.RightFraction
	}
	lm := layout.New(lopts, store)
	lm.Load()

	hash := strings.TrimPrefix(opts.Hash, "#")
	if hash == "" {
		hash, _ = store.Get(localstore.KeyLastHash)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search indicators"
	search.CharLimit = 120
	search.SetValue(opts.Search)

	hashInput := textinput.New()
	hashInput.Prompt = "# "
	hashInput.Placeholder = "indicator=…&dataset=…&cic=…&mode=all"
	hashInput.CharLimit = 1024

	r := lipgloss.DefaultRenderer()
	theme := NewTheme(r, dark, highContrast)

	m := Model{
		source:      opts.Source,
		loadOpts:    opts.LoadOptions,
		baseURL:     baseURL,
		exportCfg:   cfg.Export,
		store:       store,
		watcher:     opts.Watcher,
		pendingHash: hash,
		initSearch:  opts.Search,
		initCat:     opts.Category,
		layout:      lm,
		renderer:    r,
		theme:       theme,
		help:        &helpRenderer{},
		width:       120,
		height:      36,
		search:      search,
		hashInput:   hashInput,
		picker:      NewTagPickerModel(nil, 0, theme),
		detail:      viewport.New(40, 20),
		copyText:    clipboard.WriteAll,
	}
	if opts.Catalog != nil {
		m.setCatalog(opts.Catalog)
	}
	m.rebuild()
	return m
}

// Init starts the initial load and the file watch.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if !m.loaded {
		cmds = append(cmds, LoadCatalogCmd(m.source, m.loadOpts, false))
	}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// setCatalog installs the first successfully loaded catalog.
func (m *Model) setCatalog(cat *model.Catalog) {
	store := m.store
	last := m.pendingHash
	m.ctrl = viewstate.New(cat,
		viewstate.WithSearch(m.initSearch),
		viewstate.WithCategory(m.initCat),
		viewstate.WithHashHook(func(h string) {
			if h == last {
				return
			}
			last = h
			if err := store.Set(localstore.KeyLastHash, h); err != nil {
				debug.Log("ui: persist hash: %v", err)
			}
		}))
	if m.pendingHash != "" {
		m.ctrl.ApplyHash(m.pendingHash)
		m.pendingHash = ""
	}
	m.loaded = true
	m.loadErr = nil
}

// Stop releases the file watcher. Safe to call more than once.
func (m Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// ready reports whether catalog handlers may run.
func (m Model) ready() bool {
	return m.loaded && m.loadErr == nil && m.ctrl != nil
}

// rebuild recomputes the projection and everything derived from it.
func (m *Model) rebuild() {
	in := render.Input{Loaded: m.loaded, LoadErr: m.loadErr}
	if m.ctrl != nil {
		in.Catalog = m.ctrl.Catalog()
		in.Filtered = m.ctrl.Filtered()
		in.State = m.ctrl.State()
	}
	m.tree = render.Build(in)

	m.datasetCursor = clampCursor(m.datasetCursor, len(m.tree.Datasets))
	for i, ds := range m.tree.Datasets {
		if ds.Selected {
			m.datasetCursor = i
		}
	}
	if m.focused == focusTagPicker {
		m.picker.SetOptions(m.tree.TagOptions, m.tree.Mode)
	}
	m.relayout()
}

// relayout sizes panels and the detail viewport for the current window.
func (m *Model) relayout() {
	m.widths = layout.Fit(m.layout.Apply(m.width), m.width)
	m.detail.Width = max(m.widths.Right-4, 1)
	m.detail.Height = max(m.bodyHeight()-3, 1)
	m.detail.SetContent(m.detailContent(m.detail.Width))
	m.picker.SetSize(m.width, m.height)
}

// bodyHeight is the panel height: one header line and one status line.
func (m Model) bodyHeight() int {
	return max(m.height-2, 3)
}

func clampCursor(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusIsError = isErr
	m.statusSeq++
	return clearStatusCmd(m.statusSeq)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
		return m, nil

	case CatalogLoadedMsg:
		return m.handleCatalogLoaded(msg)

	case FileChangedMsg:
		var cmds []tea.Cmd
		if m.source != "" {
			debug.Log("ui: catalog changed on disk, reloading %s", m.source)
			cmds = append(cmds, LoadCatalogCmd(m.source, m.loadOpts, true))
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case ExportDoneMsg:
		if msg.Err != nil {
			return m, m.setStatus(fmt.Sprintf("Export failed: %v", msg.Err), true)
		}
		return m, m.setStatus("Exported "+msg.Result.HTMLPath, false)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsError = false
		}
		return m, nil

	case tea.MouseMsg:
		if !m.ready() {
			return m, nil
		}
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other textinput plumbing.
	var cmd tea.Cmd
	switch m.focused {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusHashPrompt:
		m.hashInput, cmd = m.hashInput.Update(msg)
	case focusTagPicker:
		cmd = m.picker.UpdateInput(msg)
	}
	return m, cmd
}

func (m Model) handleCatalogLoaded(msg CatalogLoadedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case msg.Err != nil && msg.Reload && m.ready():
		debug.Log("ui: reload failed: %v", msg.Err)
		cmd = m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
	case msg.Err != nil:
		debug.Log("ui: load failed: %v", msg.Err)
		m.loaded = true
		m.loadErr = msg.Err
	case m.ready():
		m.ctrl.Reload(msg.Catalog)
		cmd = m.setStatus(fmt.Sprintf("Catalog reloaded (%d indicators)", msg.Catalog.Len()), false)
	default:
		m.setCatalog(msg.Catalog)
		debug.LogTiming("ui.load", msg.Elapsed)
	}
	m.rebuild()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focused {
	case focusHelp:
		m.focused = m.prevFocus
		return m, nil
	case focusSearch:
		return m.handleSearchKeys(msg)
	case focusHashPrompt:
		return m.handleHashKeys(msg)
	case focusTagPicker:
		return m.handleTagPickerKeys(msg)
	}

	if key == "q" {
		return m, tea.Quit
	}
	if !m.ready() {
		return m, nil
	}

	var cmd tea.Cmd
	switch key {
	case "tab":
		m.focused = (m.focused + 1) % 3
	case "shift+tab":
		m.focused = (m.focused + 2) % 3
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "pgdown":
		m.move(max(m.bodyHeight()-4, 1))
	case "pgup":
		m.move(-max(m.bodyHeight()-4, 1))
	case "enter", " ":
		m.activate()
	case "esc":
		if m.ctrl.State().SelectedDatasetID != "" {
			m.ctrl.ClearDataset()
		}
	case "/":
		m.prevFocus = m.focused
		m.focused = focusSearch
		cmd = m.search.Focus()
	case "ctrl+l":
		m.search.SetValue("")
		m.ctrl.SetSearchQuery("")
	case "c":
		m.ctrl.CycleCategory()
		cat := m.ctrl.State().SelectedCategory
		if cat == "" {
			cat = "all"
		}
		cmd = m.setStatus("Category: "+cat, false)
	case "t":
		m.prevFocus = m.focused
		m.focused = focusTagPicker
		m.picker = NewTagPickerModel(m.tree.TagOptions, m.tree.Mode, m.theme)
		m.picker.SetSize(m.width, m.height)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		cmd = m.toggleChip(int(key[0] - '1'))
	case "m":
		m.ctrl.SetMatchMode(m.ctrl.State().Mode.Toggle())
		cmd = m.setStatus("Match "+strings.ToUpper(m.ctrl.State().Mode.String()), false)
	case "y":
		cmd = m.copyLink()
	case "e":
		cmd = m.startExport()
	case "[", "]", "<", ">":
		cmd = m.resize(layout.GutterLeft, key == "]" || key == ">", key == "<" || key == ">")
	case "{", "}", "(", ")":
		cmd = m.resize(layout.GutterRight, key == "}" || key == ")", key == "(" || key == ")")
	case "=":
		if _, err := m.layout.Reset(m.width); err != nil {
			cmd = m.setStatus(fmt.Sprintf("Could not reset widths: %v", err), true)
		}
	case "T":
		m.theme = NewTheme(m.renderer, !m.theme.Dark, m.theme.HighContrast)
		m.persist(localstore.KeyTheme, m.theme.Name())
		cmd = m.setStatus("Theme: "+m.theme.Name(), false)
	case "H":
		m.theme = NewTheme(m.renderer, m.theme.Dark, !m.theme.HighContrast)
		m.persist(localstore.KeyHighContrast, onOff(m.theme.HighContrast))
		cmd = m.setStatus("High contrast: "+onOff(m.theme.HighContrast), false)
	case "#":
		m.prevFocus = m.focused
		m.focused = focusHashPrompt
		m.hashInput.SetValue(m.ctrl.Hash())
		m.hashInput.CursorEnd()
		cmd = m.hashInput.Focus()
	case "R":
		if m.source != "" {
			cmd = LoadCatalogCmd(m.source, m.loadOpts, true)
		}
	case "?":
		m.prevFocus = m.focused
		m.focused = focusHelp
	}
	m.rebuild()
	return m, cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) persist(key, value string) {
	if err := m.store.Set(key, value); err != nil {
		debug.Log("ui: persist %s: %v", key, err)
	}
}

func (m *Model) move(delta int) {
	switch m.focused {
	case focusIndicators:
		if m.ctrl.MoveIndicator(delta) {
			m.datasetCursor = 0
			m.detail.GotoTop()
		}
	case focusDatasets:
		m.datasetCursor = clampCursor(m.datasetCursor+delta, len(m.tree.Datasets))
	case focusDetail:
		if delta > 0 {
			m.detail.LineDown(delta)
		} else {
			m.detail.LineUp(-delta)
		}
	}
}

func (m *Model) activate() {
	switch m.focused {
	case focusIndicators:
		m.focused = focusDatasets
	case focusDatasets:
		if m.datasetCursor < len(m.tree.Datasets) {
			m.ctrl.SelectDataset(m.tree.Datasets[m.datasetCursor].ID)
			m.detail.GotoTop()
		}
	}
}

func (m *Model) toggleChip(i int) tea.Cmd {
	h := m.tree.Header
	if h == nil || i >= len(h.Chips) {
		return nil
	}
	chip := h.Chips[i]
	m.ctrl.ToggleTag(chip.ID)
	state := "on"
	if chip.Active {
		state = "off"
	}
	return m.setStatus(fmt.Sprintf("Tag %s %s", chip.ID, state), false)
}

func (m *Model) copyLink() tea.Cmd {
	link := m.ctrl.DeepLink(m.baseURL)
	if err := m.copyText(link); err != nil {
		debug.Log("ui: copy link: %v", err)
		return m.setStatus(StatusLinkCopyFailed, true)
	}
	return m.setStatus(StatusLinkCopied, false)
}

func (m *Model) startExport() tea.Cmd {
	opts := export.Options{
		OutputDir:    m.exportCfg.OutputDir,
		Title:        m.exportCfg.Title,
		Hash:         m.ctrl.Hash(),
		Theme:        m.theme.Name(),
		HighContrast: m.theme.HighContrast,
		SQLite:       m.exportCfg.SQLiteEnabled(),
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultConfig().Export.OutputDir
	}
	return tea.Batch(
		m.setStatus("Exporting to "+opts.OutputDir+"…", false),
		ExportCmd(m.ctrl.Catalog(), opts),
	)
}

func (m *Model) resize(g layout.Gutter, right, large bool) tea.Cmd {
	dir := -1
	if right {
		dir = 1
	}
	if _, err := m.layout.KeyResize(g, dir, large, m.width); err != nil {
		return m.setStatus(fmt.Sprintf("Could not save widths: %v", err), true)
	}
	return nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.focused = m.prevFocus
		return m, nil
	case "ctrl+l":
		m.search.SetValue("")
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.applySearch()
		m.rebuild()
		return m, cmd
	}
	m.applySearch()
	m.rebuild()
	return m, nil
}

func (m *Model) applySearch() {
	if m.ready() && m.search.Value() != m.ctrl.State().SearchQuery {
		m.ctrl.SetSearchQuery(m.search.Value())
	}
}

func (m Model) handleHashKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.hashInput.Blur()
		m.focused = m.prevFocus
		return m, nil
	case "enter":
		m.hashInput.Blur()
		m.focused = m.prevFocus
		if !m.ready() {
			return m, nil
		}
		m.ctrl.ApplyHash(m.hashInput.Value())
		m.rebuild()
		return m, m.setStatus("View restored from hash", false)
	}
	var cmd tea.Cmd
	m.hashInput, cmd = m.hashInput.Update(msg)
	return m, cmd
}

func (m Model) handleTagPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.picker.Typing() {
		switch key {
		case "esc", "enter":
			m.picker.StopTyping()
		case "up":
			m.picker.MoveUp()
		case "down":
			m.picker.MoveDown()
		default:
			return m, m.picker.UpdateInput(msg)
		}
		return m, nil
	}

	switch key {
	case "esc", "t", "q":
		m.focused = m.prevFocus
		m.picker.Reset()
		return m, nil
	case "j", "down":
		m.picker.MoveDown()
		return m, nil
	case "k", "up":
		m.picker.MoveUp()
		return m, nil
	case "/":
		return m, m.picker.StartTyping()
	case " ", "enter":
		if id := m.picker.Current(); id != "" && m.ready() {
			m.ctrl.ToggleTag(id)
		}
	case "a":
		if m.ready() {
			m.ctrl.SetMatchMode(m.ctrl.State().Mode.Toggle())
		}
	case "x":
		if m.ready() {
			m.ctrl.ClearTags()
		}
	default:
		return m, nil
	}
	m.rebuild()
	return m, nil
}

// handleMouse drags gutters, selects rows and scrolls panels.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	var cmd tea.Cmd
	w := m.widths
	inBody := msg.Y >= 1 && msg.Y <= m.bodyHeight()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			delta := 1
			if msg.Button == tea.MouseButtonWheelUp {
				delta = -1
			}
			saved := m.focused
			m.focused = m.panelAt(msg.X)
			m.move(delta)
			m.focused = saved
		case tea.MouseButtonLeft:
			if !inBody {
				return nil
			}
			switch {
			case abs(msg.X-w.Left) <= 1:
				m.dragging, m.dragGutter = true, layout.GutterLeft
			case abs(msg.X-(w.Left+w.Middle)) <= 1:
				m.dragging, m.dragGutter = true, layout.GutterRight
			default:
				m.focused = m.panelAt(msg.X)
				m.clickRow(msg.Y)
			}
		}
	case tea.MouseActionMotion:
		if m.dragging {
			m.layout.Drag(m.dragGutter, msg.X, m.width)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			if err := m.layout.EndDrag(m.width); err != nil {
				cmd = m.setStatus(fmt.Sprintf("Could not save widths: %v", err), true)
			}
		}
	}
	m.rebuild()
	return cmd
}

func (m Model) panelAt(x int) focus {
	switch {
	case x < m.widths.Left:
		return focusIndicators
	case x < m.widths.Left+m.widths.Middle:
		return focusDatasets
	}
	return focusDetail
}

// clickRow selects the list row under screen row y.
func (m *Model) clickRow(y int) {
	switch m.focused {
	case focusIndicators:
		// Header line, top border, panel title.
		row := y - 3
		rows := m.indicatorRows()
		start := windowStart(m.ctrl.SelectedIndex(), rows, len(m.tree.Indicators))
		if i := start + row; row >= 0 && row < rows && i < len(m.tree.Indicators) {
			m.ctrl.SelectIndicator(m.tree.Indicators[i].ID)
			m.datasetCursor = 0
		}
	case focusDatasets:
		row := y - m.datasetListTop()
		rows := m.datasetRows()
		start := windowStart(m.datasetCursor, rows, len(m.tree.Datasets))
		if i := start + row; row >= 0 && row < rows && i < len(m.tree.Datasets) {
			m.datasetCursor = i
			m.ctrl.SelectDataset(m.tree.Datasets[i].ID)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Controller exposes the view-state, for tests and the robot flags.
func (m Model) Controller() *viewstate.Controller { return m.ctrl }

// Tree returns the current projection.
func (m Model) Tree() render.Tree { return m.tree }

// Widths returns the current panel widths.
func (m Model) Widths() layout.Widths { return m.widths }

// FocusState names the focused element.
func (m Model) FocusState() string { return m.focused.String() }

// StatusMessage returns the status line text and whether it is an error.
func (m Model) StatusMessage() (string, bool) { return m.statusMsg, m.statusIsError }

// Theme returns the active theme.
func (m Model) Theme() Theme { return m.theme }
