package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/catalogview/pkg/export"
	"github.com/vanderheijden86/catalogview/pkg/loader"
	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/watcher"
)

// CatalogLoadedMsg carries the result of a (re)load.
type CatalogLoadedMsg struct {
	Catalog *model.Catalog
	Err     error
	Reload  bool
	Elapsed time.Duration
}

// FileChangedMsg is sent when the catalog file changes on disk.
type FileChangedMsg struct{}

// ExportDoneMsg reports a finished export.
type ExportDoneMsg struct {
	Result export.Result
	Err    error
}

// statusClearMsg expires a status message; seq guards against clearing a
// newer one.
type statusClearMsg struct{ seq int }

const statusTTL = 4 * time.Second

// LoadCatalogCmd loads source off the UI goroutine.
func LoadCatalogCmd(source string, opts loader.Options, reload bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		cat, err := loader.LoadWithOptions(context.Background(), source, opts)
		return CatalogLoadedMsg{Catalog: cat, Err: err, Reload: reload, Elapsed: time.Since(start)}
	}
}

// WatchFileCmd waits for the next change and sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ExportCmd runs export.ExportAll in the background.
func ExportCmd(cat *model.Catalog, opts export.Options) tea.Cmd {
	return func() tea.Msg {
		res, err := export.ExportAll(context.Background(), cat, opts)
		return ExportDoneMsg{Result: res, Err: err}
	}
}

func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}
