// Package export writes shareable snapshots of a catalog view: a
// self-contained HTML page with a copy of the catalog JSON, and a SQLite
// database for ad-hoc querying.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/model"
)

// Output file names.
const (
	HTMLFileName    = "index.html"
	CatalogFileName = "catalog.json"
	SQLiteFileName  = "catalog.sqlite3"
)

// Options selects what ExportAll writes.
type Options struct {
	OutputDir    string
	Title        string
	Hash         string // view-state applied to the HTML snapshot
	Search       string
	Category     string
	Theme        string
	HighContrast bool
	SQLite       bool
}

// Result lists the files written.
type Result struct {
	HTMLPath    string
	CatalogPath string
	SQLitePath  string
	FTS         bool // SQLite full-text index was created
}

// ExportAll writes the HTML snapshot and, when enabled, the SQLite database
// concurrently. The first error cancels the other exporter.
func ExportAll(ctx context.Context, cat *model.Catalog, opts Options) (Result, error) {
	defer metrics.Timer(metrics.Export)()

	if opts.OutputDir == "" {
		return Result{}, fmt.Errorf("export: no output directory")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	var res Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h := &HTMLExporter{Catalog: cat, Title: opts.Title, Hash: opts.Hash, Search: opts.Search, Category: opts.Category, Theme: opts.Theme, HighContrast: opts.HighContrast}
		htmlPath, jsonPath, err := h.Export(gctx, opts.OutputDir)
		if err != nil {
			return err
		}
		res.HTMLPath, res.CatalogPath = htmlPath, jsonPath
		return nil
	})

	if opts.SQLite {
		g.Go(func() error {
			s := NewSQLiteExporter(cat)
			s.Config.Title = opts.Title
			path, err := s.Export(gctx, opts.OutputDir)
			if err != nil {
				return err
			}
			res.SQLitePath, res.FTS = path, s.FTSEnabled()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	debug.Log("export: wrote %s (sqlite=%v)", opts.OutputDir, opts.SQLite)
	return res, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
