package export

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/render"
	"github.com/vanderheijden86/catalogview/pkg/viewstate"
)

// HTMLExporter renders one view of the catalog as a static page.
type HTMLExporter struct {
	Catalog      *model.Catalog
	Title        string
	Hash         string
	Search       string
	Category     string
	Theme        string
	HighContrast bool
}

// Export writes HTMLFileName and CatalogFileName into dir.
func (e *HTMLExporter) Export(ctx context.Context, dir string) (htmlPath, catalogPath string, err error) {
	c := viewstate.New(e.Catalog, viewstate.WithSearch(e.Search), viewstate.WithCategory(e.Category))
	if e.Hash != "" {
		c.ApplyHash(e.Hash)
	}
	tree := render.Build(render.Input{
		Catalog:  c.Catalog(),
		Filtered: c.Filtered(),
		State:    c.State(),
		Loaded:   true,
	})

	page := render.Page{
		Title:        e.Title,
		Hash:         c.Hash(),
		Theme:        e.Theme,
		HighContrast: e.HighContrast,
		CatalogHref:  CatalogFileName,
	}
	if e.Catalog != nil && !e.Catalog.GeneratedAt.IsZero() {
		page.GeneratedAt = e.Catalog.GeneratedAt.UTC().Format(time.RFC3339)
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, tree, page); err != nil {
		return "", "", err
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	htmlPath = filepath.Join(dir, HTMLFileName)
	if err := writeFileAtomic(htmlPath, buf.Bytes()); err != nil {
		return "", "", fmt.Errorf("write %s: %w", HTMLFileName, err)
	}

	data, err := model.Encode(e.Catalog)
	if err != nil {
		return "", "", fmt.Errorf("encode catalog: %w", err)
	}
	catalogPath = filepath.Join(dir, CatalogFileName)
	if err := writeFileAtomic(catalogPath, data); err != nil {
		return "", "", fmt.Errorf("write %s: %w", CatalogFileName, err)
	}
	return htmlPath, catalogPath, nil
}
