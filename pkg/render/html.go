package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html.tmpl").
		Funcs(template.FuncMap{
			"emptyLine": func(e EmptyState) string { return e.Message() },
			"emptyHint": func(e EmptyState) string { return e.Hint() },
			"accent":    func(c string) template.CSS { return template.CSS("--cat-color: " + safeColor(c)) },
		}).
		ParseFS(templateFS, "templates/page.html.tmpl"),
)

// Page carries the page-level fields around a Tree.
type Page struct {
	Title        string
	GeneratedAt  string
	Hash         string
	Theme        string // "dark" or "light"
	HighContrast bool
	CatalogHref  string
}

type pageData struct {
	Page
	Tree
}

// HTML writes tree as a standalone page. Every catalog string goes through
// html/template's contextual escaping; links are only emitted after the
// http(s) check in PickDatasetURL.
func HTML(w io.Writer, tree Tree, page Page) error {
	if page.Title == "" {
		page.Title = "Data Catalog"
	}
	if page.Theme != "light" {
		page.Theme = "dark"
	}
	if err := pageTemplate.Execute(w, pageData{Page: page, Tree: tree}); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// safeColor only lets through the "#rrggbb" accents CategoryColor produces.
func safeColor(c string) string {
	if len(c) == 7 && c[0] == '#' && strings.Trim(c[1:], "0123456789abcdefABCDEF") == "" {
		return c
	}
	return ColorDefault
}
