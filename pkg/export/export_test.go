package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/loader"
	"github.com/vanderheijden86/catalogview/pkg/model"
)

func fixture() *model.Catalog {
	return model.NewCatalog([]model.Indicator{
		{ID: "I1", Name: "Heat days", Category: "Exposure", Description: "Days above 30 degrees.",
			TagIDs: []string{"CIC1", "CIC10"},
			Datasets: []model.Dataset{
				{ID: "D1", Name: "Station records", Source: "see https://example.org/stations"},
				{ID: "D2", Name: "Reanalysis", URL: "https://example.org/era5"},
			}},
		{ID: "I2", Name: "Crop yield", Category: "Sensitivity", Description: "Yield losses under drought.",
			TagIDs: []string{"CIC2"},
			Datasets: []model.Dataset{{ID: "D3", Name: "FAO yields"}}},
		{ID: "I3", Name: "Insurance cover", Category: "Adaptive Capacity"},
	}, []model.Tag{
		{ID: "CIC1", Description: "Heat stress", Area: "Health"},
		{ID: "CIC2", Description: "Crop failure", Area: "Agriculture"},
		{ID: "CIC10", Impact: "Labour loss"},
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestExportAllWritesEveryFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res, err := ExportAll(context.Background(), fixture(), Options{
		OutputDir: dir,
		Title:     "Climate risk",
		Hash:      "indicator=I2&dataset=D3",
		SQLite:    true,
	})
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	for _, p := range []string{res.HTMLPath, res.CatalogPath, res.SQLitePath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %q: %v", p, err)
		}
	}

	html, err := os.ReadFile(res.HTMLPath)
	if err != nil {
		t.Fatal(err)
	}
	page := string(html)
	for _, want := range []string{"Climate risk", "FAO yields", "indicator=I2&amp;dataset=D3"} {
		if !strings.Contains(page, want) {
			t.Errorf("snapshot missing %q", want)
		}
	}
}

func TestExportAllRequiresOutputDir(t *testing.T) {
	if _, err := ExportAll(context.Background(), fixture(), Options{}); err == nil {
		t.Error("expected error without output dir")
	}
}

func TestHTMLExportCatalogCopyLoads(t *testing.T) {
	dir := t.TempDir()
	h := &HTMLExporter{Catalog: fixture()}
	_, jsonPath, err := h.Export(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	cat, err := loader.Load(context.Background(), jsonPath)
	if err != nil {
		t.Fatalf("exported catalog does not load: %v", err)
	}
	if cat.Len() != 3 || cat.DatasetCount() != 3 || len(cat.Tags) != 3 {
		t.Errorf("round trip lost data: %d indicators, %d datasets, %d tags", cat.Len(), cat.DatasetCount(), len(cat.Tags))
	}
	if !cat.GeneratedAt.Equal(fixture().GeneratedAt) {
		t.Errorf("generated_at = %v", cat.GeneratedAt)
	}
}

func TestHTMLExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := &HTMLExporter{Catalog: fixture()}
	if _, _, err := h.Export(ctx, t.TempDir()); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestSQLiteExport(t *testing.T) {
	dir := t.TempDir()
	e := NewSQLiteExporter(fixture())
	e.Config.Title = "Climate risk"
	path, err := e.Export(context.Background(), dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	db := openDB(t, path)

	if n := count(t, db, `SELECT COUNT(*) FROM indicators`); n != 3 {
		t.Errorf("indicators = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM datasets`); n != 3 {
		t.Errorf("datasets = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM indicator_tags WHERE tag_id = ?`, "CIC1"); n != 1 {
		t.Errorf("CIC1 links = %d", n)
	}

	var link string
	if err := db.QueryRow(`SELECT link FROM datasets WHERE id = 'D1'`).Scan(&link); err != nil {
		t.Fatal(err)
	}
	if link != "https://example.org/stations" {
		t.Errorf("link = %q", link)
	}

	var label string
	if err := db.QueryRow(`SELECT label FROM tags WHERE id = 'CIC1'`).Scan(&label); err != nil {
		t.Fatal(err)
	}
	if label != "CIC1: Heat stress (Health)" {
		t.Errorf("label = %q", label)
	}

	var title, indicators string
	db.QueryRow(`SELECT value FROM meta WHERE key = 'title'`).Scan(&title)
	db.QueryRow(`SELECT value FROM meta WHERE key = 'indicator_count'`).Scan(&indicators)
	if title != "Climate risk" || indicators != "3" {
		t.Errorf("meta title=%q indicator_count=%q", title, indicators)
	}

	if e.FTSEnabled() {
		var id string
		if err := db.QueryRow(`SELECT id FROM indicators_fts WHERE indicators_fts MATCH 'drought'`).Scan(&id); err != nil {
			t.Fatalf("fts query: %v", err)
		}
		if id != "I2" {
			t.Errorf("fts hit = %q, want I2", id)
		}
	}
}

func TestSQLiteExportReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SQLiteFileName), []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewSQLiteExporter(fixture())
	e.Config.SkipFTS = true
	path, err := e.Export(context.Background(), dir)
	if err != nil {
		t.Fatalf("Export over stale file: %v", err)
	}
	if e.FTSEnabled() {
		t.Error("SkipFTS should leave the index out")
	}
	if n := count(t, openDB(t, path), `SELECT COUNT(*) FROM tags`); n != 3 {
		t.Errorf("tags = %d", n)
	}
}

func TestSQLiteExportEmptyCatalog(t *testing.T) {
	path, err := NewSQLiteExporter(nil).Export(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if n := count(t, openDB(t, path), `SELECT COUNT(*) FROM indicators`); n != 0 {
		t.Errorf("indicators = %d", n)
	}
}

func TestWizardConfigSaveLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if got, err := LoadWizardConfig(); err != nil || got != nil {
		t.Fatalf("no saved config: got %+v, %v", got, err)
	}

	want := WizardConfig{OutputDir: "/tmp/site", Title: "Risk", Hash: "cic=CIC1", Theme: "light", SQLite: true}
	if err := SaveWizardConfig(want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadWizardConfig()
	if err != nil || got == nil || *got != want {
		t.Fatalf("LoadWizardConfig = %+v, %v", got, err)
	}
	if filepath.Base(WizardConfigPath()) != WizardFileName {
		t.Errorf("path = %s", WizardConfigPath())
	}

	w := NewWizard(WizardConfig{OutputDir: "default", Title: "Default"})
	if w.Config() != want {
		t.Errorf("saved answers should take over defaults: %+v", w.Config())
	}
}

func TestWizardConfigOptions(t *testing.T) {
	merged := mergeWizardConfig(
		WizardConfig{OutputDir: "cv-export", Title: "Data Catalog", Theme: "dark"},
		WizardConfig{SQLite: true, Hash: "indicator=I1"},
	)
	opts := merged.Options()
	if opts.OutputDir != "cv-export" || opts.Title != "Data Catalog" || opts.Theme != "dark" || !opts.SQLite || opts.Hash != "indicator=I1" {
		t.Errorf("Options = %+v", opts)
	}
}
