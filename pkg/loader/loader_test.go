package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/catalogview/pkg/loader"
)

const sampleCatalog = `{"generated_at":"2025-01-02T03:04:05Z","indicators":[{"id":"A","indicator":"Alpha","category":"Exposure","cic_ids":["t1"],"datasets":[{"id":"D1","name":"One"}]}],"cics":[{"id":"t1","description":"Tag one"}]}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// =============================================================================
// Resolve / FindCatalogPath
// =============================================================================

func TestResolve_ExplicitWins(t *testing.T) {
	t.Setenv(loader.CatalogEnvVar, "/from/env.json")
	got, err := loader.Resolve("explicit.json", t.TempDir())
	if err != nil || got != "explicit.json" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
}

func TestResolve_EnvBeforeDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalog.json"), sampleCatalog)
	t.Setenv(loader.CatalogEnvVar, "https://example.org/catalog.json")

	got, err := loader.Resolve("", dir)
	if err != nil || got != "https://example.org/catalog.json" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
}

func TestFindCatalogPath_PrefersRootThenDocs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "catalog.json"), sampleCatalog)

	got, err := loader.FindCatalogPath(dir)
	if err != nil {
		t.Fatalf("FindCatalogPath: %v", err)
	}
	if got != filepath.Join(dir, "docs", "catalog.json") {
		t.Errorf("expected docs fallback, got %s", got)
	}

	writeFile(t, filepath.Join(dir, "catalog.json"), sampleCatalog)
	got, _ = loader.FindCatalogPath(dir)
	if got != filepath.Join(dir, "catalog.json") {
		t.Errorf("expected root catalog preferred, got %s", got)
	}
}

func TestFindCatalogPath_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalog.json"), "")

	_, err := loader.FindCatalogPath(dir)
	if !errors.Is(err, loader.ErrNoCatalog) {
		t.Errorf("expected ErrNoCatalog, got %v", err)
	}
}

// =============================================================================
// Load from file
// =============================================================================

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeFile(t, path, "\xEF\xBB\xBF"+sampleCatalog)

	cat, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 || cat.Indicators[0].Name != "Alpha" {
		t.Errorf("unexpected catalog %+v", cat.Indicators)
	}
	if cat.TagByID("t1") == nil {
		t.Error("tag t1 not loaded")
	}
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoad_InvalidFormatNamesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeFile(t, path, `{"indicators": 3}`)

	_, err := loader.Load(context.Background(), path)
	if !errors.Is(err, loader.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the source: %v", err)
	}
}

func TestLoad_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeFile(t, path, sampleCatalog)

	_, err := loader.LoadWithOptions(context.Background(), path, loader.Options{MaxBytes: 10})
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected size error, got %v", err)
	}
}

// =============================================================================
// Load from URL
// =============================================================================

func TestLoad_URL(t *testing.T) {
	var cacheControl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	cat, err := loader.Load(context.Background(), srv.URL+"/catalog.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("expected 1 indicator, got %d", cat.Len())
	}
	if cacheControl != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cacheControl)
	}
}

func TestLoad_URLStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := loader.Load(context.Background(), srv.URL)
	var se *loader.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
}

func TestLoad_URLMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := loader.Load(context.Background(), srv.URL)
	if !errors.Is(err, loader.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoad_URLCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.Load(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://x/catalog.json": true,
		"HTTP://x":               true,
		"ftp://x":                false,
		"docs/catalog.json":      false,
	} {
		if got := loader.IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v", in, got)
		}
	}
}

func TestParseReader(t *testing.T) {
	cat, err := loader.ParseReader(strings.NewReader(`[{"id":"x","name":"X"}]`))
	if err != nil || cat.Len() != 1 {
		t.Fatalf("ParseReader = %v, %v", cat, err)
	}
}
