package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.Theme != "dark" {
		t.Errorf("expected default theme 'dark', got %q", cfg.UI.Theme)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected base url %q, got %q", DefaultBaseURL, cfg.BaseURL)
	}
	if !cfg.WatchEnabled() {
		t.Error("expected watch enabled by default")
	}
	if !cfg.Export.SQLiteEnabled() {
		t.Error("expected sqlite export enabled by default")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected default config, got theme %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
catalog: ~/catalogs/catalog.json
base_url: https://example.org/catalog/
watch: false

ui:
  theme: light
  high_contrast: true
  left_width: 40
  right_fraction: 0.4

export:
  output_dir: ~/exports
  sqlite: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.Catalog != filepath.Join(home, "catalogs", "catalog.json") {
		t.Errorf("expected ~ expanded in catalog, got %q", cfg.Catalog)
	}
	if cfg.BaseURL != "https://example.org/catalog/" {
		t.Errorf("base_url = %q", cfg.BaseURL)
	}
	if cfg.WatchEnabled() {
		t.Error("expected watch disabled")
	}
	if cfg.UI.Theme != "light" || !cfg.UI.HighContrast || cfg.UI.LeftWidth != 40 || cfg.UI.RightFraction != 0.4 {
		t.Errorf("unexpected ui config %+v", cfg.UI)
	}
	if cfg.Export.OutputDir != filepath.Join(home, "exports") || cfg.Export.SQLiteEnabled() {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Export.Title != "Data Catalog" {
		t.Errorf("unset keys should keep defaults, got title %q", cfg.Export.Title)
	}
}

func TestLoadFrom_URLCatalogUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("catalog: https://example.org/catalog.json\nui:\n  theme: neon\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalog != "https://example.org/catalog.json" {
		t.Errorf("catalog = %q", cfg.Catalog)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("unknown theme should fall back to dark, got %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_RightFractionOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  right_fraction: 0.95\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for right_fraction 0.95")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	off := false
	cfg := Config{
		Catalog: "/data/catalog.json",
		BaseURL: "https://example.org/",
		Watch:   &off,
		UI: UIConfig{
			Theme:         "light",
			HighContrast:  true,
			LeftWidth:     32,
			RightFraction: 0.3,
		},
		Export: ExportConfig{OutputDir: "/tmp/out", Title: "Climate risk"},
	}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Catalog != cfg.Catalog || loaded.BaseURL != cfg.BaseURL {
		t.Errorf("catalog/base_url changed: %+v", loaded)
	}
	if loaded.WatchEnabled() {
		t.Error("watch should stay disabled")
	}
	if loaded.UI != cfg.UI {
		t.Errorf("ui changed: %+v vs %+v", loaded.UI, cfg.UI)
	}
	if loaded.Export.Title != "Climate risk" || loaded.Export.OutputDir != "/tmp/out" {
		t.Errorf("export changed: %+v", loaded.Export)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestXDGOverrides(t *testing.T) {
	tests := []struct {
		env string
		fn  func() string
	}{
		{"XDG_CONFIG_HOME", ConfigDir},
		{"XDG_DATA_HOME", DataDir},
		{"XDG_STATE_HOME", StateDir},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv(tt.env, dir)
			if got, want := tt.fn(), filepath.Join(dir, "cv"); got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := ConfigPath(); got != filepath.Join(dir, "cv", "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}
