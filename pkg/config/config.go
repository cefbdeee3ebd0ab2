// Package config handles loading and saving cv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/cv/config.yaml (also export-wizard.json)
//   - Data:    ~/.local/share/cv/ (exports)
//   - State:   ~/.local/state/cv/state.json (column widths, theme)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppName is the directory name used under each XDG base directory.
const AppName = "cv"

// UIConfig holds UI preference settings. Zero values mean "use the stored
// or built-in default".
type UIConfig struct {
	Theme         string  `yaml:"theme,omitempty"`          // dark, light
	HighContrast  bool    `yaml:"high_contrast,omitempty"`  // start in high contrast
	LeftWidth     int     `yaml:"left_width,omitempty"`     // indicator column, in cells
	RightFraction float64 `yaml:"right_fraction,omitempty"` // detail column share (0.1-0.7)
}

// ExportConfig holds defaults for `cv --export`.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir,omitempty"`
	Title     string `yaml:"title,omitempty"`
	SQLite    *bool  `yaml:"sqlite,omitempty"`
}

// Config is the top-level configuration for cv.
type Config struct {
	Catalog string       `yaml:"catalog,omitempty"`  // path or http(s) URL
	BaseURL string       `yaml:"base_url,omitempty"` // deep-link base
	Watch   *bool        `yaml:"watch,omitempty"`    // live reload of file catalogs
	UI      UIConfig     `yaml:"ui,omitempty"`
	Export  ExportConfig `yaml:"export,omitempty"`
}

// DefaultBaseURL prefixes deep links when no base_url is configured.
const DefaultBaseURL = "index.html"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		UI: UIConfig{
			Theme: "dark",
		},
		Export: ExportConfig{
			OutputDir: "cv-export",
			Title:     "Data Catalog",
		},
	}
}

// WatchEnabled reports whether live reload is on (default true).
func (c Config) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

// SQLiteEnabled reports whether exports include the SQLite file (default true).
func (e ExportConfig) SQLiteEnabled() bool {
	return e.SQLite == nil || *e.SQLite
}

// ConfigDir returns the XDG config directory for cv.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for cv.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for cv.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, AppName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if !strings.HasPrefix(strings.ToLower(cfg.Catalog), "http") {
		cfg.Catalog = expandHome(cfg.Catalog)
	}
	cfg.Export.OutputDir = expandHome(cfg.Export.OutputDir)
	if cfg.UI.Theme != "light" {
		cfg.UI.Theme = "dark"
	}
	if f := cfg.UI.RightFraction; f != 0 && (f < 0.1 || f > 0.7) {
		return cfg, fmt.Errorf("parsing config: ui.right_fraction %.2f outside 0.1-0.7", f)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
