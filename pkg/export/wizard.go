package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/catalogview/pkg/config"
)

// WizardFileName is the saved wizard answers file in the config dir.
const WizardFileName = "export-wizard.json"

// WizardConfig is what the wizard asks for and remembers.
type WizardConfig struct {
	OutputDir    string `json:"output_dir"`
	Title        string `json:"title"`
	Hash         string `json:"hash,omitempty"`
	Theme        string `json:"theme"`
	HighContrast bool   `json:"high_contrast,omitempty"`
	SQLite       bool   `json:"sqlite"`
}

// Options converts the answers into ExportAll options.
func (c WizardConfig) Options() Options {
	return Options{
		OutputDir:    c.OutputDir,
		Title:        c.Title,
		Hash:         c.Hash,
		Theme:        c.Theme,
		HighContrast: c.HighContrast,
		SQLite:       c.SQLite,
	}
}

// Wizard collects export options interactively.
type Wizard struct {
	config WizardConfig
	out    io.Writer
	// accessible forces huh's line-based prompts.
	accessible bool
}

// NewWizard starts from defaults; saved answers, when present, take over.
func NewWizard(defaults WizardConfig) *Wizard {
	w := &Wizard{config: defaults, out: os.Stdout, accessible: !isTerminal()}
	if saved, err := LoadWizardConfig(); err == nil && saved != nil {
		w.config = mergeWizardConfig(defaults, *saved)
	}
	return w
}

// Config returns the current answers.
func (w *Wizard) Config() WizardConfig { return w.config }

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (w *Wizard) newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithTheme(huh.ThemeDracula()).
		WithAccessible(w.accessible)
}

// Run asks for the options and saves them for next time.
func (w *Wizard) Run() (WizardConfig, error) {
	fmt.Fprintln(w.out, "cv export")
	fmt.Fprintln(w.out, strings.Repeat("─", 40))

	cfg := w.config
	theme := cfg.Theme
	if theme == "" {
		theme = "dark"
	}

	form := w.newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Value(&cfg.OutputDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("output directory is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Page title").
				Value(&cfg.Title).
				Placeholder("Data Catalog"),
			huh.NewInput().
				Title("View to snapshot (hash, optional)").
				Description("e.g. indicator=I1&cic=CIC2&mode=all").
				Value(&cfg.Hash),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&theme),
			huh.NewConfirm().
				Title("High contrast?").
				Value(&cfg.HighContrast),
			huh.NewConfirm().
				Title("Also write a SQLite database?").
				Description(SQLiteFileName + " with full-text search over indicators").
				Value(&cfg.SQLite),
		),
	)
	if err := form.Run(); err != nil {
		return WizardConfig{}, err
	}

	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	cfg.Hash = strings.TrimPrefix(strings.TrimSpace(cfg.Hash), "#")
	cfg.Theme = theme
	w.config = cfg

	if err := SaveWizardConfig(cfg); err != nil {
		fmt.Fprintf(w.out, "Warning: could not save answers: %v\n", err)
	}
	return cfg, nil
}

func mergeWizardConfig(defaults, saved WizardConfig) WizardConfig {
	out := saved
	if out.OutputDir == "" {
		out.OutputDir = defaults.OutputDir
	}
	if out.Title == "" {
		out.Title = defaults.Title
	}
	if out.Theme == "" {
		out.Theme = defaults.Theme
	}
	return out
}

// WizardConfigPath returns the saved answers path, or "" when no config dir
// can be determined.
func WizardConfigPath() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, WizardFileName)
}

// LoadWizardConfig returns the saved answers, or nil when none exist.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, errors.New("could not determine config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveWizardConfig stores answers for the next run.
func SaveWizardConfig(cfg WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return errors.New("could not determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
