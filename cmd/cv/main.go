package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/catalogview/pkg/config"
	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/export"
	"github.com/vanderheijden86/catalogview/pkg/hooks"
	"github.com/vanderheijden86/catalogview/pkg/loader"
	"github.com/vanderheijden86/catalogview/pkg/localstore"
	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/recipe"
	"github.com/vanderheijden86/catalogview/pkg/ui"
	"github.com/vanderheijden86/catalogview/pkg/version"
	"github.com/vanderheijden86/catalogview/pkg/watcher"
)

// BaseURLEnvVar overrides the configured deep-link base.
const BaseURLEnvVar = "CV_BASE_URL"

type cliOptions struct {
	catalog      string
	configPath   string
	hash         string
	baseURL      string
	theme        string
	highContrast bool
	noWatch      bool

	robotFilter  bool
	robotMetrics bool
	search       string
	category     string
	recipe       string
	listRecipes  bool

	exportDir    string
	exportTitle  string
	noSQLite     bool
	exportWizard bool
	noHooks      bool

	cpuProfile string
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("cv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: cv [options]")
		fmt.Fprintln(stderr, "\nBrowse a data catalog of indicators, datasets and impact-chain tags.")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.catalog, "catalog", "", "Catalog file or http(s) URL (default: $CV_CATALOG, config, ./catalog.json)")
	fs.StringVar(&o.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/cv/config.yaml)")
	fs.StringVar(&o.hash, "hash", "", "Initial view-state, e.g. 'indicator=I1&cic=CIC2'")
	fs.StringVar(&o.baseURL, "base-url", "", "Base URL for copied deep links")
	fs.StringVar(&o.theme, "theme", "", "Color theme: dark or light")
	fs.BoolVar(&o.highContrast, "high-contrast", false, "Use the high-contrast palette")
	fs.BoolVar(&o.noWatch, "no-watch", false, "Do not reload the catalog when the file changes")

	fs.BoolVar(&o.robotFilter, "robot-filter", false, "Print the filtered indicators and hash as JSON and exit")
	fs.BoolVar(&o.robotMetrics, "robot-metrics", false, "Like --robot-filter, with timing metrics")
	fs.StringVar(&o.search, "search", "", "Initial search query")
	fs.StringVar(&o.category, "category", "", "Initial category filter")
	fs.StringVar(&o.recipe, "recipe", "", "Start from a named view (see --list-recipes)")
	fs.BoolVar(&o.listRecipes, "list-recipes", false, "List named views as JSON and exit")

	fs.StringVar(&o.exportDir, "export", "", "Write an HTML snapshot and SQLite database to this directory and exit")
	fs.StringVar(&o.exportTitle, "export-title", "", "Page title for --export")
	fs.BoolVar(&o.noSQLite, "no-sqlite", false, "Skip the SQLite database in --export")
	fs.BoolVar(&o.exportWizard, "export-wizard", false, "Choose export options interactively and export")
	fs.BoolVar(&o.noHooks, "no-hooks", false, "Skip .cv/hooks.yaml during export")

	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&o.version, "version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.theme != "" && o.theme != "dark" && o.theme != "light" {
		return o, fmt.Errorf("invalid --theme %q (expected dark|light)", o.theme)
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "cv %s\n", version.Version)
		return 0
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		// Non-fatal: continue with defaults.
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	applyOverrides(&cfg, opts)

	source, err := resolveSource(opts.catalog, cfg.Catalog)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Pass --catalog, set CV_CATALOG, or run cv next to a catalog.json.")
		return 1
	}

	if opts.listRecipes || opts.recipe != "" {
		rl := recipe.NewLoader(recipe.WithProjectDir(projectDir(source)))
		if err := rl.Load(); err != nil {
			fmt.Fprintf(stderr, "Error loading recipes: %v\n", err)
			return 1
		}
		for _, w := range rl.Warnings() {
			fmt.Fprintf(stderr, "Warning: %s\n", w)
		}
		if opts.listRecipes {
			if err := writeRobotJSON(stdout, rl.ListSummaries()); err != nil {
				fmt.Fprintf(stderr, "Error writing output: %v\n", err)
				return 1
			}
			return 0
		}
		r := rl.Get(opts.recipe)
		if r == nil {
			fmt.Fprintf(stderr, "Error: unknown recipe %q (available: %s)\n", opts.recipe, strings.Join(rl.Names(), ", "))
			return 1
		}
		applyRecipe(&opts, r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.robotFilter || opts.robotMetrics:
		return runRobot(ctx, source, cfg, opts, stdout, stderr)
	case opts.exportDir != "" || opts.exportWizard:
		return runExport(ctx, source, cfg, opts, stdout, stderr)
	}

	if err := runTUI(source, cfg, opts); err != nil {
		fmt.Fprintf(stderr, "Error running catalog viewer: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// applyOverrides layers environment then flags over the config file.
func applyOverrides(cfg *config.Config, opts cliOptions) {
	if v := os.Getenv(BaseURLEnvVar); v != "" {
		cfg.BaseURL = v
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.theme != "" {
		cfg.UI.Theme = opts.theme
	}
	if opts.highContrast {
		cfg.UI.HighContrast = true
	}
	if opts.noWatch {
		off := false
		cfg.Watch = &off
	}
	if opts.exportDir != "" {
		cfg.Export.OutputDir = opts.exportDir
	}
	if opts.exportTitle != "" {
		cfg.Export.Title = opts.exportTitle
	}
	if opts.noSQLite {
		off := false
		cfg.Export.SQLite = &off
	}
}

// applyRecipe fills view options the command line left empty.
func applyRecipe(opts *cliOptions, r *recipe.Recipe) {
	if opts.hash == "" {
		opts.hash = r.Hash
	}
	if opts.search == "" {
		opts.search = r.Search
	}
	if opts.category == "" {
		opts.category = r.Category
	}
}

// resolveSource applies flag > CV_CATALOG > config > discovery.
func resolveSource(flagValue, configured string) (string, error) {
	explicit := flagValue
	if explicit == "" && os.Getenv(loader.CatalogEnvVar) == "" {
		explicit = configured
	}
	return loader.Resolve(explicit, "")
}

func runExport(ctx context.Context, source string, cfg config.Config, opts cliOptions, stdout, stderr io.Writer) int {
	exportOpts := export.Options{
		OutputDir:    cfg.Export.OutputDir,
		Title:        cfg.Export.Title,
		Hash:         opts.hash,
		Search:       opts.search,
		Category:     opts.category,
		Theme:        cfg.UI.Theme,
		HighContrast: cfg.UI.HighContrast,
		SQLite:       cfg.Export.SQLiteEnabled(),
	}
	if opts.exportWizard {
		wiz := export.NewWizard(export.WizardConfig{
			OutputDir:    exportOpts.OutputDir,
			Title:        exportOpts.Title,
			Hash:         exportOpts.Hash,
			Theme:        exportOpts.Theme,
			HighContrast: exportOpts.HighContrast,
			SQLite:       exportOpts.SQLite,
		})
		answers, err := wiz.Run()
		if err != nil {
			fmt.Fprintf(stderr, "Export cancelled: %v\n", err)
			return 1
		}
		exportOpts = answers.Options()
		exportOpts.Search, exportOpts.Category = opts.search, opts.category
	}

	cat, err := loader.Load(ctx, source)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading catalog: %v\n", err)
		return 1
	}

	hookCtx := hooks.ExportContext{
		OutputDir:      exportOpts.OutputDir,
		Hash:           exportOpts.Hash,
		Source:         source,
		IndicatorCount: len(cat.Indicators),
		Timestamp:      time.Now().UTC(),
	}
	executor, err := hooks.RunHooks(projectDir(source), hookCtx, opts.noHooks)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading hooks: %v\n", err)
		return 1
	}
	if executor != nil {
		if err := executor.RunPreExport(); err != nil {
			fmt.Fprintf(stderr, "Export cancelled: %v\n", err)
			fmt.Fprintln(stderr, executor.Summary())
			return 1
		}
	}

	res, err := export.ExportAll(ctx, cat, exportOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Export failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Wrote %s\n", res.HTMLPath)
	fmt.Fprintf(stdout, "Wrote %s\n", res.CatalogPath)
	if res.SQLitePath != "" {
		fts := "with full-text index"
		if !res.FTS {
			fts = "without full-text index"
		}
		fmt.Fprintf(stdout, "Wrote %s (%s)\n", res.SQLitePath, fts)
	}

	if executor != nil {
		hookCtx.HTMLPath = res.HTMLPath
		hookCtx.SQLitePath = res.SQLitePath
		executor.SetContext(hookCtx)
		err := executor.RunPostExport()
		fmt.Fprintln(stderr, executor.Summary())
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
	}
	return 0
}

// projectDir holds the .cv directory: the catalog's directory for files,
// the working directory for URLs.
func projectDir(source string) string {
	if loader.IsURL(source) {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(source)
}

func runTUI(source string, cfg config.Config, opts cliOptions) error {
	if debug.Enabled() {
		f, err := tea.LogToFile(debug.LogFile(), "cv")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		debug.SetOutput(f)
	}

	store := localstore.OpenDefault()

	var w *watcher.Watcher
	if cfg.WatchEnabled() && !loader.IsURL(source) {
		var err error
		w, err = watcher.New(source)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("live reload disabled: %v", err)
			w = nil
		}
	}

	m := ui.NewModel(ui.Options{
		Source:      source,
		LoadOptions: loader.Options{Timeout: loader.DefaultTimeout},
		Hash:        opts.hash,
		Search:      opts.search,
		Category:    opts.category,
		Config:      cfg,
		Store:       store,
		Watcher:     w,
	})
	defer m.Stop()
	if debug.Enabled() {
		defer metrics.LogSummary()
	}

	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
