package recipe

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/catalogview/pkg/config"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Sources, lowest precedence first.
const (
	SourceBuiltin = "builtin"
	SourceUser    = "user"
	SourceProject = "project"
)

// FileName is the recipe file name in the user config dir and in a
// project's .cv directory.
const FileName = "recipes.yaml"

type file struct {
	Recipes map[string]*Recipe `yaml:"recipes"`
}

// Loader merges built-in, user and project recipes. Later layers replace
// earlier ones by name; a null entry removes the recipe.
type Loader struct {
	userPath   string
	projectDir string

	recipes  map[string]*Recipe
	sources  map[string]string
	warnings []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithUserPath sets the user recipe file. Empty disables it.
func WithUserPath(path string) LoaderOption {
	return func(l *Loader) { l.userPath = path }
}

// WithProjectDir sets the directory holding .cv/recipes.yaml. Empty
// disables it.
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) { l.projectDir = dir }
}

// NewLoader creates a loader reading $XDG_CONFIG_HOME/cv/recipes.yaml and
// ./.cv/recipes.yaml unless overridden.
func NewLoader(opts ...LoaderOption) *Loader {
	wd, _ := os.Getwd()
	l := &Loader{
		userPath:   filepath.Join(config.ConfigDir(), FileName),
		projectDir: wd,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all layers. Missing files are skipped and unreadable user or
// project files only add warnings; only a broken built-in set is an error.
func (l *Loader) Load() error {
	l.recipes = make(map[string]*Recipe)
	l.sources = make(map[string]string)
	l.warnings = nil

	var builtin file
	if err := yaml.Unmarshal(builtinYAML, &builtin); err != nil {
		return fmt.Errorf("parsing builtin recipes: %w", err)
	}
	l.merge(builtin, SourceBuiltin)

	if l.userPath != "" {
		l.loadFile(l.userPath, SourceUser)
	}
	if l.projectDir != "" {
		l.loadFile(filepath.Join(l.projectDir, ".cv", FileName), SourceProject)
	}
	return nil
}

func (l *Loader) loadFile(path, source string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.warnings = append(l.warnings, fmt.Sprintf("%s recipes: %v", source, err))
		}
		return
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		l.warnings = append(l.warnings, fmt.Sprintf("%s recipes: parsing %s: %v", source, path, err))
		return
	}
	l.merge(f, source)
}

func (l *Loader) merge(f file, source string) {
	for name, r := range f.Recipes {
		if r == nil {
			delete(l.recipes, name)
			delete(l.sources, name)
			continue
		}
		r.Name = name
		r.Normalize()
		if err := r.Validate(); err != nil {
			l.warnings = append(l.warnings, fmt.Sprintf("%s recipes: %v", source, err))
			continue
		}
		l.recipes[name] = r
		l.sources[name] = source
	}
}

// Get returns the named recipe, or nil.
func (l *Loader) Get(name string) *Recipe {
	r, ok := l.recipes[name]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// Source reports which layer defined name.
func (l *Loader) Source(name string) string {
	return l.sources[name]
}

// Names returns recipe names in sorted order.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.recipes))
	for name := range l.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all recipes sorted by name.
func (l *Loader) List() []Recipe {
	out := make([]Recipe, 0, len(l.recipes))
	for _, name := range l.Names() {
		out = append(out, *l.recipes[name])
	}
	return out
}

// ListSummaries returns name, description and source for each recipe.
func (l *Loader) ListSummaries() []Summary {
	out := make([]Summary, 0, len(l.recipes))
	for _, r := range l.List() {
		out = append(out, Summary{Name: r.Name, Description: r.Description, Source: l.sources[r.Name], Hash: r.Hash})
	}
	return out
}

// Warnings returns problems found while loading.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// LoadDefault loads recipes from the default locations.
func LoadDefault() (*Loader, error) {
	l := NewLoader()
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}
