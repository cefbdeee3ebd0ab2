// Package recipe provides named views: a view-state hash plus an optional
// search query and category, looked up by name from built-in, user and
// project files.
package recipe

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/catalogview/pkg/viewstate"
)

// Recipe is a named starting view.
type Recipe struct {
	Name        string `yaml:"-" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Hash        string `yaml:"hash,omitempty" json:"hash,omitempty"`
	Search      string `yaml:"search,omitempty" json:"search,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// Summary is the listing form of a recipe.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	Hash        string `json:"hash,omitempty"`
}

// Normalize strips a leading '#' and re-encodes the hash so recipes compare
// and print in canonical field order. Unknown keys are dropped.
func (r *Recipe) Normalize() {
	r.Hash = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r.Hash), "#"))
	if r.Hash != "" {
		r.Hash = viewstate.ParseHash(r.Hash).Encode()
	}
	r.Search = strings.TrimSpace(r.Search)
	r.Category = strings.TrimSpace(r.Category)
}

// Validate reports recipes that would select nothing useful.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe has no name")
	}
	if strings.ContainsAny(r.Name, " \t/#") {
		return fmt.Errorf("recipe %q: name must not contain spaces, '/' or '#'", r.Name)
	}
	return nil
}
