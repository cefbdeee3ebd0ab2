// Package filter derives the visible subset of a catalog from the active
// category, impact-chain tags and free-text search.
//
// Everything here is pure: the same catalog and criteria always produce the
// same list, and the catalog order is never changed.
package filter

import (
	"strings"

	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/model"
)

// MatchMode selects how multiple active tags combine.
type MatchMode int

const (
	MatchAny MatchMode = iota // indicator needs at least one active tag
	MatchAll                  // indicator needs every active tag
)

// String returns the hash spelling of the mode.
func (m MatchMode) String() string {
	if m == MatchAll {
		return "all"
	}
	return "any"
}

// Toggle flips between ANY and ALL.
func (m MatchMode) Toggle() MatchMode {
	if m == MatchAll {
		return MatchAny
	}
	return MatchAll
}

// Criteria is the filter-relevant slice of the view-state.
type Criteria struct {
	Category string
	TagIDs   map[string]bool
	Mode     MatchMode
	Query    string
}

// Active reports whether any predicate would reject something.
func (c Criteria) Active() bool {
	return c.Category != "" || len(c.TagIDs) > 0 || normalizeQuery(c.Query) != ""
}

// Indicators returns the indicators passing every predicate, in catalog
// order. Predicates run category, then tags, then text.
func Indicators(cat *model.Catalog, c Criteria) []model.Indicator {
	defer metrics.Timer(metrics.FilterPass)()

	out := make([]model.Indicator, 0, cat.Len())
	if cat == nil {
		return out
	}
	q := normalizeQuery(c.Query)
	for i := range cat.Indicators {
		ind := &cat.Indicators[i]
		if Matches(ind, c.Category, c.TagIDs, c.Mode, q) {
			out = append(out, *ind)
		}
	}
	return out
}

// Matches applies the three predicates to a single indicator. query must
// already be normalized (trimmed, lower-cased).
func Matches(ind *model.Indicator, category string, tags map[string]bool, mode MatchMode, query string) bool {
	if category != "" && ind.Category != category {
		return false
	}
	if len(tags) > 0 && !matchesTags(ind.TagIDs, tags, mode) {
		return false
	}
	if query != "" {
		if !strings.Contains(strings.ToLower(ind.Name), query) &&
			!strings.Contains(strings.ToLower(ind.Description), query) {
			return false
		}
	}
	return true
}

func matchesTags(have []string, active map[string]bool, mode MatchMode) bool {
	// An untagged indicator never matches a tag filter, even under ANY.
	if len(have) == 0 {
		return false
	}
	if mode == MatchAll {
		set := make(map[string]bool, len(have))
		for _, id := range have {
			set[id] = true
		}
		for id := range active {
			if !set[id] {
				return false
			}
		}
		return true
	}
	for _, id := range have {
		if active[id] {
			return true
		}
	}
	return false
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Contains reports whether id is in the list.
func Contains(list []model.Indicator, id string) bool {
	for i := range list {
		if list[i].ID == id {
			return true
		}
	}
	return false
}

// Stats mirrors the header counters: visible indicators and the datasets
// they carry.
type Stats struct {
	Indicators int `json:"indicators"`
	Datasets   int `json:"datasets"`
}

// Summarize counts indicators and datasets in a filtered list.
func Summarize(list []model.Indicator) Stats {
	s := Stats{Indicators: len(list)}
	for _, ind := range list {
		s.Datasets += len(ind.Datasets)
	}
	return s
}
