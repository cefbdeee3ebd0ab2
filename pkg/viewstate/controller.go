// Package viewstate owns the current selection and filters of a catalog
// session and keeps them in sync with the deep-link hash.
//
// A Controller is the single source of truth: the UI reads the filtered list
// and selection from it and sends every user action through it. Each
// mutating call recomputes the filtered list, reconciles the selection and
// re-encodes the hash before returning.
package viewstate

import (
	"net/url"
	"strings"

	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/filter"
	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/model"
)

// State is a snapshot of the view-state.
type State struct {
	SelectedIndicatorID string
	SelectedDatasetID   string
	ActiveTagIDs        map[string]bool
	Mode                filter.MatchMode
	SearchQuery         string
	SelectedCategory    string
}

// Criteria returns the filter-relevant part of s.
func (s State) Criteria() filter.Criteria {
	return filter.Criteria{
		Category: s.SelectedCategory,
		TagIDs:   s.ActiveTagIDs,
		Mode:     s.Mode,
		Query:    s.SearchQuery,
	}
}

// ActiveTags returns the active tag ids in natural order.
func (s State) ActiveTags() []string {
	out := make([]string, 0, len(s.ActiveTagIDs))
	for id := range s.ActiveTagIDs {
		out = append(out, id)
	}
	filter.SortTagIDs(out)
	return out
}

func (s State) clone() State {
	c := s
	c.ActiveTagIDs = make(map[string]bool, len(s.ActiveTagIDs))
	for id := range s.ActiveTagIDs {
		c.ActiveTagIDs[id] = true
	}
	return c
}

// Option configures a Controller.
type Option func(*Controller)

// WithHashHook registers fn to receive the encoded hash after every
// mutation.
func WithHashHook(fn func(hash string)) Option {
	return func(c *Controller) { c.onHash = fn }
}

// WithSearch starts the controller with a search query.
func WithSearch(q string) Option {
	return func(c *Controller) { c.state.SearchQuery = q }
}

// WithCategory starts the controller with a category filter.
func WithCategory(cat string) Option {
	return func(c *Controller) { c.state.SelectedCategory = cat }
}

// Controller holds the view-state for one catalog. It is not safe for
// concurrent use; the TUI drives it from its single update loop.
type Controller struct {
	cat      *model.Catalog
	state    State
	filtered []model.Indicator
	hash     string
	onHash   func(string)
}

// New builds a controller over cat and selects the first visible indicator.
func New(cat *model.Catalog, opts ...Option) *Controller {
	c := &Controller{
		cat:   cat,
		state: State{ActiveTagIDs: map[string]bool{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.recompute()
	c.reconcile()
	c.commit()
	return c
}

// Catalog returns the catalog currently shown.
func (c *Controller) Catalog() *model.Catalog { return c.cat }

// State returns a deep copy of the current state.
func (c *Controller) State() State { return c.state.clone() }

// Filtered returns the visible indicators in catalog order. The slice must
// not be modified.
func (c *Controller) Filtered() []model.Indicator { return c.filtered }

// Hash returns the hash written by the last mutation.
func (c *Controller) Hash() string { return c.hash }

// SelectedIndicator returns the selected indicator, or nil.
func (c *Controller) SelectedIndicator() *model.Indicator {
	if c.state.SelectedIndicatorID == "" {
		return nil
	}
	return c.cat.IndicatorByID(c.state.SelectedIndicatorID)
}

// SelectedDataset returns the selected dataset, or nil. A dataset id that
// does not belong to the selected indicator reads as nil.
func (c *Controller) SelectedDataset() *model.Dataset {
	return c.SelectedIndicator().DatasetByID(c.state.SelectedDatasetID)
}

// SelectedIndex returns the position of the selected indicator in Filtered,
// or -1.
func (c *Controller) SelectedIndex() int {
	return indexOf(c.filtered, c.state.SelectedIndicatorID)
}

// SelectIndicator selects a visible indicator and clears the dataset
// selection. Ids outside the filtered list are ignored.
func (c *Controller) SelectIndicator(id string) bool {
	if !filter.Contains(c.filtered, id) {
		debug.Log("select indicator %q: not visible", id)
		return false
	}
	c.state.SelectedIndicatorID = id
	c.state.SelectedDatasetID = ""
	c.commit()
	return true
}

// MoveIndicator selects the indicator delta rows away from the current one,
// clamped to the list.
func (c *Controller) MoveIndicator(delta int) bool {
	if len(c.filtered) == 0 {
		return false
	}
	i := clampIndex(c.SelectedIndex()+delta, len(c.filtered))
	if c.filtered[i].ID == c.state.SelectedIndicatorID {
		return false
	}
	return c.SelectIndicator(c.filtered[i].ID)
}

// SelectDataset selects a dataset of the selected indicator.
func (c *Controller) SelectDataset(id string) bool {
	if c.SelectedIndicator().DatasetByID(id) == nil {
		debug.Log("select dataset %q: not under %q", id, c.state.SelectedIndicatorID)
		return false
	}
	c.state.SelectedDatasetID = id
	c.commit()
	return true
}

// ClearDataset drops the dataset selection.
func (c *Controller) ClearDataset() {
	if c.state.SelectedDatasetID == "" {
		return
	}
	c.state.SelectedDatasetID = ""
	c.commit()
}

// ToggleTag adds or removes a tag from the active set.
func (c *Controller) ToggleTag(id string) {
	if id == "" {
		return
	}
	if c.state.ActiveTagIDs[id] {
		delete(c.state.ActiveTagIDs, id)
	} else {
		c.state.ActiveTagIDs[id] = true
	}
	c.filterChanged()
}

// ClearTags empties the active tag set.
func (c *Controller) ClearTags() {
	c.state.ActiveTagIDs = map[string]bool{}
	c.filterChanged()
}

// SetSearchQuery replaces the free-text query.
func (c *Controller) SetSearchQuery(q string) {
	c.state.SearchQuery = q
	c.filterChanged()
}

// SetCategory sets the category filter; "" clears it.
func (c *Controller) SetCategory(category string) {
	c.state.SelectedCategory = category
	c.filterChanged()
}

// CycleCategory steps through no category, then each catalog category in
// order, then back to none.
func (c *Controller) CycleCategory() {
	cats := c.cat.Categories()
	next := ""
	if c.state.SelectedCategory == "" {
		if len(cats) > 0 {
			next = cats[0]
		}
	} else {
		for i, cat := range cats {
			if cat == c.state.SelectedCategory && i+1 < len(cats) {
				next = cats[i+1]
			}
		}
	}
	c.SetCategory(next)
}

// SetMatchMode sets how active tags combine.
func (c *Controller) SetMatchMode(m filter.MatchMode) {
	c.state.Mode = m
	c.filterChanged()
}

// ApplyHash replaces tags, mode and selection from a hash fragment. Search
// and category are kept. The indicator falls back to the first visible one,
// then to the first in the catalog; a dataset that is not under the chosen
// indicator is dropped. No-op on an empty catalog.
func (c *Controller) ApplyHash(hash string) {
	if c.cat.Len() == 0 {
		return
	}
	defer metrics.Timer(metrics.HashApply)()

	p := ParseHash(hash)
	c.state.Mode = p.Mode
	c.state.ActiveTagIDs = make(map[string]bool, len(p.Tags))
	for _, id := range p.Tags {
		c.state.ActiveTagIDs[id] = true
	}
	c.recompute()

	var ind *model.Indicator
	switch {
	case p.Indicator != "" && filter.Contains(c.filtered, p.Indicator):
		ind = c.cat.IndicatorByID(p.Indicator)
	case len(c.filtered) > 0:
		ind = c.cat.IndicatorByID(c.filtered[0].ID)
	default:
		ind = &c.cat.Indicators[0]
	}
	debug.LogIf(p.Indicator != "" && ind.ID != p.Indicator, "hash: indicator %q not visible, using %q", p.Indicator, ind.ID)

	c.state.SelectedIndicatorID = ind.ID
	c.state.SelectedDatasetID = ""
	if p.Dataset != "" {
		if ind.DatasetByID(p.Dataset) != nil {
			c.state.SelectedDatasetID = p.Dataset
		} else {
			debug.Log("hash: dataset %q not under %q, dropped", p.Dataset, ind.ID)
		}
	}
	c.commit()
}

// Params returns the hash-relevant part of the state.
func (c *Controller) Params() Params {
	return Params{
		Indicator: c.state.SelectedIndicatorID,
		Dataset:   c.state.SelectedDatasetID,
		Tags:      c.state.ActiveTags(),
		Mode:      c.state.Mode,
	}
}

// EncodeHash serializes the current state; defaults are omitted.
func (c *Controller) EncodeHash() string {
	return c.Params().Encode()
}

// DeepLink joins base (any fragment stripped) with the current hash.
func (c *Controller) DeepLink(base string) string {
	return JoinLink(base, c.EncodeHash())
}

// JoinLink replaces the fragment of base with hash.
func JoinLink(base, hash string) string {
	if u, err := url.Parse(base); err == nil {
		u.Fragment = ""
		u.RawFragment = ""
		base = u.String()
	} else if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	if hash == "" {
		return base
	}
	return base + "#" + hash
}

// Reload swaps in a new catalog and keeps the selection where it still
// exists.
func (c *Controller) Reload(cat *model.Catalog) {
	c.cat = cat
	c.recompute()
	if c.SelectedDataset() == nil {
		c.state.SelectedDatasetID = ""
	}
	c.reconcile()
	c.commit()
}

func (c *Controller) filterChanged() {
	c.recompute()
	c.reconcile()
	c.commit()
}

func (c *Controller) recompute() {
	c.filtered = filter.Indicators(c.cat, c.state.Criteria())
}

// reconcile enforces the selection rule: the selected indicator must be
// visible, else the first visible one is selected, else nothing is.
func (c *Controller) reconcile() {
	if filter.Contains(c.filtered, c.state.SelectedIndicatorID) {
		return
	}
	c.state.SelectedDatasetID = ""
	if len(c.filtered) == 0 {
		c.state.SelectedIndicatorID = ""
		return
	}
	c.state.SelectedIndicatorID = c.filtered[0].ID
}

func (c *Controller) commit() {
	c.hash = c.EncodeHash()
	if c.onHash != nil {
		c.onHash(c.hash)
	}
}

func indexOf(list []model.Indicator, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
