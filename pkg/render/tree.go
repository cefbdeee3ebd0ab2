// Package render projects a catalog and its view-state onto a display tree.
//
// Build is pure: it never mutates the catalog or the state, and the same
// input always produces the same tree. The TUI draws the tree with lipgloss;
// HTML writes it through html/template.
package render

import (
	"fmt"

	"github.com/vanderheijden86/catalogview/pkg/filter"
	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/viewstate"
)

// EmptyState names what the detail area shows instead of content.
type EmptyState int

const (
	EmptyNone EmptyState = iota
	EmptyLoading
	EmptyLoadFailed
	EmptyNoMatches
	EmptyNoDataset
)

// Message is the primary empty-state text.
func (e EmptyState) Message() string {
	switch e {
	case EmptyLoading:
		return "Loading catalog…"
	case EmptyLoadFailed:
		return "Failed to load catalog."
	case EmptyNoMatches:
		return "No indicators found."
	case EmptyNoDataset:
		return "Select a dataset to see details"
	}
	return ""
}

// Hint is the secondary line shown in the detail panel, if any.
func (e EmptyState) Hint() string {
	if e == EmptyNoMatches {
		return "Adjust filters or search to see details"
	}
	return ""
}

// NoIndicatorTitle is the header title when nothing is selected.
const NoIndicatorTitle = "No indicator selected"

// Input is everything Build needs.
type Input struct {
	Catalog  *model.Catalog
	Filtered []model.Indicator
	State    viewstate.State
	Loaded   bool
	LoadErr  error
}

// IndicatorRow is one entry of the indicator list.
type IndicatorRow struct {
	ID           string
	Name         string
	Category     string
	Accent       string
	DatasetCount int
	Selected     bool
	Label        string // accessible text
}

// TagChip is a tag of the selected indicator.
type TagChip struct {
	ID       string
	Label    string
	Area     string
	Active   bool
	Resolved bool
}

// Header describes the selected indicator.
type Header struct {
	ID         string
	Title      string
	Category   string
	Accent     string
	Meta       string
	Paragraphs []string
	Chips      []TagChip
}

// DatasetRow is one entry of the dataset list.
type DatasetRow struct {
	ID       string
	Name     string
	Selected bool
	Label    string
}

// DatasetDetail is the detail panel for the selected dataset.
type DatasetDetail struct {
	ID          string
	Name        string
	License     string
	Description []string
	Source      []string
	Citation    []string
	Link        string
}

// TagOption is a row of the tag picker.
type TagOption struct {
	ID      string
	Label   string
	Area    string
	Checked bool
}

// Tree is the full projection.
type Tree struct {
	Empty      EmptyState
	Error      string
	Stats      filter.Stats
	Indicators []IndicatorRow
	Header     *Header
	Datasets   []DatasetRow
	Detail     *DatasetDetail
	TagOptions []TagOption
	Mode       filter.MatchMode
	Category   string
	Query      string
}

// Build projects in onto a Tree. Every display string of the result is
// passed through Plain; ID fields keep the raw catalog value for lookups.
func Build(in Input) Tree {
	defer metrics.Timer(metrics.Projection)()
	tree := project(in)
	tree.plain()
	return tree
}

func project(in Input) Tree {
	tree := Tree{
		Mode:     in.State.Mode,
		Category: in.State.SelectedCategory,
		Query:    in.State.SearchQuery,
	}
	switch {
	case in.LoadErr != nil:
		tree.Empty = EmptyLoadFailed
		tree.Error = in.LoadErr.Error()
		return tree
	case !in.Loaded:
		tree.Empty = EmptyLoading
		return tree
	}

	tree.Stats = filter.Summarize(in.Filtered)
	tree.TagOptions = tagOptions(in.Catalog, in.State.ActiveTagIDs)

	if len(in.Filtered) == 0 {
		tree.Empty = EmptyNoMatches
		return tree
	}

	tree.Indicators = make([]IndicatorRow, 0, len(in.Filtered))
	for _, ind := range in.Filtered {
		tree.Indicators = append(tree.Indicators, IndicatorRow{
			ID:           ind.ID,
			Name:         ind.Name,
			Category:     ind.Category,
			Accent:       CategoryColor(ind.Category),
			DatasetCount: len(ind.Datasets),
			Selected:     ind.ID == in.State.SelectedIndicatorID,
			Label:        fmt.Sprintf("%s (%d datasets)", ind.Name, len(ind.Datasets)),
		})
	}

	ind := in.Catalog.IndicatorByID(in.State.SelectedIndicatorID)
	if ind == nil {
		tree.Empty = EmptyNoDataset
		return tree
	}
	tree.Header = header(in.Catalog, ind, in.State.ActiveTagIDs)

	tree.Datasets = make([]DatasetRow, 0, len(ind.Datasets))
	for _, ds := range ind.Datasets {
		tree.Datasets = append(tree.Datasets, DatasetRow{
			ID:       ds.ID,
			Name:     ds.Name,
			Selected: ds.ID == in.State.SelectedDatasetID,
			Label:    ds.Name + " details",
		})
	}

	if ds := ind.DatasetByID(in.State.SelectedDatasetID); ds != nil {
		tree.Detail = detail(ds)
	} else {
		tree.Empty = EmptyNoDataset
	}
	return tree
}

func (t *Tree) plain() {
	t.Error = Plain(t.Error)
	t.Category = Plain(t.Category)
	t.Query = Plain(t.Query)
	for i := range t.Indicators {
		r := &t.Indicators[i]
		r.Name, r.Category, r.Label = Plain(r.Name), Plain(r.Category), Plain(r.Label)
	}
	if h := t.Header; h != nil {
		h.Title, h.Category, h.Meta = Plain(h.Title), Plain(h.Category), Plain(h.Meta)
		plainAll(h.Paragraphs)
		for i := range h.Chips {
			c := &h.Chips[i]
			c.Label, c.Area = Plain(c.Label), Plain(c.Area)
		}
	}
	for i := range t.Datasets {
		r := &t.Datasets[i]
		r.Name, r.Label = Plain(r.Name), Plain(r.Label)
	}
	if d := t.Detail; d != nil {
		d.Name, d.License, d.Link = Plain(d.Name), Plain(d.License), Plain(d.Link)
		plainAll(d.Description)
		plainAll(d.Source)
		plainAll(d.Citation)
	}
	for i := range t.TagOptions {
		o := &t.TagOptions[i]
		o.Label, o.Area = Plain(o.Label), Plain(o.Area)
	}
}

func header(cat *model.Catalog, ind *model.Indicator, active map[string]bool) *Header {
	h := &Header{
		ID:         ind.ID,
		Title:      ind.Name,
		Category:   ind.Category,
		Accent:     CategoryColor(ind.Category),
		Paragraphs: Paragraphs(ind.Description),
	}
	if ind.ID != "" {
		h.Meta = "ID: " + ind.ID
	}
	ids := append([]string(nil), ind.TagIDs...)
	filter.SortTagIDs(ids)
	for _, id := range ids {
		chip := TagChip{ID: id, Label: id, Active: active[id]}
		if tag := cat.TagByID(id); tag != nil {
			chip.Label = TagLabel(tag)
			chip.Area = tag.Area
			chip.Resolved = true
		}
		h.Chips = append(h.Chips, chip)
	}
	return h
}

func detail(ds *model.Dataset) *DatasetDetail {
	return &DatasetDetail{
		ID:          ds.ID,
		Name:        ds.Name,
		License:     ds.License,
		Description: Paragraphs(ds.Description),
		Source:      Paragraphs(ds.Source),
		Citation:    Paragraphs(ds.Citation),
		Link:        PickDatasetURL(ds),
	}
}

func tagOptions(cat *model.Catalog, active map[string]bool) []TagOption {
	if cat == nil {
		return nil
	}
	sorted := filter.SortedTags(cat.Tags)
	out := make([]TagOption, 0, len(sorted))
	for i := range sorted {
		out = append(out, TagOption{
			ID:      sorted[i].ID,
			Label:   TagLabel(&sorted[i]),
			Area:    sorted[i].Area,
			Checked: active[sorted[i].ID],
		})
	}
	return out
}

// TagLabel is "<id>: <description> (<area>)" with whitespace collapsed; the
// impact text stands in for a missing description and the area suffix is
// dropped when empty.
func TagLabel(t *model.Tag) string {
	desc := t.Description
	if desc == "" {
		desc = t.Impact
	}
	label := t.ID + ": " + CollapseWhitespace(desc)
	if t.Area != "" {
		label += " (" + t.Area + ")"
	}
	return label
}
