// Package model defines the catalog data types shared by every cv package:
// indicators, their datasets, and the impact-chain tags (CICs) they carry.
package model

import "time"

// Dataset is a concrete data source listed under an indicator.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Citation    string `json:"citation,omitempty"`
	License     string `json:"license,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Indicator is a named topical entry grouping one or more datasets.
type Indicator struct {
	ID          string
	Name        string
	Category    string
	Source      string
	Description string
	TagIDs      []string
	Datasets    []Dataset
}

// DatasetByID returns the dataset with the given id, or nil.
func (ind *Indicator) DatasetByID(id string) *Dataset {
	if ind == nil || id == "" {
		return nil
	}
	for i := range ind.Datasets {
		if ind.Datasets[i].ID == id {
			return &ind.Datasets[i]
		}
	}
	return nil
}

// HasTag reports whether the indicator carries the tag id.
func (ind *Indicator) HasTag(id string) bool {
	if ind == nil {
		return false
	}
	for _, t := range ind.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Tag is an impact-chain classification label (a "CIC").
type Tag struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Area           string   `json:"area,omitempty"`
	Impact         string   `json:"impact,omitempty"`
	IndicatorIDs   []string `json:"indicator_ids,omitempty"`
	IndicatorCount int      `json:"indicator_count,omitempty"`
}

// Catalog is the loaded, read-only catalog. Build it with NewCatalog so the
// lookup indexes are populated.
type Catalog struct {
	GeneratedAt time.Time
	Indicators  []Indicator
	Tags        []Tag

	indicatorIdx map[string]int
	tagIdx       map[string]int
}

// NewCatalog builds a catalog and its lookup indexes. Duplicate ids keep
// their first occurrence in the index; the slices are kept as given.
func NewCatalog(indicators []Indicator, tags []Tag, generatedAt time.Time) *Catalog {
	c := &Catalog{
		GeneratedAt:  generatedAt,
		Indicators:   indicators,
		Tags:         tags,
		indicatorIdx: make(map[string]int, len(indicators)),
		tagIdx:       make(map[string]int, len(tags)),
	}
	for i, ind := range indicators {
		if _, dup := c.indicatorIdx[ind.ID]; !dup {
			c.indicatorIdx[ind.ID] = i
		}
	}
	for i, t := range tags {
		if _, dup := c.tagIdx[t.ID]; !dup {
			c.tagIdx[t.ID] = i
		}
	}
	return c
}

// Len returns the number of indicators; nil-safe.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Indicators)
}

// IndicatorByID returns the indicator with the given id, or nil.
func (c *Catalog) IndicatorByID(id string) *Indicator {
	if c == nil {
		return nil
	}
	i, ok := c.indicatorIdx[id]
	if !ok {
		return nil
	}
	return &c.Indicators[i]
}

// TagByID returns the tag with the given id, or nil when the reference does
// not resolve.
func (c *Catalog) TagByID(id string) *Tag {
	if c == nil {
		return nil
	}
	i, ok := c.tagIdx[id]
	if !ok {
		return nil
	}
	return &c.Tags[i]
}

// Categories returns the distinct non-empty categories in order of first
// appearance.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, ind := range c.Indicators {
		if ind.Category == "" || seen[ind.Category] {
			continue
		}
		seen[ind.Category] = true
		out = append(out, ind.Category)
	}
	return out
}

// DatasetCount returns the total number of datasets across indicators.
func (c *Catalog) DatasetCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, ind := range c.Indicators {
		n += len(ind.Datasets)
	}
	return n
}
