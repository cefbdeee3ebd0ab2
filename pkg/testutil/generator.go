// Package testutil provides deterministic catalog fixtures for tests and
// benchmarks. The same config always yields the same catalog.
package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/model"
)

// Categories used when GeneratorConfig.Categories is empty.
var DefaultCategories = []string{"Exposure", "Sensitivity", "Adaptive Capacity"}

var (
	areas    = []string{"Health", "Water", "Agriculture", "Energy", "Infrastructure", "Biodiversity"}
	hazards  = []string{"heat", "drought", "flood", "storm", "wildfire", "frost", "sea level"}
	subjects = []string{"days", "yield", "exposure", "cover", "losses", "demand", "depth", "index"}
	licenses = []string{"CC-BY-4.0", "CC0", "ODbL", "Proprietary", ""}
	sources  = []string{"Copernicus", "FAO", "World Bank", "Eurostat", "NOAA", "national agency"}
)

// GeneratorConfig controls catalog generation.
type GeneratorConfig struct {
	Seed         int64     // random seed (0 = current time)
	IDPrefix     string    // indicator id prefix (default "IND")
	TagPrefix    string    // tag id prefix (default "CIC")
	BaseTime     time.Time // GeneratedAt (default: fixed time)
	Categories   []string  // category pool (nil = DefaultCategories)
	TagCount     int       // size of the tag vocabulary (default 12)
	MaxTags      int       // tags per indicator, 0..MaxTags (default 3, negative for none)
	MaxDatasets  int       // datasets per indicator, 0..MaxDatasets (default 4)
	IncludeLinks bool      // give datasets URLs and citations
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42,
		IDPrefix:     "IND",
		TagPrefix:    "CIC",
		BaseTime:     time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Categories:   DefaultCategories,
		TagCount:     12,
		MaxTags:      3,
		MaxDatasets:  4,
		IncludeLinks: true,
	}
}

// Generator creates catalogs.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "IND"
	}
	if cfg.TagPrefix == "" {
		cfg.TagPrefix = "CIC"
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	if cfg.TagCount <= 0 {
		cfg.TagCount = 12
	}
	if cfg.MaxTags < 0 {
		cfg.MaxTags = 0
	} else if cfg.MaxTags == 0 {
		cfg.MaxTags = 3
	}
	if cfg.MaxDatasets <= 0 {
		cfg.MaxDatasets = 4
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// TagID returns the id of the i-th generated tag (1-based numbering, no
// zero padding, so natural ordering matters).
func (g *Generator) TagID(i int) string {
	return fmt.Sprintf("%s%d", g.cfg.TagPrefix, i+1)
}

// IndicatorID returns the id of the i-th generated indicator.
func (g *Generator) IndicatorID(i int) string {
	return fmt.Sprintf("%s-%04d", g.cfg.IDPrefix, i+1)
}

// Tags generates the tag vocabulary.
func (g *Generator) Tags() []model.Tag {
	tags := make([]model.Tag, g.cfg.TagCount)
	for i := range tags {
		hazard := hazards[g.rng.Intn(len(hazards))]
		tags[i] = model.Tag{
			ID:          g.TagID(i),
			Description: fmt.Sprintf("Impact of %s on %s", hazard, strings.ToLower(areas[i%len(areas)])),
			Area:        areas[i%len(areas)],
		}
		if g.rng.Intn(4) == 0 {
			// Some tags only carry an impact text.
			tags[i].Impact = tags[i].Description
			tags[i].Description = ""
		}
	}
	return tags
}

// Catalog generates n indicators over a fresh tag vocabulary. Tag back
// references (IndicatorIDs, IndicatorCount) are filled in.
func (g *Generator) Catalog(n int) *model.Catalog {
	tags := g.Tags()
	inds := make([]model.Indicator, n)
	for i := range inds {
		inds[i] = g.indicator(i)
	}

	pos := make(map[string]int, len(tags))
	for i, t := range tags {
		pos[t.ID] = i
	}
	for _, ind := range inds {
		for _, id := range ind.TagIDs {
			t := &tags[pos[id]]
			t.IndicatorIDs = append(t.IndicatorIDs, ind.ID)
			t.IndicatorCount++
		}
	}
	return model.NewCatalog(inds, tags, g.cfg.BaseTime)
}

func (g *Generator) indicator(i int) model.Indicator {
	hazard := hazards[g.rng.Intn(len(hazards))]
	subject := subjects[g.rng.Intn(len(subjects))]
	ind := model.Indicator{
		ID:          g.IndicatorID(i),
		Name:        fmt.Sprintf("%s %s %d", capitalize(hazard), subject, i+1),
		Category:    g.cfg.Categories[g.rng.Intn(len(g.cfg.Categories))],
		Source:      sources[g.rng.Intn(len(sources))],
		Description: fmt.Sprintf("Annual %s %s.\n\nDerived from %s observations.", hazard, subject, sources[g.rng.Intn(len(sources))]),
		TagIDs:      g.pickTags(),
	}
	count := g.rng.Intn(g.cfg.MaxDatasets + 1)
	for d := 0; d < count; d++ {
		ind.Datasets = append(ind.Datasets, g.dataset(i, d, hazard))
	}
	return ind
}

func (g *Generator) dataset(i, d int, hazard string) model.Dataset {
	src := sources[g.rng.Intn(len(sources))]
	ds := model.Dataset{
		ID:          fmt.Sprintf("DS-%04d-%d", i+1, d+1),
		Name:        fmt.Sprintf("%s %s series %d", src, hazard, d+1),
		Description: fmt.Sprintf("Gridded %s data.", hazard),
		Source:      src,
		License:     licenses[g.rng.Intn(len(licenses))],
	}
	if g.cfg.IncludeLinks {
		host := strings.ReplaceAll(strings.ToLower(src), " ", "-")
		switch g.rng.Intn(3) {
		case 0:
			ds.URL = fmt.Sprintf("https://%s.example.org/data/%d/%d", host, i+1, d+1)
		case 1:
			ds.Source = fmt.Sprintf("%s (https://%s.example.org/)", src, host)
		default:
			ds.Citation = fmt.Sprintf("%s %d, https://doi.org/10.5555/%d.%d", src, 2000+g.rng.Intn(25), i+1, d+1)
		}
	}
	return ds
}

// pickTags returns up to MaxTags distinct tag ids in random order.
func (g *Generator) pickTags() []string {
	k := g.rng.Intn(min(g.cfg.MaxTags, g.cfg.TagCount) + 1)
	if k == 0 {
		return nil
	}
	perm := g.rng.Perm(g.cfg.TagCount)[:k]
	ids := make([]string, k)
	for i, p := range perm {
		ids[i] = g.TagID(p)
	}
	return ids
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ToJSON encodes a catalog in the current object shape.
func ToJSON(cat *model.Catalog) string {
	data, err := model.Encode(cat)
	if err != nil {
		panic(fmt.Sprintf("testutil: encode catalog: %v", err))
	}
	return string(data)
}

// QuickCatalog returns a default catalog of n indicators.
func QuickCatalog(n int) *model.Catalog {
	return NewDefault().Catalog(n)
}

// Empty returns a catalog with no indicators and no tags.
func Empty() *model.Catalog {
	return model.NewCatalog(nil, nil, time.Time{})
}

// Single returns a catalog with one tagged indicator and one dataset.
func Single() *model.Catalog {
	return model.NewCatalog([]model.Indicator{{
		ID:       "IND-0001",
		Name:     "Heat days",
		Category: "Exposure",
		TagIDs:   []string{"CIC1"},
		Datasets: []model.Dataset{{ID: "DS-0001-1", Name: "Station records", URL: "https://example.org/stations"}},
	}}, []model.Tag{{ID: "CIC1", Description: "Heat stress", Area: "Health", IndicatorIDs: []string{"IND-0001"}, IndicatorCount: 1}},
		time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
}

// SortedIndicatorIDs returns the indicator ids of cat in sorted order.
func SortedIndicatorIDs(cat *model.Catalog) []string {
	ids := IndicatorIDs(cat.Indicators)
	sort.Strings(ids)
	return ids
}
