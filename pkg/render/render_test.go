package render

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/viewstate"
)

func TestPickDatasetURL(t *testing.T) {
	tests := []struct {
		name string
		ds   model.Dataset
		want string
	}{
		{"non-http url falls back to source", model.Dataset{URL: "ftp://x", Source: "see http://example.org/data"}, "http://example.org/data"},
		{"explicit https wins", model.Dataset{URL: "HTTPS://a.org/x", Source: "http://b.org"}, "HTTPS://a.org/x"},
		{"stops at paren", model.Dataset{Source: "(https://a.org/p) more"}, "https://a.org/p"},
		{"citation last", model.Dataset{Source: "none", Citation: "Doe 2020, https://doi.org/10.1/x."}, "https://doi.org/10.1/x."},
		{"nothing", model.Dataset{URL: "javascript:alert(1)"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickDatasetURL(&tt.ds); got != tt.want {
				t.Errorf("PickDatasetURL = %q, want %q", got, tt.want)
			}
		})
	}
	if PickDatasetURL(nil) != "" {
		t.Error("nil dataset should have no link")
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("  first\nline  \n\n\n\nsecond\n\n  ")
	want := []string{"first\nline", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paragraphs = %q, want %q", got, want)
	}
	if Paragraphs("") != nil {
		t.Error("empty text should give no paragraphs")
	}
}

func TestCategoryColor(t *testing.T) {
	for cat, want := range map[string]string{
		"Exposure":          "#ffb84d",
		"Sensitivity":       "#ff6b6b",
		"Adaptive Capacity": "#4dd0a6",
		"":                  "#bcd5ff",
		"exposure":          "#bcd5ff",
	} {
		if got := CategoryColor(cat); got != want {
			t.Errorf("CategoryColor(%q) = %s, want %s", cat, got, want)
		}
	}
}

func TestTagLabel(t *testing.T) {
	got := TagLabel(&model.Tag{ID: "CIC01", Description: "Heat\n\t stress", Area: "Health"})
	if got != "CIC01: Heat stress (Health)" {
		t.Errorf("TagLabel = %q", got)
	}
	got = TagLabel(&model.Tag{ID: "CIC02", Impact: "Crop loss"})
	if got != "CIC02: Crop loss" {
		t.Errorf("TagLabel = %q", got)
	}
}

func fixture() *model.Catalog {
	return model.NewCatalog([]model.Indicator{
		{ID: "A", Name: "Alpha", Category: "Exposure", Description: "One.\n\nTwo.",
			TagIDs: []string{"CIC10", "CIC2", "ghost"},
			Datasets: []model.Dataset{
				{ID: "D1", Name: "Set one", URL: "ftp://x", Source: "see http://example.org/data", License: "CC-BY"},
				{ID: "D2", Name: "Set two"},
			}},
		{ID: "B", Name: "Beta", Category: "Sensitivity"},
	}, []model.Tag{
		{ID: "CIC2", Description: "Two", Area: "Water"},
		{ID: "CIC10", Description: "Ten"},
	}, time.Time{})
}

func build(c *viewstate.Controller) Tree {
	return Build(Input{Catalog: c.Catalog(), Filtered: c.Filtered(), State: c.State(), Loaded: true})
}

func TestBuildSelectedIndicator(t *testing.T) {
	c := viewstate.New(fixture())
	c.ToggleTag("CIC2")
	tree := build(c)

	if tree.Empty != EmptyNoDataset {
		t.Errorf("Empty = %v, want EmptyNoDataset", tree.Empty)
	}
	if len(tree.Indicators) != 1 || !tree.Indicators[0].Selected {
		t.Fatalf("unexpected rows %+v", tree.Indicators)
	}
	if tree.Indicators[0].Label != "Alpha (2 datasets)" || tree.Indicators[0].Accent != ColorExposure {
		t.Errorf("row = %+v", tree.Indicators[0])
	}
	if tree.Stats.Indicators != 1 || tree.Stats.Datasets != 2 {
		t.Errorf("stats = %+v", tree.Stats)
	}

	h := tree.Header
	if h == nil || h.Meta != "ID: A" || len(h.Paragraphs) != 2 {
		t.Fatalf("header = %+v", h)
	}
	var chips []string
	for _, ch := range h.Chips {
		chips = append(chips, ch.ID)
	}
	if strings.Join(chips, ",") != "CIC2,CIC10,ghost" {
		t.Errorf("chips not in natural order: %v", chips)
	}
	if !h.Chips[0].Active || h.Chips[0].Label != "CIC2: Two (Water)" {
		t.Errorf("chip 0 = %+v", h.Chips[0])
	}
	if ghost := h.Chips[2]; ghost.Resolved || ghost.Label != "ghost" {
		t.Errorf("unresolved chip should carry the raw id: %+v", ghost)
	}

	if len(tree.TagOptions) != 2 || tree.TagOptions[0].ID != "CIC2" || !tree.TagOptions[0].Checked {
		t.Errorf("tag options = %+v", tree.TagOptions)
	}
}

func TestBuildDatasetDetail(t *testing.T) {
	c := viewstate.New(fixture())
	c.SelectDataset("D1")
	tree := build(c)

	if tree.Empty != EmptyNone || tree.Detail == nil {
		t.Fatalf("expected detail, got empty=%v", tree.Empty)
	}
	if tree.Detail.Link != "http://example.org/data" {
		t.Errorf("Link = %q", tree.Detail.Link)
	}
	if !tree.Datasets[0].Selected || tree.Datasets[0].Label != "Set one details" {
		t.Errorf("dataset rows = %+v", tree.Datasets)
	}
}

func TestBuildEmptyStates(t *testing.T) {
	if got := Build(Input{}).Empty; got != EmptyLoading {
		t.Errorf("not loaded: %v", got)
	}
	tree := Build(Input{LoadErr: errors.New("boom"), Loaded: true})
	if tree.Empty != EmptyLoadFailed || tree.Error != "boom" {
		t.Errorf("load failed: %+v", tree)
	}

	c := viewstate.New(fixture(), viewstate.WithSearch("zzz"))
	tree = build(c)
	if tree.Empty != EmptyNoMatches || tree.Header != nil {
		t.Errorf("no matches: %+v", tree)
	}
	if tree.Empty.Message() != "No indicators found." || tree.Empty.Hint() != "Adjust filters or search to see details" {
		t.Errorf("messages: %q / %q", tree.Empty.Message(), tree.Empty.Hint())
	}
	if EmptyLoading.Message() == EmptyNoMatches.Message() {
		t.Error("loading and no-match states must read differently")
	}
}

func TestHTMLEscapesCatalogText(t *testing.T) {
	evil := `<script>alert(1)</script>`
	cat := model.NewCatalog([]model.Indicator{{
		ID: evil, Name: evil, Category: evil, Description: evil, TagIDs: []string{evil},
		Datasets: []model.Dataset{{ID: "d", Name: evil, Description: evil, Source: evil, Citation: evil, License: evil,
			URL: `https://x.org/"><script>`}},
	}}, []model.Tag{{ID: evil, Description: evil, Area: evil}}, time.Time{})

	c := viewstate.New(cat)
	c.SelectDataset("d")
	tree := build(c)

	var buf bytes.Buffer
	if err := HTML(&buf, tree, Page{Title: evil, Hash: c.Hash()}); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Errorf("unescaped script tag in output:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("expected escaped catalog text in output")
	}
}

func TestHTMLEmptyState(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, Build(Input{LoadErr: errors.New("status 404"), Loaded: true}), Page{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Failed to load catalog.") || !strings.Contains(buf.String(), "status 404") {
		t.Errorf("missing load failure text:\n%s", buf.String())
	}
}

func TestPlain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"keep\nlines\tand tabs", "keep\nlines\tand tabs"},
		{"Evil\x1b]0;pwned\x07 title", "Evil]0;pwned title"},
		{"x\x1b[2Jy", "x[2Jy"},
		{"c1\u009b31m", "c131m"},
		{"del\x7f", "del"},
		{"bad\xffbyte", "badbyte"},
		{"café ✓", "café ✓"},
	}
	for _, tt := range tests {
		if got := Plain(tt.in); got != tt.want {
			t.Errorf("Plain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildStripsControlSequences(t *testing.T) {
	cat := model.NewCatalog([]model.Indicator{{
		ID: "A\x1b", Name: "Evil\x1b]0;pwned\x07", Category: "Exposure\x1b[2J",
		Description: "x\x1b]52;c;ZWNobyBoaQ==\x07y", TagIDs: []string{"T\x07"},
		Datasets: []model.Dataset{{ID: "D\x1b", Name: "N\x1b[2J", Source: "S\x1b[31m", License: "L\x07", Citation: "C\u009b"}},
	}}, []model.Tag{{ID: "T\x07", Description: "tag\x1b[5m", Area: "area\x07"}}, time.Time{})

	c := viewstate.New(cat)
	c.SelectDataset("D\x1b")
	tree := build(c)
	if tree.Detail == nil || tree.Header == nil {
		t.Fatalf("expected header and detail: %+v", tree)
	}

	var texts []string
	texts = append(texts, tree.Indicators[0].Name, tree.Indicators[0].Category, tree.Indicators[0].Label,
		tree.Header.Title, tree.Header.Category, tree.Header.Meta,
		tree.Datasets[0].Name, tree.Datasets[0].Label,
		tree.Detail.Name, tree.Detail.License, tree.Detail.Link)
	texts = append(texts, tree.Header.Paragraphs...)
	texts = append(texts, tree.Detail.Source...)
	texts = append(texts, tree.Detail.Citation...)
	for _, ch := range tree.Header.Chips {
		texts = append(texts, ch.Label, ch.Area)
	}
	for _, o := range tree.TagOptions {
		texts = append(texts, o.Label, o.Area)
	}
	for _, s := range texts {
		if strings.ContainsAny(s, "\x1b\x07\u009b") {
			t.Errorf("control character survived: %q", s)
		}
	}

	if tree.Indicators[0].ID != "A\x1b" || tree.Detail.ID != "D\x1b" || tree.Header.Chips[0].ID != "T\x07" {
		t.Error("ids must keep the raw catalog value")
	}
}
