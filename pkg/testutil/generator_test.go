package testutil

import (
	"testing"

	"github.com/vanderheijden86/catalogview/pkg/model"
)

func TestCatalogShape(t *testing.T) {
	cat := NewDefault().Catalog(50)

	AssertIndicatorCount(t, cat.Indicators, 50)
	AssertNoDuplicateIDs(t, cat)
	AssertTagsResolve(t, cat)

	if len(cat.Tags) != 12 {
		t.Errorf("expected 12 tags, got %d", len(cat.Tags))
	}
	if cat.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
	for c := range CountByCategory(cat.Indicators) {
		switch c {
		case "Exposure", "Sensitivity", "Adaptive Capacity":
		default:
			t.Errorf("unexpected category %q", c)
		}
	}
	if cat.Indicators[0].ID != "IND-0001" || cat.Indicators[49].ID != "IND-0050" {
		t.Errorf("ids not sequential: %s..%s", cat.Indicators[0].ID, cat.Indicators[49].ID)
	}
}

func TestTagBackReferences(t *testing.T) {
	cat := NewDefault().Catalog(40)
	for _, tag := range cat.Tags {
		if tag.IndicatorCount != len(tag.IndicatorIDs) {
			t.Errorf("%s: count %d, ids %d", tag.ID, tag.IndicatorCount, len(tag.IndicatorIDs))
		}
		for _, id := range tag.IndicatorIDs {
			ind := cat.IndicatorByID(id)
			if ind == nil || !ind.HasTag(tag.ID) {
				t.Errorf("%s lists %s, which does not carry it", tag.ID, id)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := ToJSON(New(DefaultConfig()).Catalog(30))
	b := ToJSON(New(DefaultConfig()).Catalog(30))
	if a != b {
		t.Error("same seed should produce the same catalog")
	}

	cfg := DefaultConfig()
	cfg.Seed = 7
	if ToJSON(New(cfg).Catalog(30)) == a {
		t.Error("different seeds should differ")
	}
}

func TestConfigKnobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTags = -1
	cfg.IncludeLinks = false
	cfg.Categories = []string{"Only"}
	cfg.IDPrefix = "X"
	cat := New(cfg).Catalog(20)

	for _, ind := range cat.Indicators {
		if len(ind.TagIDs) != 0 {
			t.Errorf("%s has tags with MaxTags < 0", ind.ID)
		}
		if ind.Category != "Only" {
			t.Errorf("%s category %q", ind.ID, ind.Category)
		}
		for _, ds := range ind.Datasets {
			if ds.URL != "" || ds.Citation != "" {
				t.Errorf("%s/%s has links with IncludeLinks off", ind.ID, ds.ID)
			}
		}
	}
	if FindIndicator(cat.Indicators, "X-0001") == nil {
		t.Error("IDPrefix not applied")
	}
}

func TestToJSONDecodes(t *testing.T) {
	orig := NewDefault().Catalog(25)
	back, err := model.Decode([]byte(ToJSON(orig)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	AssertIDs(t, back.Indicators, IndicatorIDs(orig.Indicators)...)
	if back.DatasetCount() != orig.DatasetCount() || len(back.Tags) != len(orig.Tags) {
		t.Errorf("decoded catalog differs: %d/%d datasets, %d/%d tags",
			back.DatasetCount(), orig.DatasetCount(), len(back.Tags), len(orig.Tags))
	}
}

func TestQuickFunctions(t *testing.T) {
	if QuickCatalog(10).Len() != 10 {
		t.Error("QuickCatalog size")
	}
	if Empty().Len() != 0 || len(Empty().Tags) != 0 {
		t.Error("Empty should be empty")
	}
	s := Single()
	AssertTagsResolve(t, s)
	if s.Len() != 1 || s.DatasetCount() != 1 {
		t.Errorf("Single = %d indicators, %d datasets", s.Len(), s.DatasetCount())
	}
	if got := SortedIndicatorIDs(New(DefaultConfig()).Catalog(3)); len(got) != 3 || got[0] != "IND-0001" {
		t.Errorf("SortedIndicatorIDs = %v", got)
	}
}

func TestWriteCatalogFile(t *testing.T) {
	path := WriteCatalogFile(t, t.TempDir(), Single())
	if path == "" {
		t.Fatal("empty path")
	}
}

func BenchmarkCatalog1000(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewDefault().Catalog(1000)
	}
}

func BenchmarkToJSON1000(b *testing.B) {
	cat := NewDefault().Catalog(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ToJSON(cat)
	}
}
