package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/model"
	"pgregory.net/rapid"
)

func twoIndicatorCatalog() *model.Catalog {
	return model.NewCatalog([]model.Indicator{
		{ID: "A", Name: "Alpha", Category: "Exposure", TagIDs: []string{"t1"}},
		{ID: "B", Name: "Beta", Category: "Sensitivity", TagIDs: []string{}},
	}, []model.Tag{{ID: "t1", Description: "tag one"}}, time.Time{})
}

func ids(list []model.Indicator) []string {
	out := make([]string, len(list))
	for i, ind := range list {
		out[i] = ind.ID
	}
	return out
}

func sameIDs(t *testing.T, got []model.Indicator, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func TestNoFiltersKeepsCatalogOrder(t *testing.T) {
	sameIDs(t, Indicators(twoIndicatorCatalog(), Criteria{}), "A", "B")
}

func TestCategoryFilter(t *testing.T) {
	got := Indicators(twoIndicatorCatalog(), Criteria{Category: "Sensitivity"})
	sameIDs(t, got, "B")
}

func TestTagFilterExcludesUntagged(t *testing.T) {
	cat := twoIndicatorCatalog()
	for _, mode := range []MatchMode{MatchAny, MatchAll} {
		t.Run(mode.String(), func(t *testing.T) {
			got := Indicators(cat, Criteria{TagIDs: map[string]bool{"t1": true}, Mode: mode})
			sameIDs(t, got, "A")
		})
	}
}

func TestTagModes(t *testing.T) {
	cat := model.NewCatalog([]model.Indicator{
		{ID: "1", TagIDs: []string{"a"}},
		{ID: "2", TagIDs: []string{"a", "b"}},
		{ID: "3", TagIDs: []string{"b"}},
	}, nil, time.Time{})
	active := map[string]bool{"a": true, "b": true}

	sameIDs(t, Indicators(cat, Criteria{TagIDs: active, Mode: MatchAny}), "1", "2", "3")
	sameIDs(t, Indicators(cat, Criteria{TagIDs: active, Mode: MatchAll}), "2")
}

func TestTextFilter(t *testing.T) {
	cat := model.NewCatalog([]model.Indicator{
		{ID: "1", Name: "Heat stress days"},
		{ID: "2", Name: "Flood", Description: "River HEAT anomalies"},
		{ID: "3", Name: "Drought"},
	}, nil, time.Time{})

	sameIDs(t, Indicators(cat, Criteria{Query: "  heat "}), "1", "2")
	sameIDs(t, Indicators(cat, Criteria{Query: "   "}), "1", "2", "3")
	sameIDs(t, Indicators(cat, Criteria{Query: "snow"}))
}

func TestEmptyCatalog(t *testing.T) {
	got := Indicators(nil, Criteria{Query: "x"})
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
	got = Indicators(model.NewCatalog(nil, nil, time.Time{}), Criteria{})
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}

func TestCriteriaActive(t *testing.T) {
	if (Criteria{Query: "  "}).Active() {
		t.Error("whitespace query should not count as active")
	}
	if !(Criteria{TagIDs: map[string]bool{"x": true}}).Active() {
		t.Error("tag filter should be active")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Indicator{
		{ID: "1", Datasets: []model.Dataset{{ID: "d1"}, {ID: "d2"}}},
		{ID: "2"},
	})
	if s.Indicators != 2 || s.Datasets != 2 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func genCatalog(t *rapid.T) *model.Catalog {
	categories := []string{"", "Exposure", "Sensitivity", "Adaptive Capacity"}
	tagPool := []string{"t1", "t2", "t3", "t4"}
	words := []string{"heat", "flood", "crop", "river", "health"}

	n := rapid.IntRange(0, 25).Draw(t, "n")
	inds := make([]model.Indicator, n)
	for i := range inds {
		inds[i] = model.Indicator{
			ID:          fmt.Sprintf("I%03d", i),
			Name:        rapid.SampledFrom(words).Draw(t, "name"),
			Description: rapid.SampledFrom(words).Draw(t, "desc"),
			Category:    rapid.SampledFrom(categories).Draw(t, "cat"),
			TagIDs:      rapid.SliceOfNDistinct(rapid.SampledFrom(tagPool), 0, 3, rapid.ID[string]).Draw(t, "tags"),
		}
	}
	return model.NewCatalog(inds, nil, time.Time{})
}

func genCriteria(t *rapid.T) Criteria {
	active := map[string]bool{}
	for _, id := range rapid.SliceOfN(rapid.SampledFrom([]string{"t1", "t2", "t3", "t5"}), 0, 3).Draw(t, "active") {
		active[id] = true
	}
	return Criteria{
		Category: rapid.SampledFrom([]string{"", "Exposure", "Sensitivity", "Missing"}).Draw(t, "category"),
		TagIDs:   active,
		Mode:     rapid.SampledFrom([]MatchMode{MatchAny, MatchAll}).Draw(t, "mode"),
		Query:    rapid.SampledFrom([]string{"", "HEAT", " crop", "zzz"}).Draw(t, "query"),
	}
}

func TestPropertyFilterIsOrderedSubsequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cat := genCatalog(t)
		got := Indicators(cat, genCriteria(t))

		j := 0
		for _, ind := range got {
			for j < len(cat.Indicators) && cat.Indicators[j].ID != ind.ID {
				j++
			}
			if j == len(cat.Indicators) {
				t.Fatalf("result %v is not an ordered subsequence of the catalog", ids(got))
			}
			j++
		}
	})
}

func TestPropertyFilterIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cat := genCatalog(t)
		c := genCriteria(t)
		a, b := ids(Indicators(cat, c)), ids(Indicators(cat, c))
		if fmt.Sprint(a) != fmt.Sprint(b) {
			t.Fatalf("two passes differ: %v vs %v", a, b)
		}
	})
}

func TestPropertyEveryResultMatches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cat := genCatalog(t)
		c := genCriteria(t)
		got := Indicators(cat, c)
		for i := range cat.Indicators {
			ind := &cat.Indicators[i]
			want := Matches(ind, c.Category, c.TagIDs, c.Mode, normalizeQuery(c.Query))
			if Contains(got, ind.ID) != want {
				t.Fatalf("indicator %s: in result=%v, matches=%v", ind.ID, !want, want)
			}
		}
	})
}
