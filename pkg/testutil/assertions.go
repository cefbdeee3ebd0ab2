package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/catalogview/pkg/model"
)

// AssertIndicatorCount checks the number of indicators.
func AssertIndicatorCount(t *testing.T, inds []model.Indicator, expected int) {
	t.Helper()
	if len(inds) != expected {
		t.Errorf("expected %d indicators, got %d", expected, len(inds))
	}
}

// AssertNoDuplicateIDs checks indicator ids, and dataset ids within each
// indicator, are unique.
func AssertNoDuplicateIDs(t *testing.T, cat *model.Catalog) {
	t.Helper()
	seen := make(map[string]bool, cat.Len())
	for _, ind := range cat.Indicators {
		if seen[ind.ID] {
			t.Errorf("duplicate indicator id: %s", ind.ID)
		}
		seen[ind.ID] = true

		ds := make(map[string]bool, len(ind.Datasets))
		for _, d := range ind.Datasets {
			if ds[d.ID] {
				t.Errorf("duplicate dataset id %s under %s", d.ID, ind.ID)
			}
			ds[d.ID] = true
		}
	}
}

// AssertTagsResolve checks that every tag an indicator carries exists in
// the catalog vocabulary.
func AssertTagsResolve(t *testing.T, cat *model.Catalog) {
	t.Helper()
	for _, ind := range cat.Indicators {
		for _, id := range ind.TagIDs {
			if cat.TagByID(id) == nil {
				t.Errorf("indicator %s carries unknown tag %s", ind.ID, id)
			}
		}
	}
}

// AssertIDs checks the ids of inds, in order.
func AssertIDs(t *testing.T, inds []model.Indicator, expected ...string) {
	t.Helper()
	got := strings.Join(IndicatorIDs(inds), ",")
	if want := strings.Join(expected, ","); got != want {
		t.Errorf("expected ids [%s], got [%s]", want, got)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteCatalogFile writes cat as catalog.json under dir and returns the path.
func WriteCatalogFile(t *testing.T, dir string, cat *model.Catalog) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.json")
	WriteFile(t, path, ToJSON(cat))
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// IndicatorIDs returns the ids of inds in order.
func IndicatorIDs(inds []model.Indicator) []string {
	ids := make([]string, len(inds))
	for i, ind := range inds {
		ids[i] = ind.ID
	}
	return ids
}

// FindIndicator returns the indicator with id, or nil.
func FindIndicator(inds []model.Indicator, id string) *model.Indicator {
	for i := range inds {
		if inds[i].ID == id {
			return &inds[i]
		}
	}
	return nil
}

// CountByCategory returns the number of indicators per category.
func CountByCategory(inds []model.Indicator) map[string]int {
	counts := make(map[string]int)
	for _, ind := range inds {
		counts[ind.Category]++
	}
	return counts
}
