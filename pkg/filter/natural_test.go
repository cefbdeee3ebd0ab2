package filter

import (
	"testing"

	"github.com/vanderheijden86/catalogview/pkg/model"
	"pgregory.net/rapid"
)

func TestCompareNatural(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"CIC2", "CIC10", -1},
		{"CIC10", "CIC2", 1},
		{"CIC02", "CIC2", -1}, // equal by value, raw tie-break
		{"cic1", "CIC1", 1},
		{"a", "b", -1},
		{"a1b2", "a1b10", -1},
		{"x", "x1", -1},
		{"", "", 0},
		{"CIC5", "CIC5", 0},
	}
	for _, tt := range tests {
		if got := CompareNatural(tt.a, tt.b); sign(got) != tt.want {
			t.Errorf("CompareNatural(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestSortTagIDs(t *testing.T) {
	got := []string{"CIC10", "CIC1", "CIC2", "CIC03"}
	SortTagIDs(got)
	want := []string{"CIC1", "CIC2", "CIC03", "CIC10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSortedTagsCopies(t *testing.T) {
	in := []model.Tag{{ID: "t10"}, {ID: "t9"}}
	out := SortedTags(in)
	if out[0].ID != "t9" || in[0].ID != "t10" {
		t.Errorf("expected sorted copy, got out=%v in=%v", out, in)
	}
}

func TestPropertyCompareNaturalAntisymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.StringMatching(`[A-Za-z]{0,3}[0-9]{0,3}[a-z]{0,2}`).Draw(t, "a")
		b := rapid.StringMatching(`[A-Za-z]{0,3}[0-9]{0,3}[a-z]{0,2}`).Draw(t, "b")
		if sign(CompareNatural(a, b)) != -sign(CompareNatural(b, a)) {
			t.Fatalf("not antisymmetric for %q, %q", a, b)
		}
		if (CompareNatural(a, b) == 0) != (a == b) {
			t.Fatalf("zero result must mean equal strings: %q, %q", a, b)
		}
	})
}
