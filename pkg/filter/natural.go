package filter

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/catalogview/pkg/model"
)

// CompareNatural orders strings so that embedded numbers compare by value:
// "CIC2" < "CIC10". Text runs compare case-insensitively, with the raw
// strings as the final tie-break so the order is total.
func CompareNatural(a, b string) int {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ac, bc := a[ai], b[bi]
		if isDigit(ac) && isDigit(bc) {
			as, ae := digitRun(a, ai)
			bs, be := digitRun(b, bi)
			if c := compareDigits(a[as:ae], b[bs:be]); c != 0 {
				return c
			}
			ai, bi = ae, be
			continue
		}
		la, lb := lower(ac), lower(bc)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		ai++
		bi++
	}
	switch {
	case len(a)-ai < len(b)-bi:
		return -1
	case len(a)-ai > len(b)-bi:
		return 1
	}
	return strings.Compare(a, b)
}

// digitRun returns the bounds of the digit run at i with leading zeros
// skipped in the start index.
func digitRun(s string, i int) (start, end int) {
	end = i
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	start = i
	for start < end-1 && s[start] == '0' {
		start++
	}
	return start, end
}

func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// SortTagIDs sorts ids in natural order, in place.
func SortTagIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareNatural(ids[i], ids[j]) < 0
	})
}

// SortedTags returns a copy of the tags in natural id order. Used for chip
// and picker display only; indicator order is never touched.
func SortedTags(tags []model.Tag) []model.Tag {
	out := make([]model.Tag, len(tags))
	copy(out, tags)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareNatural(out[i].ID, out[j].ID) < 0
	})
	return out
}
