package render

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vanderheijden86/catalogview/pkg/model"
)

var (
	httpScheme = regexp.MustCompile(`(?i)^https?://`)
	firstURL   = regexp.MustCompile(`(?i)https?://[^\s)]+`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// PickDatasetURL chooses the dataset link: an http(s) URL field, else the
// first URL found in Source, else in Citation, else "".
func PickDatasetURL(ds *model.Dataset) string {
	if ds == nil {
		return ""
	}
	if httpScheme.MatchString(ds.URL) {
		return ds.URL
	}
	if u := ExtractFirstURL(ds.Source); u != "" {
		return u
	}
	return ExtractFirstURL(ds.Citation)
}

// ExtractFirstURL returns the first http(s) URL in text, stopping at
// whitespace or ')'.
func ExtractFirstURL(text string) string {
	return firstURL.FindString(text)
}

// Paragraphs splits text on blank-line separators ("\n\n"), trims each block
// and drops empty ones.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Plain removes control characters other than newline and tab, so
// catalog text cannot carry terminal escape sequences (ESC, CSI, OSC, BEL).
// C1 controls and invalid UTF-8 are dropped too.
func Plain(s string) string {
	clean := true
	for _, r := range s {
		if isControl(r) || r == utf8.RuneError {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
}

func isControl(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r < 0x20 || r == 0x7f:
		return true
	case r >= 0x80 && r <= 0x9f:
		return true
	}
	return false
}

func plainAll(list []string) []string {
	for i := range list {
		list[i] = Plain(list[i])
	}
	return list
}

// CollapseWhitespace replaces runs of whitespace with one space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Category accent colors.
const (
	ColorExposure         = "#ffb84d"
	ColorSensitivity      = "#ff6b6b"
	ColorAdaptiveCapacity = "#4dd0a6"
	ColorDefault          = "#bcd5ff"
)

// CategoryColor maps a category to its accent color.
func CategoryColor(category string) string {
	switch category {
	case "Exposure":
		return ColorExposure
	case "Sensitivity":
		return ColorSensitivity
	case "Adaptive Capacity":
		return ColorAdaptiveCapacity
	}
	return ColorDefault
}
