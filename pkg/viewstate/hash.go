package viewstate

import (
	"net/url"
	"strings"

	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/filter"
)

// Kind is the value type of a hash key.
type Kind int

const (
	KindString Kind = iota // single id
	KindList               // comma-joined ids
	KindMode               // "all" or anything else
)

// Field describes one recognized hash key.
type Field struct {
	Key     string
	Kind    Kind
	Default string
}

// Schema lists the hash keys in encoding order. Values equal to Default are
// omitted when encoding and assumed when absent.
var Schema = []Field{
	{Key: "indicator", Kind: KindString},
	{Key: "dataset", Kind: KindString},
	{Key: "cic", Kind: KindList},
	{Key: "mode", Kind: KindMode, Default: filter.MatchAny.String()},
}

// Params is the typed content of a hash fragment.
type Params struct {
	Indicator string
	Dataset   string
	Tags      []string
	Mode      filter.MatchMode
}

func (p Params) value(f Field) string {
	switch f.Key {
	case "indicator":
		return p.Indicator
	case "dataset":
		return p.Dataset
	case "cic":
		tags := append([]string(nil), p.Tags...)
		filter.SortTagIDs(tags)
		return strings.Join(tags, ",")
	case "mode":
		return p.Mode.String()
	}
	return ""
}

func (p *Params) set(f Field, raw string) {
	switch f.Kind {
	case KindString:
		if f.Key == "indicator" {
			p.Indicator = raw
		} else {
			p.Dataset = raw
		}
	case KindList:
		p.Tags = splitList(raw)
	case KindMode:
		switch raw {
		case "all":
			p.Mode = filter.MatchAll
		case "any", "":
			p.Mode = filter.MatchAny
		default:
			debug.Log("hash: unknown mode %q, using any", raw)
			p.Mode = filter.MatchAny
		}
	}
}

// Encode serializes p as a query-string fragment without the leading '#'.
// Keys follow Schema order and tag ids are naturally sorted, so equal
// params always give equal strings.
func (p Params) Encode() string {
	parts := make([]string, 0, len(Schema))
	for _, f := range Schema {
		v := p.value(f)
		if v == "" || v == f.Default {
			continue
		}
		parts = append(parts, f.Key+"="+escapeComponent(v))
	}
	return strings.Join(parts, "&")
}

// ParseHash decodes a fragment. A leading '#' is tolerated, unknown keys are
// ignored and the first occurrence of a key wins. Bad percent-escapes keep
// the raw text; parsing never fails.
func ParseHash(hash string) Params {
	hash = strings.TrimPrefix(hash, "#")
	var p Params
	seen := make(map[string]bool, len(Schema))
	for _, pair := range strings.Split(hash, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, val := unescape(k), unescape(v)
		f, ok := lookupField(key)
		if !ok {
			debug.Log("hash: ignoring unknown key %q", key)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		p.set(f, val)
	}
	return p
}

func lookupField(key string) (Field, bool) {
	for _, f := range Schema {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// splitList splits a comma-joined id list, dropping empties and repeats.
// Ids are not trimmed: surrounding spaces are part of the id.
func splitList(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range strings.Split(raw, ",") {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return strings.ReplaceAll(s, "+", " ")
}

// escapeComponent percent-encodes everything except the unreserved set of
// RFC 3986 plus !*'(), the same set browsers leave alone in URI components.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
