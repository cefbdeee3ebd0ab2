package model

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ErrInvalidFormat is returned when the payload is neither a list of
// indicators nor an object carrying an "indicators" array.
var ErrInvalidFormat = errors.New("catalog format invalid")

// wireIndicator accepts both the generator's keys ("indicator", "cic_ids")
// and the newer ones ("name", "tagIds").
type wireIndicator struct {
	ID          string    `json:"id"`
	Indicator   string    `json:"indicator"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	CICIDs      []string  `json:"cic_ids"`
	TagIDs      []string  `json:"tagIds"`
	TagIDsSnake []string  `json:"tag_ids"`
	Datasets    []Dataset `json:"datasets"`
}

func (w wireIndicator) indicator() Indicator {
	name := w.Indicator
	if name == "" {
		name = w.Name
	}
	tags := w.CICIDs
	if len(tags) == 0 {
		tags = w.TagIDs
	}
	if len(tags) == 0 {
		tags = w.TagIDsSnake
	}
	ds := w.Datasets
	if ds == nil {
		ds = []Dataset{}
	}
	return Indicator{
		ID:          w.ID,
		Name:        name,
		Category:    w.Category,
		Source:      w.Source,
		Description: w.Description,
		TagIDs:      dedupe(tags),
		Datasets:    ds,
	}
}

type wireCatalog struct {
	GeneratedAt string          `json:"generated_at"`
	Indicators  json.RawMessage `json:"indicators"`
	CICs        []Tag           `json:"cics"`
	Tags        []Tag           `json:"tags"`
}

// Decode parses a catalog payload in either the legacy shape (a plain array
// of indicators) or the current object shape.
func Decode(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrInvalidFormat
	}

	switch trimmed[0] {
	case '[':
		var raw []wireIndicator
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return NewCatalog(convertIndicators(raw), []Tag{}, time.Time{}), nil

	case '{':
		var wc wireCatalog
		if err := json.Unmarshal(trimmed, &wc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		list := bytes.TrimSpace(wc.Indicators)
		if len(list) == 0 || list[0] != '[' {
			return nil, fmt.Errorf("%w: missing indicators array", ErrInvalidFormat)
		}
		var raw []wireIndicator
		if err := json.Unmarshal(list, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		tags := wc.CICs
		if len(tags) == 0 {
			tags = wc.Tags
		}
		if tags == nil {
			tags = []Tag{}
		}
		return NewCatalog(convertIndicators(raw), tags, parseGeneratedAt(wc.GeneratedAt)), nil

	default:
		return nil, ErrInvalidFormat
	}
}

func convertIndicators(raw []wireIndicator) []Indicator {
	out := make([]Indicator, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.indicator())
	}
	return out
}

func parseGeneratedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type encodedIndicator struct {
	ID          string    `json:"id"`
	Indicator   string    `json:"indicator"`
	Category    string    `json:"category,omitempty"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
	Datasets    []Dataset `json:"datasets"`
	CICIDs      []string  `json:"cic_ids,omitempty"`
}

type encodedCatalog struct {
	GeneratedAt string             `json:"generated_at,omitempty"`
	Indicators  []encodedIndicator `json:"indicators"`
	CICs        []Tag              `json:"cics"`
}

// Encode writes the catalog in the current object shape.
func Encode(c *Catalog) ([]byte, error) {
	if c == nil {
		c = NewCatalog(nil, nil, time.Time{})
	}
	out := encodedCatalog{
		Indicators: make([]encodedIndicator, 0, len(c.Indicators)),
		CICs:       c.Tags,
	}
	if out.CICs == nil {
		out.CICs = []Tag{}
	}
	if !c.GeneratedAt.IsZero() {
		out.GeneratedAt = c.GeneratedAt.UTC().Format(time.RFC3339)
	}
	for _, ind := range c.Indicators {
		ds := ind.Datasets
		if ds == nil {
			ds = []Dataset{}
		}
		out.Indicators = append(out.Indicators, encodedIndicator{
			ID:          ind.ID,
			Indicator:   ind.Name,
			Category:    ind.Category,
			Source:      ind.Source,
			Description: ind.Description,
			Datasets:    ds,
			CICIDs:      ind.TagIDs,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
