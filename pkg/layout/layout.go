// Package layout computes the three column widths of the browser and
// persists the user's resizing.
//
// Widths are plain integers in whatever unit Options uses: pixels for the
// HTML page, terminal cells for the TUI. Drag and keyboard resizing both go
// through Clamp, so neither side panel can drop below Options.Min.
package layout

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/localstore"
)

// Options fixes the unit-dependent constants.
type Options struct {
	Min           int     // smallest side panel
	Step          int     // keyboard step
	LargeStep     int     // keyboard step with shift
	DefaultLeft   int     // left panel before any resizing
	RightFraction float64 // computed right panel share of the total
	Key           string  // storage key
}

// PixelOptions are the web page defaults.
func PixelOptions() Options {
	return Options{Min: 180, Step: 10, LargeStep: 50, DefaultLeft: 260, RightFraction: 0.35, Key: "dashboard.col.widths.v1"}
}

// CellOptions are the terminal defaults.
func CellOptions() Options {
	return Options{Min: 18, Step: 2, LargeStep: 8, DefaultLeft: 30, RightFraction: 0.35, Key: "tui.col.widths.v1"}
}

// Gutter identifies a resize handle.
type Gutter int

const (
	GutterLeft  Gutter = 1 // between indicators and datasets
	GutterRight Gutter = 2 // between datasets and detail
)

// Widths is the computed triple; it is also the persisted shape.
type Widths struct {
	Left   int `json:"left"`
	Middle int `json:"middle"`
	Right  int `json:"right"`
}

// Sum returns the total of the three columns.
func (w Widths) Sum() int { return w.Left + w.Middle + w.Right }

// Manager holds the left width and an optional right override.
type Manager struct {
	opts  Options
	store localstore.Store
	left  int
	right int // 0 = computed from RightFraction
}

// New returns a manager at default widths. store may be nil.
func New(opts Options, store localstore.Store) *Manager {
	return &Manager{opts: opts, store: store, left: opts.DefaultLeft}
}

// Options returns the manager's options.
func (m *Manager) Options() Options { return m.opts }

// Clamp bounds v to [Min, total-Min]; a non-positive total only applies the
// lower bound.
func (m *Manager) Clamp(v, total int) int {
	if total > 0 && v > total-m.opts.Min {
		v = total - m.opts.Min
	}
	if v < m.opts.Min {
		v = m.opts.Min
	}
	return v
}

// Apply computes the widths for a container of the given size. The result
// may exceed total when the container is narrower than three minimums; use
// Fit to squeeze it.
func (m *Manager) Apply(total int) Widths {
	right := m.right
	if right == 0 {
		right = max(m.opts.Min, int(float64(total)*m.opts.RightFraction))
	}
	left := max(m.opts.Min, m.left)
	return Widths{
		Left:   left,
		Middle: max(m.opts.Min, total-left-right),
		Right:  right,
	}
}

// Drag moves a gutter to position x (measured from the container's left
// edge) and returns the new widths.
func (m *Manager) Drag(g Gutter, x, total int) Widths {
	switch g {
	case GutterLeft:
		m.left = m.Clamp(x, total)
	case GutterRight:
		m.right = m.Clamp(total-x, total)
	}
	return m.Apply(total)
}

// EndDrag persists the widths after a drag gesture.
func (m *Manager) EndDrag(total int) error {
	return m.Save(total)
}

// KeyResize nudges a gutter by one step in dir (-1 left, +1 right) and
// persists the result. On the right gutter moving right shrinks the right
// panel.
func (m *Manager) KeyResize(g Gutter, dir int, large bool, total int) (Widths, error) {
	step := m.opts.Step
	if large {
		step = m.opts.LargeStep
	}
	delta := dir * step
	switch g {
	case GutterLeft:
		m.left = m.Clamp(m.Apply(total).Left+delta, total)
	case GutterRight:
		m.right = m.Clamp(m.Apply(total).Right-delta, total)
	}
	return m.Apply(total), m.Save(total)
}

// Reset restores the defaults and clears the persisted value.
func (m *Manager) Reset(total int) (Widths, error) {
	m.left = m.opts.DefaultLeft
	m.right = 0
	var err error
	if m.store != nil {
		if err = m.store.Remove(m.opts.Key); err != nil {
			err = fmt.Errorf("clearing widths: %w", err)
		}
	}
	return m.Apply(total), err
}

// persisted tolerates any JSON number and detects missing fields.
type persisted struct {
	Left  *float64 `json:"left"`
	Right *float64 `json:"right"`
}

// Load restores persisted widths. Missing or corrupt data is ignored and
// reported as false.
func (m *Manager) Load() bool {
	if m.store == nil {
		return false
	}
	raw, ok := m.store.Get(m.opts.Key)
	if !ok || raw == "" {
		return false
	}
	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil || !storable(p.Left) || !storable(p.Right) {
		debug.Log("layout: ignoring stored widths %q", raw)
		return false
	}
	m.left = max(m.opts.Min, int(*p.Left))
	m.right = max(m.opts.Min, int(*p.Right))
	return true
}

// maxStoredWidth bounds a persisted width before it is converted to int.
const maxStoredWidth = 1 << 20

func storable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0 && *v <= maxStoredWidth
}

// Save persists the current widths for total.
func (m *Manager) Save(total int) error {
	if m.store == nil {
		return nil
	}
	data, err := json.Marshal(m.Apply(total))
	if err != nil {
		return fmt.Errorf("encoding widths: %w", err)
	}
	if err := m.store.Set(m.opts.Key, string(data)); err != nil {
		return fmt.Errorf("saving widths: %w", err)
	}
	return nil
}

// Fit shrinks w to total when it overflows, taking from the middle first and
// then from the larger side panel. Columns never go below one unit.
func Fit(w Widths, total int) Widths {
	over := w.Sum() - total
	if over <= 0 || total < 3 {
		return w
	}
	take := func(col *int, n int) int {
		can := min(n, *col-1)
		if can < 0 {
			can = 0
		}
		*col -= can
		return n - can
	}
	over = take(&w.Middle, over)
	if w.Left >= w.Right {
		over = take(&w.Left, over)
		take(&w.Right, over)
	} else {
		over = take(&w.Right, over)
		take(&w.Left, over)
	}
	return w
}
