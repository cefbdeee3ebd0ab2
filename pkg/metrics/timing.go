// Package metrics records in-process timing for cv's hot paths: catalog
// load, filter passes and view projection.
//
// Measurements are in-memory atomics. Collection is on by default and can be
// switched off with CV_METRICS=0.
//
//	func (c *Controller) recompute() {
//	    defer metrics.Timer(metrics.FilterPass)()
//	    ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/debug"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("CV_METRICS") != "0")
}

// Enabled reports whether samples are recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations for one named operation. Safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	max   atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled.Load() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for old := m.max.Load(); ns > old; old = m.max.Load() {
		if m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for old := m.min.Load(); old == 0 || ns < old; old = m.min.Load() {
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats snapshots the metric.
func (m *TimingMetric) Stats() TimingStats {
	count, total := m.count.Load(), m.total.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: ms(total),
		MaxMs:   ms(m.max.Load()),
		MinMs:   ms(m.min.Load()),
	}
	if count > 0 {
		s.AvgMs = ms(total / count)
	}
	return s
}

// Reset drops all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

func ms(ns int64) float64 { return float64(ns) / 1e6 }

// TimingStats is a point-in-time view of a metric, as printed by
// --robot-metrics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts a measurement and returns the function that ends it.
func Timer(m *TimingMetric) func() {
	if !enabled.Load() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Pipeline metrics.
var (
	CatalogLoad   = newTimingMetric("catalog_load")
	CatalogDecode = newTimingMetric("catalog_decode")
	FilterPass    = newTimingMetric("filter_pass")
	HashApply     = newTimingMetric("hash_apply")
	Projection    = newTimingMetric("projection")
	Export        = newTimingMetric("export")
)

var all = []*TimingMetric{CatalogLoad, CatalogDecode, FilterPass, HashApply, Projection, Export}

// ResetAll resets every pipeline metric.
func ResetAll() {
	for _, m := range all {
		m.Reset()
	}
}

// AllTimingStats returns stats for metrics that have at least one sample.
func AllTimingStats() []TimingStats {
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// LogSummary writes one debug line per sampled metric.
func LogSummary() {
	for _, s := range AllTimingStats() {
		debug.Log("metrics: %s n=%d avg=%.3fms max=%.3fms total=%.1fms", s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
}
