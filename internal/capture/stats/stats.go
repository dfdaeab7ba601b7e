// Package stats maintains per-traffic-class inter-arrival statistics for
// the capture tool. All mutation goes through one Aggregator guarded by a
// single mutex: the critical sections are O(1) per packet and arrival rates
// are modest, so coarse locking is the simplest correct choice.
package stats

import (
	"math"
	"sync"
	"time"

	"tsnprobe/pkg/model"
)

const (
	// MaxTC mirrors the 8 possible PCP values.
	MaxTC = model.MaxTC

	// DefaultHistoryCap bounds the per-class raw interval history. Once a
	// class fills its history, later intervals still feed the running
	// aggregates but are no longer retained, so long captures compute
	// variance and burst ratio over the first DefaultHistoryCap intervals
	// only. A deliberate truncation bias, kept from the tool this measures
	// against.
	DefaultHistoryCap = 50000
)

// minSentinel marks a class that has not yet observed an interval.
const minSentinel = math.MaxUint64

// TCStats is the aggregate for one traffic class. Interval figures are in
// microseconds. Count can exceed len(History) once the history is full.
type TCStats struct {
	Count           uint64
	FirstUS         int64
	LastUS          int64
	TotalIntervalUS uint64
	MinIntervalUS   uint64
	MaxIntervalUS   uint64
	History         []uint64

	// OutOfOrder counts packets whose capture timestamp preceded the
	// previous one for the class. Such packets contribute no interval but
	// still count; the counter keeps clock trouble visible instead of
	// folding it into the variance.
	OutOfOrder uint64
}

// AvgIntervalUS is the mean inter-arrival interval, or 0 with fewer than
// two packets.
func (tc *TCStats) AvgIntervalUS() float64 {
	intervals := tc.Count - tc.OutOfOrder
	if tc.Count < 2 || intervals < 2 {
		return 0
	}
	return float64(tc.TotalIntervalUS) / float64(intervals-1)
}

// MinIntervalOrZero hides the sentinel from reporting.
func (tc *TCStats) MinIntervalOrZero() uint64 {
	if tc.MinIntervalUS == minSentinel {
		return 0
	}
	return tc.MinIntervalUS
}

// ThroughputKbps derives the class throughput from the packet count and the
// first/last timestamps, assuming the fixed 60-byte frame size.
func (tc *TCStats) ThroughputKbps() float64 {
	if tc.Count < 2 || tc.LastUS <= tc.FirstUS {
		return 0
	}
	return float64(tc.Count) * 60 * 8 * 1000 / float64(tc.LastUS-tc.FirstUS)
}

// Snapshot is a consistent copy of the aggregator state. History slices are
// deep-copied so readers never race the capture loop.
type Snapshot struct {
	Elapsed time.Duration
	Total   uint64
	TC      [MaxTC]TCStats
}

// Aggregator owns the per-class table. Create with New, feed with Record,
// read with Snapshot, seal with Finalize.
type Aggregator struct {
	mu         sync.Mutex
	start      time.Time
	historyCap int
	total      uint64
	finalized  bool
	tc         [MaxTC]TCStats
}

// New returns an empty aggregator. historyCap <= 0 selects
// DefaultHistoryCap.
func New(historyCap int) *Aggregator {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	a := &Aggregator{start: time.Now(), historyCap: historyCap}
	for i := range a.tc {
		a.tc[i].MinIntervalUS = minSentinel
	}
	return a
}

// Record folds one accepted packet into the class aggregate. ts must be the
// capture timestamp, not the processing time. Records after Finalize and
// records for out-of-range classes are dropped.
func (a *Aggregator) Record(tc int, ts time.Time) {
	if tc < 0 || tc >= MaxTC {
		return
	}
	us := ts.UnixMicro()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finalized {
		return
	}

	c := &a.tc[tc]
	switch {
	case c.Count == 0:
		c.FirstUS = us
		c.LastUS = us
	case us < c.LastUS:
		c.OutOfOrder++
		c.LastUS = us
	default:
		interval := uint64(us - c.LastUS)
		c.TotalIntervalUS += interval
		if interval < c.MinIntervalUS {
			c.MinIntervalUS = interval
		}
		if interval > c.MaxIntervalUS {
			c.MaxIntervalUS = interval
		}
		if len(c.History) < a.historyCap {
			c.History = append(c.History, interval)
		}
		c.LastUS = us
	}
	c.Count++
	a.total++
}

// Snapshot copies the current state under the lock.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Finalize seals the aggregator and returns the closing snapshot. Later
// Record calls are no-ops; Finalize is idempotent.
func (a *Aggregator) Finalize() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finalized = true
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	s := Snapshot{Elapsed: time.Since(a.start), Total: a.total, TC: a.tc}
	for i := range s.TC {
		if h := a.tc[i].History; h != nil {
			s.TC[i].History = append([]uint64(nil), h...)
		}
	}
	return s
}
