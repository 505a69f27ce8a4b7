// Package stats aggregates recorded visits into per-process statistics:
// visit counts per navigation type and dwell-time distribution.
//
// The aggregation is runtime-only, like the session itself; it resets
// with the process.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/mycelica/holerabbit/pkg/navigation"
)

// Visit is one recorded visit, reduced to what the aggregation needs.
type Visit struct {
	// Type is the classified navigation type.
	Type navigation.Type

	// Dwell is the time spent on the previous page, zero for the first
	// visit in a tab.
	Dwell time.Duration
}

// Statistics is a snapshot of the aggregated visit data.
type Statistics struct {
	// TotalVisits is the number of visits recorded.
	TotalVisits int

	// Per-navigation-type counts.
	Searched    int
	Clicked     int
	Backtracked int

	// Dwell-time distribution over visits with a non-zero dwell.
	DwellMin time.Duration
	DwellMax time.Duration
	DwellAvg time.Duration
	DwellP50 time.Duration
	DwellP95 time.Duration
}

// Aggregator collects visit statistics.
type Aggregator interface {
	// Add records one visit.
	Add(v Visit)

	// Stats returns a snapshot of the current statistics.
	Stats() Statistics
}

// aggregator implements the Aggregator interface.
type aggregator struct {
	mu     sync.RWMutex
	stats  Statistics
	dwells []time.Duration
	total  time.Duration
}

// New creates an empty aggregator.
func New() Aggregator {
	return &aggregator{
		dwells: make([]time.Duration, 0),
	}
}

// Add implements Aggregator.Add.
func (a *aggregator) Add(v Visit) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalVisits++

	switch v.Type {
	case navigation.TypeSearched:
		a.stats.Searched++
	case navigation.TypeClicked:
		a.stats.Clicked++
	case navigation.TypeBacktracked:
		a.stats.Backtracked++
	}

	// First visits in a tab carry a zero dwell; they would skew the
	// distribution toward zero, so only real dwells are tracked.
	if v.Dwell <= 0 {
		return
	}

	a.dwells = append(a.dwells, v.Dwell)
	a.total += v.Dwell

	if a.stats.DwellMin == 0 || v.Dwell < a.stats.DwellMin {
		a.stats.DwellMin = v.Dwell
	}
	if v.Dwell > a.stats.DwellMax {
		a.stats.DwellMax = v.Dwell
	}
}

// Stats implements Aggregator.Stats.
func (a *aggregator) Stats() Statistics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := a.stats

	if len(a.dwells) > 0 {
		stats.DwellAvg = a.total / time.Duration(len(a.dwells))

		sorted := make([]time.Duration, len(a.dwells))
		copy(sorted, a.dwells)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		stats.DwellP50 = percentile(sorted, 50)
		stats.DwellP95 = percentile(sorted, 95)
	}

	return stats
}

// percentile returns the nearest-rank percentile of a sorted slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}

	return sorted[rank-1]
}
