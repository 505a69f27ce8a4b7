package stats

import (
	"testing"
	"time"

	"github.com/mycelica/holerabbit/pkg/navigation"
)

func TestEmptyStats(t *testing.T) {
	agg := New()

	s := agg.Stats()
	if s.TotalVisits != 0 {
		t.Errorf("TotalVisits = %d, want 0", s.TotalVisits)
	}
	if s.DwellP50 != 0 || s.DwellAvg != 0 {
		t.Errorf("empty aggregator reported dwell stats: %+v", s)
	}
}

func TestCountsPerType(t *testing.T) {
	agg := New()

	agg.Add(Visit{Type: navigation.TypeSearched})
	agg.Add(Visit{Type: navigation.TypeClicked, Dwell: time.Second})
	agg.Add(Visit{Type: navigation.TypeClicked, Dwell: 2 * time.Second})
	agg.Add(Visit{Type: navigation.TypeBacktracked, Dwell: 3 * time.Second})

	s := agg.Stats()

	if s.TotalVisits != 4 {
		t.Errorf("TotalVisits = %d, want 4", s.TotalVisits)
	}
	if s.Searched != 1 || s.Clicked != 2 || s.Backtracked != 1 {
		t.Errorf("type counts = %d/%d/%d, want 1/2/1", s.Searched, s.Clicked, s.Backtracked)
	}
}

func TestDwellDistribution(t *testing.T) {
	agg := New()

	// Zero dwell (first visit in a tab) is counted but excluded from
	// the distribution.
	agg.Add(Visit{Type: navigation.TypeSearched, Dwell: 0})

	for _, d := range []time.Duration{
		1 * time.Second,
		2 * time.Second,
		3 * time.Second,
		4 * time.Second,
	} {
		agg.Add(Visit{Type: navigation.TypeClicked, Dwell: d})
	}

	s := agg.Stats()

	if s.DwellMin != time.Second {
		t.Errorf("DwellMin = %v, want 1s", s.DwellMin)
	}
	if s.DwellMax != 4*time.Second {
		t.Errorf("DwellMax = %v, want 4s", s.DwellMax)
	}
	if s.DwellAvg != 2500*time.Millisecond {
		t.Errorf("DwellAvg = %v, want 2.5s", s.DwellAvg)
	}
	if s.DwellP50 != 2*time.Second {
		t.Errorf("DwellP50 = %v, want 2s", s.DwellP50)
	}
	if s.DwellP95 != 4*time.Second {
		t.Errorf("DwellP95 = %v, want 4s", s.DwellP95)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		p    int
		want time.Duration
	}{
		{50, 5},
		{95, 10},
		{100, 10},
		{1, 1},
	}

	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(p=%d) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
