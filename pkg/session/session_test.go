package session

import (
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	id := NewID(now)

	if !strings.HasPrefix(id, "session-1700000000000-") {
		t.Errorf("NewID() = %s, want session-1700000000000-<suffix>", id)
	}

	suffix := strings.TrimPrefix(id, "session-1700000000000-")
	if len(suffix) != 6 {
		t.Errorf("suffix %q has length %d, want 6", suffix, len(suffix))
	}
}

func TestNewIDUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := NewID(now)
		if seen[id] {
			t.Fatalf("duplicate session ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewState(t *testing.T) {
	now := time.Now()

	s := New(now)

	if !s.Active() {
		t.Error("New() session not active")
	}
	if !s.StartTime.Equal(now) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, now)
	}
	if s.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0", s.PageCount)
	}
	if s.Paused {
		t.Error("new session should not be paused")
	}
	if s.Name != "" {
		t.Errorf("Name = %q, want empty (backend-assigned only)", s.Name)
	}
}

func TestDecide(t *testing.T) {
	now := time.Now()
	gap := 30 * time.Minute

	tests := []struct {
		name      string
		current   State
		lastVisit time.Time
		want      Decision
	}{
		{
			name:      "existing session reused",
			current:   State{ID: "session-1-abc"},
			lastVisit: now.Add(-time.Hour), // gap elapsed, still reused
			want:      DecisionReuse,
		},
		{
			name:      "no session no previous visit",
			current:   State{},
			lastVisit: time.Time{},
			want:      DecisionCreate,
		},
		{
			name:      "no session gap elapsed",
			current:   State{},
			lastVisit: now.Add(-31 * time.Minute),
			want:      DecisionCreate,
		},
		{
			name:      "no session inside gap window",
			current:   State{},
			lastVisit: now.Add(-5 * time.Minute),
			want:      DecisionNone,
		},
		{
			name:      "no session exactly at gap",
			current:   State{},
			lastVisit: now.Add(-gap),
			want:      DecisionNone, // must strictly exceed the gap
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.current, tt.lastVisit, now, gap); got != tt.want {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}
