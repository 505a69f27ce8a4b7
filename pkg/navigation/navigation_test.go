package navigation

import (
	"testing"
	"time"

	"github.com/mycelica/holerabbit/pkg/tabs"
)

func stateFromURLs(urls ...string) tabs.State {
	s := tabs.State{}
	base := time.Now()

	for i, u := range urls {
		ts := base.Add(time.Duration(i) * time.Second)
		s.History = append(s.History, tabs.Entry{URL: u, Timestamp: ts})
		s.LastURL = u
		s.LastTimestamp = ts
	}

	return s
}

func TestClassifyFreshTab(t *testing.T) {
	got := Classify(tabs.State{}, "https://en.wikipedia.org/wiki/Cat")
	if got != TypeSearched {
		t.Errorf("Classify(fresh tab) = %s, want searched", got)
	}
}

func TestClassifyClicked(t *testing.T) {
	state := stateFromURLs("https://en.wikipedia.org/wiki/Cat")

	got := Classify(state, "https://en.wikipedia.org/wiki/Dog")
	if got != TypeClicked {
		t.Errorf("Classify(new URL) = %s, want clicked", got)
	}
}

func TestClassifyBacktracked(t *testing.T) {
	state := stateFromURLs(
		"https://en.wikipedia.org/wiki/Cat",
		"https://en.wikipedia.org/wiki/Dog",
	)

	got := Classify(state, "https://en.wikipedia.org/wiki/Cat")
	if got != TypeBacktracked {
		t.Errorf("Classify(earlier URL) = %s, want backtracked", got)
	}
}

func TestClassifyMostRecentIsNotBacktrack(t *testing.T) {
	state := stateFromURLs(
		"https://en.wikipedia.org/wiki/Cat",
		"https://en.wikipedia.org/wiki/Dog",
	)

	// Reload of the most recent entry counts as a click, not a backtrack.
	got := Classify(state, "https://en.wikipedia.org/wiki/Dog")
	if got != TypeClicked {
		t.Errorf("Classify(most recent URL) = %s, want clicked", got)
	}
}

func TestClassifyDuplicateEarlierAndLatest(t *testing.T) {
	// The URL appears both earlier in history and as the latest entry;
	// the first match decides, so this is a backtrack.
	state := stateFromURLs(
		"https://en.wikipedia.org/wiki/Cat",
		"https://en.wikipedia.org/wiki/Dog",
		"https://en.wikipedia.org/wiki/Cat",
	)

	got := Classify(state, "https://en.wikipedia.org/wiki/Cat")
	if got != TypeBacktracked {
		t.Errorf("Classify(duplicated URL) = %s, want backtracked", got)
	}
}

func TestReferred(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{TypeSearched, false},
		{TypeClicked, true},
		{TypeBacktracked, true},
	}

	for _, tt := range tests {
		if got := tt.typ.Referred(); got != tt.want {
			t.Errorf("%s.Referred() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
