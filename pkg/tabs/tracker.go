// Package tabs maintains per-tab navigation state.
//
// Each tab carries its last visited URL, the timestamp of that visit, and
// a bounded history used for backtrack detection. State is created lazily
// on the first recorded navigation and discarded when the tab closes.
package tabs

import (
	"sync"
	"time"
)

// MaxHistory bounds the per-tab history; the oldest entry is evicted
// once the cap is reached.
const MaxHistory = 100

// Entry is one recorded navigation in a tab.
type Entry struct {
	// URL is the visited page URL.
	URL string

	// Timestamp is when the navigation completed.
	Timestamp time.Time
}

// State is the navigation state of a single tab.
//
// A zero State (no LastURL, zero LastTimestamp, empty History) represents
// a tab with no recorded navigation.
type State struct {
	// LastURL is the most recently visited URL, empty if none.
	LastURL string

	// LastTimestamp is when LastURL was visited, zero if none.
	LastTimestamp time.Time

	// History holds up to MaxHistory entries in insertion order.
	History []Entry
}

// Tracker owns the navigation state of all open tabs.
type Tracker interface {
	// Get returns a copy of the tab's state.
	//
	// The second return is false when the tab has no recorded state;
	// the returned State is then zero-valued and safe to use.
	Get(tabID int) (State, bool)

	// Record appends a navigation to the tab's history, creating the
	// state if needed and evicting the oldest entry beyond MaxHistory.
	Record(tabID int, url string, ts time.Time)

	// Remove discards a tab's state. Removing an unknown tab is a no-op.
	Remove(tabID int)

	// Len returns the number of tabs with recorded state.
	Len() int
}

// tracker implements the Tracker interface.
type tracker struct {
	mu   sync.RWMutex
	tabs map[int]*State
}

// NewTracker creates an empty tab tracker.
func NewTracker() Tracker {
	return &tracker{
		tabs: make(map[int]*State),
	}
}

// Get implements Tracker.Get.
func (t *tracker) Get(tabID int) (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.tabs[tabID]
	if !ok {
		return State{}, false
	}

	// Copy so callers can classify against a stable snapshot while the
	// tracker moves on.
	history := make([]Entry, len(s.History))
	copy(history, s.History)

	return State{
		LastURL:       s.LastURL,
		LastTimestamp: s.LastTimestamp,
		History:       history,
	}, true
}

// Record implements Tracker.Record.
func (t *tracker) Record(tabID int, url string, ts time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.tabs[tabID]
	if !ok {
		s = &State{}
		t.tabs[tabID] = s
	}

	s.LastURL = url
	s.LastTimestamp = ts
	s.History = append(s.History, Entry{URL: url, Timestamp: ts})
	if len(s.History) > MaxHistory {
		s.History = s.History[1:]
	}
}

// Remove implements Tracker.Remove.
func (t *tracker) Remove(tabID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.tabs, tabID)
}

// Len implements Tracker.Len.
func (t *tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.tabs)
}
