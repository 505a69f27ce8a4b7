// Package navigation defines navigation events and derives how the user
// arrived at a page: a fresh entry point (searched), a referred move
// (clicked), or a return to a page seen earlier in the tab (backtracked).
package navigation

import (
	"time"

	"github.com/mycelica/holerabbit/pkg/tabs"
)

// Type classifies how the user arrived at a page.
type Type string

// Navigation types, matching the backend wire values.
const (
	// TypeSearched marks the first navigation recorded in a tab.
	TypeSearched Type = "searched"

	// TypeClicked marks a navigation with a prior URL in the same tab.
	TypeClicked Type = "clicked"

	// TypeBacktracked marks a return to a URL seen earlier in the
	// tab's history.
	TypeBacktracked Type = "backtracked"
)

// Referred reports whether the type carries a referrer: searched visits
// have no referring page, clicked and backtracked visits do.
func (t Type) Referred() bool {
	return t == TypeClicked || t == TypeBacktracked
}

// Event is one completed main-frame navigation delivered to the engine.
type Event struct {
	// TabID identifies the tab the navigation happened in.
	TabID int

	// URL is the navigated-to page URL.
	URL string

	// Title is the page title if the sender knows it, empty otherwise.
	Title string

	// Timestamp is when the navigation completed. A zero value means
	// "now" to the engine.
	Timestamp time.Time
}

// Classify derives the navigation type from the tab's pre-update state.
//
// The caller must classify before recording the current navigation into
// the tracker: "most recent" refers to the history as it stood when the
// navigation arrived.
func Classify(state tabs.State, currentURL string) Type {
	if state.LastURL == "" {
		return TypeSearched
	}

	// A match anywhere but the most recent entry is a backtrack. The
	// first match decides, as in the extension.
	for i, entry := range state.History {
		if entry.URL == currentURL {
			if i < len(state.History)-1 {
				return TypeBacktracked
			}
			break
		}
	}

	return TypeClicked
}
