// Package backend implements the HTTP client for the Mycelica backend:
// live-session sync, visit reporting, session pause/resume, and the
// capture/search/status passthroughs used by the UI layer.
//
// Every call is attempted at most once with an explicit timeout; callers
// treat failures as "proceed with local state only".
package backend

import (
	"time"

	"github.com/mycelica/holerabbit/pkg/navigation"
)

// LiveSession is the backend's authoritative current session.
type LiveSession struct {
	// ID is the backend session identifier.
	ID string `json:"id"`

	// Title is the backend-assigned session name.
	Title string `json:"title"`

	// StartTime is the session start in epoch milliseconds.
	StartTime int64 `json:"start_time"`

	// ItemCount is the number of items the backend holds for the session.
	ItemCount int `json:"item_count"`

	// Status is the backend session status; "paused" suspends tracking.
	Status string `json:"status"`
}

// Paused reports whether the backend session is paused.
func (s *LiveSession) Paused() bool {
	return s.Status == "paused"
}

// liveResponse is the GET /holerabbit/live body.
type liveResponse struct {
	Session *LiveSession `json:"session"`
}

// Visit is the POST /holerabbit/visit payload.
type Visit struct {
	// URL is the visited page.
	URL string `json:"url"`

	// Referrer is the tab's previous URL; null for searched visits.
	Referrer *string `json:"referrer"`

	// Timestamp is the visit time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// TabID is the originating tab.
	TabID int `json:"tab_id"`

	// SessionID is the local session id, empty when no session exists.
	SessionID string `json:"session_id"`

	// NavigationType is searched, clicked, or backtracked.
	NavigationType navigation.Type `json:"navigation_type"`

	// PreviousDwellTimeMS is the dwell on the previous page.
	PreviousDwellTimeMS int64 `json:"previous_dwell_time_ms"`

	// SessionGapMinutes echoes the configured gap so backend-side gap
	// logic stays consistent with the agent's.
	SessionGapMinutes float64 `json:"session_gap_minutes"`

	// Title is the page title, omitted when unknown.
	Title string `json:"title,omitempty"`
}

// VisitResult is the POST /holerabbit/visit response.
type VisitResult struct {
	// SessionName is a backend-assigned name for the session, if any.
	SessionName string `json:"session_name"`

	// IsNewSession signals that the referenced session no longer
	// existed and the backend created a replacement.
	IsNewSession bool `json:"is_new_session"`

	// SessionID is the replacement session id when IsNewSession is set.
	SessionID string `json:"session_id"`

	// SessionGapMinutes is the backend's gap setting, if it reports one.
	SessionGapMinutes float64 `json:"session_gap_minutes"`
}

// CaptureRequest is the POST /capture payload for manual captures.
type CaptureRequest struct {
	// Title of the captured page or selection.
	Title string `json:"title"`

	// URL of the captured page.
	URL string `json:"url"`

	// Content is the captured text, empty for whole-page captures.
	Content string `json:"content"`

	// Timestamp is the capture time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Config contains backend client configuration.
type Config struct {
	// BaseURL is the backend service address.
	BaseURL string

	// Timeout applies per outbound call (default: 3 seconds).
	Timeout time.Duration
}
