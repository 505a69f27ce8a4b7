// Package recorder implements the visit-recording engine: it admits
// navigation events through the domain filter, reconciles the local
// session with the backend's live session, classifies the navigation,
// tracks per-tab state and dwell time, and reports visits to the backend.
//
// All visit recording runs on a single goroutine draining an event
// queue, so the sync → decide → update → send sequence never interleaves
// between two navigation events.
package recorder

import (
	"context"
	"time"

	"github.com/mycelica/holerabbit/pkg/config"
	"github.com/mycelica/holerabbit/pkg/navigation"
	"github.com/mycelica/holerabbit/pkg/stats"
)

// TitleSource resolves a tab's page title best-effort. A lookup failure
// only means the visit is reported without a title.
type TitleSource interface {
	// Title returns the current page title of the tab.
	Title(ctx context.Context, tabID int) (string, error)
}

// Snapshot is a read-only view of the engine's session belief.
type Snapshot struct {
	// ID is the session identifier, empty if none.
	ID string `json:"id"`

	// Name is the backend-assigned session name, empty if none.
	Name string `json:"name"`

	// StartTime is the session start in epoch milliseconds, 0 if none.
	StartTime int64 `json:"startTime"`

	// PageCount is the number of pages recorded.
	PageCount int `json:"pageCount"`

	// Paused reports whether recording is suspended.
	Paused bool `json:"paused"`

	// Enabled reports whether auto-tracking is on.
	Enabled bool `json:"enabled"`
}

// Engine is the navigation-to-session correlation engine.
type Engine interface {
	// Start begins draining the event queue.
	//
	// Returns error if the engine is already running or closed.
	Start(ctx context.Context) error

	// Stop stops the queue goroutine.
	Stop() error

	// Submit enqueues a navigation event without blocking.
	//
	// Returns false when the queue is full and the event was dropped;
	// navigation events are best-effort.
	Submit(event navigation.Event) bool

	// RecordVisit processes one navigation event synchronously.
	//
	// Every precondition failure (tracking disabled, session paused,
	// URL rejected) is a silent no-op.
	RecordVisit(ctx context.Context, event navigation.Event)

	// Pause pauses the current session, backend-first with local
	// fallback when the backend is unreachable.
	//
	// Returns ErrNoActiveSession without contacting the backend when
	// no session exists.
	Pause(ctx context.Context) error

	// Resume resumes the current session; same contract as Pause.
	Resume(ctx context.Context) error

	// Sync pulls the backend's live session into local state.
	//
	// Returns true if the backend reported a live session. Failures
	// leave local state untouched.
	Sync(ctx context.Context) bool

	// Session returns the current session snapshot.
	Session() Snapshot

	// Stats returns the aggregated visit statistics.
	Stats() stats.Statistics

	// Config returns the engine's current auto-track configuration.
	Config() config.AutoTrackConfig

	// UpdateConfig replaces the auto-track configuration, logging
	// tracking start/stop on enablement transitions.
	UpdateConfig(cfg config.AutoTrackConfig)

	// TabClosed discards the tab's navigation state.
	TabClosed(tabID int)
}

// Config contains engine configuration.
type Config struct {
	// AutoTrack is the initial tracking configuration.
	AutoTrack config.AutoTrackConfig

	// Titles resolves page titles best-effort; may be nil.
	Titles TitleSource

	// QueueSize bounds the pending navigation events (default: 64).
	QueueSize int
}

// gapDuration converts the configured gap in minutes to a duration.
func gapDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}
