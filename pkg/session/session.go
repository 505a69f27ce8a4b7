// Package session holds the agent's local belief about the current
// browsing session and the continuity rules that decide when a new one
// begins.
//
// The backend remains authoritative: locally generated sessions can be
// overwritten wholesale by a live-session sync or replaced when the
// backend reports that the referenced session no longer exists.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the single process-wide session belief.
//
// A zero ID means no session has been established for the current gap
// window. PageCount only increases while unpaused and is reset when the
// backend declares a replacement session.
type State struct {
	// ID is the opaque session identifier, empty if none.
	ID string

	// Name is assigned only by the backend, empty until then.
	Name string

	// StartTime is when the session began, zero if none.
	StartTime time.Time

	// PageCount is the number of pages recorded into the session.
	PageCount int

	// Paused suspends visit recording when true.
	Paused bool
}

// Active reports whether a session has been established.
func (s State) Active() bool {
	return s.ID != ""
}

// NewID generates a local session identifier of the form
// session-<epoch-ms>-<6-char-random>.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("session-%d-%s", now.UnixMilli(), suffix)
}

// New returns a fresh unpaused session starting at now.
func New(now time.Time) State {
	return State{
		ID:        NewID(now),
		StartTime: now,
	}
}

// Decision is the outcome of the continuity check for a visit.
type Decision int

const (
	// DecisionReuse keeps the existing session. A backend-confirmed
	// session always wins over local gap logic, even when the gap has
	// technically elapsed.
	DecisionReuse Decision = iota

	// DecisionCreate generates a fresh session.
	DecisionCreate

	// DecisionNone records the visit without a session: no session
	// exists and the tab's previous visit is still inside the gap
	// window. Inherited from the extension, which left the session
	// unset in that state.
	DecisionNone
)

// String returns a human-readable decision name.
func (d Decision) String() string {
	switch d {
	case DecisionReuse:
		return "reuse"
	case DecisionCreate:
		return "create"
	case DecisionNone:
		return "none"
	default:
		return "unknown"
	}
}

// Decide applies the session continuity rules for a visit at now.
//
// Parameters:
//   - current: the local session belief after any backend sync
//   - lastVisit: the tab's previous navigation timestamp, zero if none
//   - now: the current visit's timestamp
//   - gap: the configured session gap threshold
//
// Gap evaluation applies only in the no-session state: a session is
// created when the tab has no previous visit at all, or when the elapsed
// time since it exceeds the gap.
func Decide(current State, lastVisit time.Time, now time.Time, gap time.Duration) Decision {
	if current.Active() {
		return DecisionReuse
	}

	if lastVisit.IsZero() {
		return DecisionCreate
	}

	if now.Sub(lastVisit) > gap {
		return DecisionCreate
	}

	return DecisionNone
}
