// Package bridge exposes the agent's inbound message API to the UI
// layer (popup, sidebar, settings): request/response pairs carried over
// a localhost HTTP listener.
//
// The bridge itself holds no tracking state; every action dispatches
// into the recorder engine or passes through to the backend.
package bridge

import (
	"github.com/mycelica/holerabbit/pkg/backend"
	"github.com/mycelica/holerabbit/pkg/config"
	"github.com/mycelica/holerabbit/pkg/recorder"
	"github.com/mycelica/holerabbit/pkg/stats"
)

// Actions accepted by the message API.
const (
	ActionStatus     = "status"
	ActionGetConfig  = "getConfig"
	ActionSetConfig  = "setConfig"
	ActionGetSession = "getSession"
	ActionPause      = "pauseSession"
	ActionResume     = "resumeSession"
	ActionCapture    = "capture"
	ActionSearch     = "search"
	ActionNavigation = "navigation"
	ActionTabClosed  = "tabClosed"
)

// Request is one inbound message.
type Request struct {
	// Action selects the operation.
	Action string `json:"action"`

	// Config carries the new configuration for setConfig.
	Config *ConfigPayload `json:"config,omitempty"`

	// Query is the search query for search.
	Query string `json:"query,omitempty"`

	// Data is the capture payload for capture.
	Data *backend.CaptureRequest `json:"data,omitempty"`

	// Event is the navigation event for navigation.
	Event *NavigationPayload `json:"event,omitempty"`

	// TabID identifies the closed tab for tabClosed.
	TabID int `json:"tabId,omitempty"`
}

// ConfigPayload is the config shape shared with the UI layer.
type ConfigPayload struct {
	AutoTrack *config.AutoTrackConfig `json:"autoTrack"`
}

// NavigationPayload is a completed navigation reported by the browser.
type NavigationPayload struct {
	// TabID identifies the tab.
	TabID int `json:"tabId"`

	// URL is the navigated-to page.
	URL string `json:"url"`

	// Title is the page title if known.
	Title string `json:"title,omitempty"`

	// FrameID is 0 for main-frame navigations; subframes are ignored.
	FrameID int `json:"frameId"`

	// Timestamp is the navigation time in epoch milliseconds;
	// 0 means "now".
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Result is the generic success/failure response.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PauseResult is the pauseSession/resumeSession response.
type PauseResult struct {
	Success bool   `json:"success"`
	Paused  bool   `json:"paused"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse is the status response.
type StatusResponse struct {
	Connected bool               `json:"connected"`
	AutoTrack bool               `json:"autoTrack,omitempty"`
	Session   *recorder.Snapshot `json:"session,omitempty"`
	Stats     *stats.Statistics  `json:"stats,omitempty"`
}
