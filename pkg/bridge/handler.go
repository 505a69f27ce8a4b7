package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mycelica/holerabbit/pkg/backend"
	"github.com/mycelica/holerabbit/pkg/config"
	"github.com/mycelica/holerabbit/pkg/logger"
	"github.com/mycelica/holerabbit/pkg/navigation"
	"github.com/mycelica/holerabbit/pkg/recorder"
)

// Handler dispatches inbound messages to the engine and backend.
type Handler struct {
	engine  recorder.Engine
	backend backend.Client
	store   config.Store
	logger  logger.Logger
}

// NewHandler creates a message handler.
//
// Parameters:
//   - engine: Recorder engine
//   - client: Backend client for passthrough actions
//   - store: Persisted config override store; may be nil
//   - log: Logger instance
func NewHandler(engine recorder.Engine, client backend.Client, store config.Store, log logger.Logger) *Handler {
	return &Handler{
		engine:  engine,
		backend: client,
		store:   store,
		logger:  log,
	}
}

// Handle processes one request and returns the response value to encode.
//
// No action surfaces an error to the caller beyond its response shape;
// failures degrade to explicit failure results.
func (h *Handler) Handle(ctx context.Context, req Request) interface{} {
	switch req.Action {
	case ActionStatus:
		return h.status(ctx)
	case ActionGetConfig:
		return ConfigPayload{AutoTrack: ptr(h.engine.Config())}
	case ActionSetConfig:
		return h.setConfig(req)
	case ActionGetSession:
		return h.engine.Session()
	case ActionPause:
		return h.setPaused(ctx, true)
	case ActionResume:
		return h.setPaused(ctx, false)
	case ActionCapture:
		return h.capture(ctx, req)
	case ActionSearch:
		return h.search(ctx, req)
	case ActionNavigation:
		return h.navigation(req)
	case ActionTabClosed:
		h.engine.TabClosed(req.TabID)
		return Result{Success: true}
	default:
		return Result{Success: false, Error: fmt.Sprintf("unknown action: %s", req.Action)}
	}
}

// status probes the backend and returns connectivity plus the session
// snapshot. When connected and tracking is enabled, the snapshot follows
// a live-session sync.
func (h *Handler) status(ctx context.Context) StatusResponse {
	if err := h.backend.Status(ctx); err != nil {
		h.logger.Debug("backend status probe failed", "error", err)
		return StatusResponse{Connected: false}
	}

	snap := h.engine.Session()
	if snap.Enabled {
		h.engine.Sync(ctx)
		snap = h.engine.Session()
	}

	visitStats := h.engine.Stats()

	return StatusResponse{
		Connected: true,
		AutoTrack: snap.Enabled,
		Session:   &snap,
		Stats:     &visitStats,
	}
}

// setConfig applies and persists a new auto-track configuration.
func (h *Handler) setConfig(req Request) Result {
	if req.Config == nil || req.Config.AutoTrack == nil {
		return Result{Success: false, Error: "missing config"}
	}

	cfg := *req.Config.AutoTrack
	if cfg.SessionGapMinutes <= 0 {
		return Result{Success: false, Error: "session gap minutes must be positive"}
	}

	h.engine.UpdateConfig(cfg)

	if h.store != nil {
		if err := h.store.SaveAutoTrack(cfg); err != nil {
			// The running engine has the new config; persistence is
			// best-effort, like storage writes in the extension.
			h.logger.Warn("failed to persist config override", "error", err)
		}
	}

	return Result{Success: true}
}

// setPaused runs pauseSession/resumeSession.
func (h *Handler) setPaused(ctx context.Context, paused bool) PauseResult {
	var err error
	if paused {
		err = h.engine.Pause(ctx)
	} else {
		err = h.engine.Resume(ctx)
	}

	if err != nil {
		if errors.Is(err, recorder.ErrNoActiveSession) {
			return PauseResult{Success: false, Error: "no active session"}
		}
		return PauseResult{Success: false, Error: "backend error"}
	}

	return PauseResult{Success: true, Paused: paused}
}

// capture passes a manual capture through to the backend.
func (h *Handler) capture(ctx context.Context, req Request) map[string]interface{} {
	if req.Data == nil {
		return map[string]interface{}{"success": false, "error": "missing capture data"}
	}

	data := *req.Data
	if data.Timestamp == 0 {
		data.Timestamp = time.Now().UnixMilli()
	}

	result, err := h.backend.Capture(ctx, &data)
	if err != nil {
		return map[string]interface{}{"success": false, "error": err.Error()}
	}

	response := map[string]interface{}{
		"success": true,
		"method":  "http",
	}
	for k, v := range result {
		response[k] = v
	}

	return response
}

// search passes a query through to the backend, returning its JSON
// verbatim.
func (h *Handler) search(ctx context.Context, req Request) interface{} {
	raw, err := h.backend.Search(ctx, req.Query)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	return raw
}

// navigation feeds a browser navigation event into the engine queue.
//
// Subframe navigations and non-web schemes are dropped here, mirroring
// the webNavigation listener filter.
func (h *Handler) navigation(req Request) Result {
	if req.Event == nil {
		return Result{Success: false, Error: "missing navigation event"}
	}
	if req.Event.FrameID != 0 {
		return Result{Success: true}
	}
	if !strings.HasPrefix(req.Event.URL, "http://") && !strings.HasPrefix(req.Event.URL, "https://") {
		return Result{Success: true}
	}

	event := navigation.Event{
		TabID: req.Event.TabID,
		URL:   req.Event.URL,
		Title: req.Event.Title,
	}
	if req.Event.Timestamp > 0 {
		event.Timestamp = time.UnixMilli(req.Event.Timestamp)
	}

	h.engine.Submit(event)
	return Result{Success: true}
}

// ptr returns a pointer to v.
func ptr(v config.AutoTrackConfig) *config.AutoTrackConfig {
	return &v
}
