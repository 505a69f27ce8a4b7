package recorder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mycelica/holerabbit/pkg/backend"
	"github.com/mycelica/holerabbit/pkg/config"
	"github.com/mycelica/holerabbit/pkg/domain"
	"github.com/mycelica/holerabbit/pkg/logger"
	"github.com/mycelica/holerabbit/pkg/navigation"
	"github.com/mycelica/holerabbit/pkg/session"
	"github.com/mycelica/holerabbit/pkg/stats"
	"github.com/mycelica/holerabbit/pkg/tabs"
)

// engine implements the Engine interface.
type engine struct {
	logger  logger.Logger
	backend backend.Client
	titles  TitleSource
	tracker tabs.Tracker
	agg     stats.Aggregator

	// mu guards cfg, filter, and sess, and serializes the whole
	// sync → decide → update → send sequence: holding it across the
	// backend calls is the transactional boundary that keeps two rapid
	// navigations from both observing "no session".
	mu     sync.Mutex
	cfg    config.AutoTrackConfig
	filter domain.Filter
	sess   session.State

	events chan navigation.Event

	runMu    sync.Mutex
	running  bool
	closed   bool
	stopChan chan struct{}
}

// New creates a visit-recording engine.
//
// Parameters:
//   - cfg: Engine configuration
//   - client: Backend client
//   - log: Logger instance
//
// Returns a configured Engine.
func New(cfg Config, client backend.Client, log logger.Logger) Engine {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}

	return &engine{
		logger:  log,
		backend: client,
		titles:  cfg.Titles,
		tracker: tabs.NewTracker(),
		agg:     stats.New(),
		cfg:     cfg.AutoTrack,
		filter:  newFilter(cfg.AutoTrack),
		events:  make(chan navigation.Event, cfg.QueueSize),
		stopChan: make(chan struct{}),
	}
}

// newFilter builds the domain filter for an auto-track configuration.
func newFilter(cfg config.AutoTrackConfig) domain.Filter {
	return domain.New(domain.Config{
		AllowedDomains:  cfg.AllowedDomains,
		ExcludedDomains: cfg.ExcludedDomains,
	})
}

// Start implements Engine.Start.
func (e *engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.running {
		return ErrEngineRunning
	}
	e.running = true

	go e.processEvents(ctx)

	e.logger.Info("recorder engine started", "tracking_enabled", e.Config().Enabled)
	return nil
}

// Stop implements Engine.Stop.
func (e *engine) Stop() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if !e.running {
		return ErrEngineNotRunning
	}

	close(e.stopChan)
	e.running = false
	e.closed = true

	e.logger.Info("recorder engine stopped")
	return nil
}

// Submit implements Engine.Submit.
func (e *engine) Submit(event navigation.Event) bool {
	select {
	case e.events <- event:
		return true
	default:
		e.logger.Warn("event queue full, dropping navigation event",
			"tab_id", event.TabID,
			"url", event.URL)
		return false
	}
}

// processEvents drains the queue until stopped.
func (e *engine) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-e.stopChan:
			return

		case event := <-e.events:
			e.RecordVisit(ctx, event)
		}
	}
}

// RecordVisit implements Engine.RecordVisit.
func (e *engine) RecordVisit(ctx context.Context, event navigation.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.Enabled {
		return
	}
	if e.sess.Paused {
		return
	}
	if !e.filter.Allowed(event.URL) {
		return
	}

	now := event.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	// The backend's live session wins over anything believed locally.
	e.syncLiveSession(ctx)

	// The sync may have discovered a paused session.
	if e.sess.Paused {
		return
	}

	prior, _ := e.tracker.Get(event.TabID)

	switch session.Decide(e.sess, prior.LastTimestamp, now, gapDuration(e.cfg.SessionGapMinutes)) {
	case session.DecisionCreate:
		e.sess = session.New(now)
		e.logger.Info("new session started",
			"session_id", e.sess.ID,
			"tab_id", event.TabID)
	case session.DecisionReuse, session.DecisionNone:
	}

	var dwell time.Duration
	if !prior.LastTimestamp.IsZero() {
		dwell = now.Sub(prior.LastTimestamp)
	}

	navType := navigation.Classify(prior, event.URL)

	visit := &backend.Visit{
		URL:                 event.URL,
		Timestamp:           now.UnixMilli(),
		TabID:               event.TabID,
		SessionID:           e.sess.ID,
		NavigationType:      navType,
		PreviousDwellTimeMS: dwell.Milliseconds(),
		SessionGapMinutes:   e.cfg.SessionGapMinutes,
	}

	if navType.Referred() && prior.LastURL != "" {
		referrer := prior.LastURL
		visit.Referrer = &referrer
	}

	visit.Title = e.lookupTitle(ctx, event)

	// Local state reflects the visit even if the send fails below:
	// tracking keeps functioning offline.
	e.tracker.Record(event.TabID, event.URL, now)
	e.sess.PageCount++
	e.agg.Add(stats.Visit{Type: navType, Dwell: dwell})

	result, err := e.backend.RecordVisit(ctx, visit)
	if err != nil {
		if errors.Is(err, backend.ErrUnexpectedStatus) {
			e.logger.Warn("backend rejected visit", "error", err)
		} else {
			e.logger.Debug("backend not available, visit kept locally", "error", err)
		}
		return
	}

	if result.SessionName != "" {
		e.sess.Name = result.SessionName
	}

	// The backend may have discarded the session we referenced and
	// created a replacement; adopt it wholesale.
	if result.IsNewSession {
		e.sess = session.State{
			ID:        result.SessionID,
			Name:      result.SessionName,
			StartTime: now,
			PageCount: 1,
		}
		e.logger.Info("session replaced by backend", "session_id", result.SessionID)
	}
}

// lookupTitle resolves the page title best-effort.
func (e *engine) lookupTitle(ctx context.Context, event navigation.Event) string {
	if event.Title != "" {
		return event.Title
	}
	if e.titles == nil {
		return ""
	}

	title, err := e.titles.Title(ctx, event.TabID)
	if err != nil {
		e.logger.Debug("could not get tab title",
			"tab_id", event.TabID,
			"error", err)
		return ""
	}

	return title
}

// syncLiveSession overwrites local session state from the backend's live
// session. Failures leave local state untouched. Callers hold e.mu.
func (e *engine) syncLiveSession(ctx context.Context) bool {
	live, err := e.backend.LiveSession(ctx)
	if err != nil {
		e.logger.Debug("could not sync live session", "error", err)
		return false
	}
	if live == nil {
		return false
	}

	e.sess = session.State{
		ID:        live.ID,
		Name:      live.Title,
		StartTime: time.UnixMilli(live.StartTime),
		PageCount: live.ItemCount,
		Paused:    live.Paused(),
	}

	e.logger.Debug("synced with backend live session", "session_id", live.ID)
	return true
}

// Sync implements Engine.Sync.
func (e *engine) Sync(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.syncLiveSession(ctx)
}

// Pause implements Engine.Pause.
func (e *engine) Pause(ctx context.Context) error {
	return e.setPaused(ctx, true)
}

// Resume implements Engine.Resume.
func (e *engine) Resume(ctx context.Context) error {
	return e.setPaused(ctx, false)
}

// setPaused applies a pause or resume, backend-first with local fallback.
//
// A non-2xx backend response is an explicit rejection and leaves local
// state unchanged; an unreachable backend is treated as optional and the
// state is applied locally.
func (e *engine) setPaused(ctx context.Context, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sess.Active() {
		return ErrNoActiveSession
	}

	var err error
	if paused {
		err = e.backend.PauseSession(ctx, e.sess.ID)
	} else {
		err = e.backend.ResumeSession(ctx, e.sess.ID)
	}

	if err != nil {
		if errors.Is(err, backend.ErrUnexpectedStatus) {
			return err
		}
		e.logger.Debug("backend unreachable, applying pause state locally",
			"paused", paused,
			"error", err)
	}

	e.sess.Paused = paused
	e.logger.Info("session pause state changed",
		"session_id", e.sess.ID,
		"paused", paused)

	return nil
}

// Session implements Engine.Session.
func (e *engine) Session() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		ID:        e.sess.ID,
		Name:      e.sess.Name,
		PageCount: e.sess.PageCount,
		Paused:    e.sess.Paused,
		Enabled:   e.cfg.Enabled,
	}
	if !e.sess.StartTime.IsZero() {
		snap.StartTime = e.sess.StartTime.UnixMilli()
	}

	return snap
}

// Stats implements Engine.Stats.
func (e *engine) Stats() stats.Statistics {
	return e.agg.Stats()
}

// Config implements Engine.Config.
func (e *engine) Config() config.AutoTrackConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cfg
}

// UpdateConfig implements Engine.UpdateConfig.
func (e *engine) UpdateConfig(cfg config.AutoTrackConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasEnabled := e.cfg.Enabled
	e.cfg = cfg
	e.filter = newFilter(cfg)

	switch {
	case cfg.Enabled && !wasEnabled:
		e.logger.Info("auto-tracking started")
	case !cfg.Enabled && wasEnabled:
		e.logger.Info("auto-tracking stopped")
	}
}

// TabClosed implements Engine.TabClosed.
func (e *engine) TabClosed(tabID int) {
	e.tracker.Remove(tabID)
	e.logger.Debug("tab state discarded", "tab_id", tabID)
}
