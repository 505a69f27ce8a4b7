package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycelica/holerabbit/pkg/backend"
	"github.com/mycelica/holerabbit/pkg/config"
	"github.com/mycelica/holerabbit/pkg/logger"
	"github.com/mycelica/holerabbit/pkg/navigation"
	"github.com/mycelica/holerabbit/pkg/recorder"
)

// stubBackend implements the backend.Client interface for bridge tests.
type stubBackend struct {
	statusErr  error
	live       *backend.LiveSession
	captured   []*backend.CaptureRequest
	captureErr error
	searchRaw  string
	searchErr  error
	pauseErr   error
}

func (s *stubBackend) LiveSession(ctx context.Context) (*backend.LiveSession, error) {
	return s.live, nil
}

func (s *stubBackend) RecordVisit(ctx context.Context, visit *backend.Visit) (*backend.VisitResult, error) {
	return &backend.VisitResult{}, nil
}

func (s *stubBackend) PauseSession(ctx context.Context, sessionID string) error {
	return s.pauseErr
}

func (s *stubBackend) ResumeSession(ctx context.Context, sessionID string) error {
	return nil
}

func (s *stubBackend) Capture(ctx context.Context, req *backend.CaptureRequest) (map[string]interface{}, error) {
	if s.captureErr != nil {
		return nil, s.captureErr
	}
	s.captured = append(s.captured, req)
	return map[string]interface{}{"node_id": "n-1"}, nil
}

func (s *stubBackend) Search(ctx context.Context, query string) (json.RawMessage, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return json.RawMessage(s.searchRaw), nil
}

func (s *stubBackend) Status(ctx context.Context) error {
	return s.statusErr
}

func trackingConfig(enabled bool) config.AutoTrackConfig {
	return config.AutoTrackConfig{
		Enabled:           enabled,
		AllowedDomains:    []string{},
		ExcludedDomains:   []string{},
		SessionGapMinutes: 30,
	}
}

func newTestHandler(t *testing.T, stub *stubBackend, enabled bool) (*Handler, recorder.Engine, config.Store) {
	t.Helper()

	engine := recorder.New(recorder.Config{AutoTrack: trackingConfig(enabled)}, stub, logger.Noop())

	store, err := config.NewStore(config.StoreConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	}, logger.Noop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewHandler(engine, stub, store, logger.Noop()), engine, store
}

func TestStatusDisconnected(t *testing.T) {
	stub := &stubBackend{statusErr: errors.New("connection refused")}
	h, _, _ := newTestHandler(t, stub, true)

	resp := h.Handle(context.Background(), Request{Action: ActionStatus})

	status, ok := resp.(StatusResponse)
	require.True(t, ok)
	assert.False(t, status.Connected)
	assert.Nil(t, status.Session)
}

func TestStatusConnectedSyncsLiveSession(t *testing.T) {
	stub := &stubBackend{
		live: &backend.LiveSession{ID: "backend-sess", Title: "Rabbit holes", ItemCount: 4},
	}
	h, _, _ := newTestHandler(t, stub, true)

	resp := h.Handle(context.Background(), Request{Action: ActionStatus})

	status, ok := resp.(StatusResponse)
	require.True(t, ok)
	assert.True(t, status.Connected)
	assert.True(t, status.AutoTrack)
	require.NotNil(t, status.Session)
	assert.Equal(t, "backend-sess", status.Session.ID)
	assert.Equal(t, 4, status.Session.PageCount)
}

func TestStatusDisabledSkipsSync(t *testing.T) {
	stub := &stubBackend{
		live: &backend.LiveSession{ID: "backend-sess"},
	}
	h, _, _ := newTestHandler(t, stub, false)

	resp := h.Handle(context.Background(), Request{Action: ActionStatus})

	status, ok := resp.(StatusResponse)
	require.True(t, ok)
	assert.True(t, status.Connected)
	assert.False(t, status.AutoTrack)
	require.NotNil(t, status.Session)
	assert.Empty(t, status.Session.ID, "disabled tracking must not adopt the live session")
}

func TestGetConfig(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)

	resp := h.Handle(context.Background(), Request{Action: ActionGetConfig})

	payload, ok := resp.(ConfigPayload)
	require.True(t, ok)
	require.NotNil(t, payload.AutoTrack)
	assert.True(t, payload.AutoTrack.Enabled)
	assert.Equal(t, float64(30), payload.AutoTrack.SessionGapMinutes)
}

func TestSetConfigAppliesAndPersists(t *testing.T) {
	h, engine, store := newTestHandler(t, &stubBackend{}, false)

	newCfg := config.AutoTrackConfig{
		Enabled:           true,
		AllowedDomains:    []string{"wikipedia.org"},
		SessionGapMinutes: 15,
	}

	resp := h.Handle(context.Background(), Request{
		Action: ActionSetConfig,
		Config: &ConfigPayload{AutoTrack: &newCfg},
	})

	result, ok := resp.(Result)
	require.True(t, ok)
	assert.True(t, result.Success)

	applied := engine.Config()
	assert.True(t, applied.Enabled)
	assert.Equal(t, float64(15), applied.SessionGapMinutes)

	persisted, err := store.LoadAutoTrack()
	require.NoError(t, err)
	assert.True(t, persisted.Enabled)
	assert.Equal(t, float64(15), persisted.SessionGapMinutes)
}

func TestSetConfigMissingPayload(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)

	resp := h.Handle(context.Background(), Request{Action: ActionSetConfig})

	result, ok := resp.(Result)
	require.True(t, ok)
	assert.False(t, result.Success)
}

func TestPauseWithoutSession(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)

	resp := h.Handle(context.Background(), Request{Action: ActionPause})

	result, ok := resp.(PauseResult)
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.Equal(t, "no active session", result.Error)
}

func TestPauseAndResumeWithSession(t *testing.T) {
	stub := &stubBackend{}
	h, engine, _ := newTestHandler(t, stub, true)

	engine.RecordVisit(context.Background(), navigation.Event{
		TabID:     1,
		URL:       "https://en.wikipedia.org/wiki/Cat",
		Timestamp: time.Now(),
	})

	resp := h.Handle(context.Background(), Request{Action: ActionPause})
	result, ok := resp.(PauseResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.True(t, result.Paused)

	resp = h.Handle(context.Background(), Request{Action: ActionResume})
	result, ok = resp.(PauseResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.False(t, result.Paused)
}

func TestCapture(t *testing.T) {
	stub := &stubBackend{}
	h, _, _ := newTestHandler(t, stub, true)

	resp := h.Handle(context.Background(), Request{
		Action: ActionCapture,
		Data: &backend.CaptureRequest{
			Title: "Cat - Wikipedia",
			URL:   "https://en.wikipedia.org/wiki/Cat",
		},
	})

	result, ok := resp.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "http", result["method"])
	assert.Equal(t, "n-1", result["node_id"])

	require.Len(t, stub.captured, 1)
	assert.NotZero(t, stub.captured[0].Timestamp, "capture timestamp must default to now")
}

func TestCaptureBackendFailure(t *testing.T) {
	stub := &stubBackend{captureErr: errors.New("connection refused")}
	h, _, _ := newTestHandler(t, stub, true)

	resp := h.Handle(context.Background(), Request{
		Action: ActionCapture,
		Data:   &backend.CaptureRequest{URL: "https://en.wikipedia.org/wiki/Cat"},
	})

	result, ok := resp.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "connection refused")
}

func TestSearchPassthrough(t *testing.T) {
	stub := &stubBackend{searchRaw: `{"results":[{"id":1}]}`}
	h, _, _ := newTestHandler(t, stub, true)

	resp := h.Handle(context.Background(), Request{Action: ActionSearch, Query: "cats"})

	raw, ok := resp.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"results":[{"id":1}]}`, string(raw))
}

func TestSearchFailure(t *testing.T) {
	stub := &stubBackend{searchErr: errors.New("connection refused")}
	h, _, _ := newTestHandler(t, stub, true)

	resp := h.Handle(context.Background(), Request{Action: ActionSearch, Query: "cats"})

	result, ok := resp.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, result["error"], "connection refused")
}

func TestNavigationSubframeIgnored(t *testing.T) {
	h, engine, _ := newTestHandler(t, &stubBackend{}, true)

	resp := h.Handle(context.Background(), Request{
		Action: ActionNavigation,
		Event:  &NavigationPayload{TabID: 1, URL: "https://en.wikipedia.org/wiki/Cat", FrameID: 2},
	})

	result, ok := resp.(Result)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, 0, engine.Stats().TotalVisits)
}

func TestNavigationNonWebSchemeIgnored(t *testing.T) {
	h, engine, _ := newTestHandler(t, &stubBackend{}, true)

	h.Handle(context.Background(), Request{
		Action: ActionNavigation,
		Event:  &NavigationPayload{TabID: 1, URL: "about:blank"},
	})

	assert.Equal(t, 0, engine.Stats().TotalVisits)
}

func TestUnknownAction(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)

	resp := h.Handle(context.Background(), Request{Action: "doSomething"})

	result, ok := resp.(Result)
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "doSomething")
}

func TestHandleMessageHTTP(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)
	srv := NewServer("127.0.0.1:0", h, logger.Noop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/message",
		strings.NewReader(`{"action":"getSession"}`))

	srv.handleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap recorder.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.Enabled)
	assert.Empty(t, snap.ID)
}

func TestHandleMessageRejectsBadJSON(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)
	srv := NewServer("127.0.0.1:0", h, logger.Noop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader("{"))

	srv.handleMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMessageRejectsGet(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubBackend{}, true)
	srv := NewServer("127.0.0.1:0", h, logger.Noop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/message", nil)

	srv.handleMessage(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
