package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mycelica/holerabbit/pkg/logger"
)

// Client talks to the Mycelica backend.
type Client interface {
	// LiveSession fetches the backend's authoritative live session.
	//
	// Returns:
	//   - The live session, or nil if the backend reports none
	//   - Error on network failure, non-2xx status, or a bad payload
	LiveSession(ctx context.Context) (*LiveSession, error)

	// RecordVisit reports a visit.
	//
	// Returns the backend's visit result, which may carry a session
	// name or declare a replacement session.
	RecordVisit(ctx context.Context, visit *Visit) (*VisitResult, error)

	// PauseSession pauses the given backend session.
	PauseSession(ctx context.Context, sessionID string) error

	// ResumeSession resumes the given backend session.
	ResumeSession(ctx context.Context, sessionID string) error

	// Capture stores a manual capture and returns the backend's
	// response fields.
	Capture(ctx context.Context, req *CaptureRequest) (map[string]interface{}, error)

	// Search runs a query and returns the backend's JSON verbatim.
	Search(ctx context.Context, query string) (json.RawMessage, error)

	// Status probes backend connectivity.
	Status(ctx context.Context) error
}

// client implements the Client interface over net/http.
type client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// New creates a backend client.
//
// Parameters:
//   - cfg: Client configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Client
//   - Error if the configuration is invalid
func New(cfg Config, log logger.Logger) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}

	return &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}, nil
}

// LiveSession implements Client.LiveSession.
func (c *client) LiveSession(ctx context.Context) (*LiveSession, error) {
	body, err := c.get(ctx, "/holerabbit/live")
	if err != nil {
		return nil, err
	}

	var resp liveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode live session: %w", err)
	}

	return resp.Session, nil
}

// RecordVisit implements Client.RecordVisit.
func (c *client) RecordVisit(ctx context.Context, visit *Visit) (*VisitResult, error) {
	body, err := c.postJSON(ctx, "/holerabbit/visit", visit)
	if err != nil {
		return nil, err
	}

	var result VisitResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode visit result: %w", err)
	}

	return &result, nil
}

// PauseSession implements Client.PauseSession.
func (c *client) PauseSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	_, err := c.postJSON(ctx, "/holerabbit/session/"+url.PathEscape(sessionID)+"/pause", nil)
	return err
}

// ResumeSession implements Client.ResumeSession.
func (c *client) ResumeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	_, err := c.postJSON(ctx, "/holerabbit/session/"+url.PathEscape(sessionID)+"/resume", nil)
	return err
}

// Capture implements Client.Capture.
func (c *client) Capture(ctx context.Context, req *CaptureRequest) (map[string]interface{}, error) {
	body, err := c.postJSON(ctx, "/capture", req)
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{})
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode capture result: %w", err)
		}
	}

	return result, nil
}

// Search implements Client.Search.
func (c *client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}

// Status implements Client.Status.
func (c *client) Status(ctx context.Context) error {
	_, err := c.get(ctx, "/status")
	return err
}

// get performs a GET against the backend and returns the response body.
func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(req)
}

// postJSON performs a POST with an optional JSON body and returns the
// response body.
func (c *client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

// do executes a request, enforcing the 2xx contract.
func (c *client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL.Path)
	}

	return body, nil
}
