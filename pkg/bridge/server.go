package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mycelica/holerabbit/pkg/logger"
)

// Server serves the message API over HTTP on a local address.
type Server struct {
	srv     *http.Server
	handler *Handler
	logger  logger.Logger
}

// NewServer creates a message API server bound to addr.
func NewServer(addr string, handler *Handler, log logger.Logger) *Server {
	s := &Server{
		handler: handler,
		logger:  log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/message", s.handleMessage)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start runs the listener and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("message API listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleMessage decodes one request, dispatches it, and encodes the
// response.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	response := s.handler.Handle(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Debug("failed to encode response", "action", req.Action, "error", err)
	}
}
