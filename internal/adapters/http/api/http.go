// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	StatsProvider
}

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	cuesHandler     *CuesHandler
	qrHandler       *QRHandler
	socket          http.Handler
}

// ServerOption configures optional routes.
type ServerOption func(*Server)

// WithCues serves /cues/{cue}.wav from renderer.
func WithCues(renderer CueRenderer) ServerOption {
	return func(s *Server) {
		s.cuesHandler = NewCuesHandler(renderer)
	}
}

// WithPublicURL serves /qr.png pointing at url.
func WithPublicURL(url string) ServerOption {
	return func(s *Server) {
		s.qrHandler = NewQRHandler(url)
	}
}

// WithSocket mounts the game websocket at /ws.
func WithSocket(h http.Handler) ServerOption {
	return func(s *Server) {
		s.socket = h
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
		cuesHandler:     NewCuesHandler(nil),
		qrHandler:       NewQRHandler(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", Instrument(routeHealth, s.healthHandler.HandleHealth))
	mux.HandleFunc("/stats", Instrument(routeStats, s.statsHandler.HandleStats))
	mux.HandleFunc("/sessions", Instrument(routeSessions, s.sessionsHandler.HandleList))
	mux.HandleFunc("/sessions/", Instrument(routeSession, s.sessionsHandler.HandleSession))
	mux.HandleFunc("/cues/", Instrument(routeCues, s.cuesHandler.HandleCue))
	mux.HandleFunc("/qr.png", Instrument(routeQR, s.qrHandler.HandleQR))
	if s.socket != nil {
		// Not wrapped: the upgrade needs the raw ResponseWriter to hijack.
		mux.Handle("/ws", s.socket)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError translates a dependency error into a status code.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case isUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// isNotFound allows the API to translate upstream not-found errors to 404.
// This stays generic to avoid tight coupling with specific packages.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "closed")
}

// isUnavailable reports upstream errors that a retry may fix.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not running") || strings.Contains(msg, "inbox full")
}
