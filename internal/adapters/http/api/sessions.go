// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/types"
)

// SessionDependencies defines the interface for session inspection.
type SessionDependencies interface {
	List(ctx context.Context) []types.SessionInfo
	Snapshot(ctx context.Context, id string) (model.GameState, error)
	Close(ctx context.Context, id string) error
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionsResponse mirrors the OpenAPI schema for GET /sessions.
type sessionsResponse struct {
	Sessions []types.SessionInfo `json:"sessions"`
	Count    int                 `json:"count"`
}

// HandleList handles GET /sessions requests.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	list := h.deps.List(r.Context())
	if list == nil {
		list = []types.SessionInfo{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: list, Count: len(list)})
}

// HandleSession handles GET and DELETE /sessions/{id} requests.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"
	// Extract path parameter after /sessions/
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, err := h.deps.Snapshot(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	case http.MethodDelete:
		if err := h.deps.Close(r.Context(), id); err != nil {
			writeUpstreamError(w, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}
