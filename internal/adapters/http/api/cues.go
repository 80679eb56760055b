// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/hearts/internal/domain/model"
)

// CueRenderer renders a sound cue as a WAV file.
type CueRenderer interface {
	WAV(cue model.Cue) ([]byte, error)
}

// CuesHandler serves the sound cues.
type CuesHandler struct {
	renderer CueRenderer
}

// NewCuesHandler creates a new cues handler.
func NewCuesHandler(renderer CueRenderer) *CuesHandler {
	return &CuesHandler{renderer: renderer}
}

// HandleCue handles GET /cues/{cue}.wav requests.
func (h *CuesHandler) HandleCue(w http.ResponseWriter, r *http.Request) {
	const op = "api.cue"
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	if h.renderer == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return
	}

	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/cues/"), ".wav")
	if !ok || !knownCue(model.Cue(name)) {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}

	data, err := h.renderer.WAV(model.Cue(name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

func knownCue(c model.Cue) bool {
	for _, known := range model.Cues() {
		if c == known {
			return true
		}
	}
	return false
}
