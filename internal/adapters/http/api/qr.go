// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"sync"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRHandler serves a QR code pointing at the public site.
type QRHandler struct {
	url  string
	once sync.Once
	png  []byte
	err  error
}

// NewQRHandler creates a QR handler for url. An empty url disables it.
func NewQRHandler(url string) *QRHandler {
	return &QRHandler{url: url}
}

// HandleQR handles GET /qr.png requests.
func (h *QRHandler) HandleQR(w http.ResponseWriter, r *http.Request) {
	const op = "api.qr"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.url == "" {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}

	h.once.Do(func() {
		h.png, h.err = qrcode.Encode(h.url, qrcode.Medium, qrSize)
	})
	if h.err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrUnavailable, h.err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.png)
}
