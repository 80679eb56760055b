package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/hearts/pkg/metrics"
)

// HealthHandler serves GET /healthz as a Prometheus scrape of the service
// registry. A successful scrape doubles as the liveness signal.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a health handler over the metrics registry.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "bad_method", nil)
		return
	}
	h.metrics.ServeHTTP(w, r)
}
