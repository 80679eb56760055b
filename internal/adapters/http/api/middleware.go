package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/hearts/pkg/metrics"
)

// Route labels used on HTTP metrics.
const (
	routeHealth   = "healthz"
	routeStats    = "stats"
	routeSessions = "sessions"
	routeSession  = "session"
	routeCues     = "cues"
	routeQR       = "qr"
)

// Instrument records request count, latency and failures for a route.
func Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		ms := float64(time.Since(began).Milliseconds())
		code := strconv.Itoa(sw.status)
		metrics.RecordHTTPRequest(route, r.Method, code)
		metrics.RecordHTTPRequestDuration(route, r.Method, code, ms)

		if sw.status < http.StatusBadRequest {
			return
		}
		kind, severity := classify(sw.status)
		metrics.RecordErrorByEndpoint(route, r.Method, kind)
		metrics.RecordErrorByType(kind, severity)
		metrics.RecordErrorLatency("http", kind, ms)
	}
}

// classify maps a failing status to an error kind and severity label.
func classify(status int) (kind, severity string) {
	switch {
	case status == http.StatusServiceUnavailable:
		return "unavailable", "high"
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusNotFound:
		return "not_found", "low"
	case status == http.StatusMethodNotAllowed:
		return "bad_method", "low"
	default:
		return "client_error", "medium"
	}
}

// statusWriter remembers the status written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("writing response: %w", err)
	}
	return n, nil
}
