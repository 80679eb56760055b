package playtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/hearts/internal/domain/types"
	"github.com/okian/hearts/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// closeBody drains and closes a response body.
func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := newHTTPClient(config.Timeout).Get(ctx, endpoint(config.BaseURL, "/healthz"))
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer closeBody(resp)

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchServerStats reads the service's own round counters.
func fetchServerStats(ctx context.Context, config *Config) (types.Stats, error) {
	var stats types.Stats

	resp, err := newHTTPClient(config.Timeout).Get(ctx, endpoint(config.BaseURL, "/stats"))
	if err != nil {
		return stats, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return stats, fmt.Errorf("stats request failed with status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return stats, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

func endpoint(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
