package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*storeOptions)

type storeOptions struct {
	metricsUpdateInterval time.Duration
	now                   func() time.Time
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *storeOptions) {
		if interval > 0 {
			o.metricsUpdateInterval = interval
		}
	}
}

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}
