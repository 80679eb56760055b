package worker

import (
	"time"

	"github.com/okian/hearts/pkg/logger"
)

// Option applies a configuration option to the EventLoop.
type Option func(*EventLoop)

// WithName sets the loop name for identification and logging.
func WithName(name string) Option {
	return func(l *EventLoop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(logger logger.Logger) Option {
	return func(l *EventLoop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the wall clock reported by Now.
func WithClock(now func() time.Time) Option {
	return func(l *EventLoop) {
		if now != nil {
			l.now = now
		}
	}
}
