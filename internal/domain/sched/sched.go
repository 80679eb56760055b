// Package sched defines the timer contract the game core runs on.
//
// Implementations must deliver every callback on the goroutine that owns the
// game session, never concurrently with another callback or with an input
// handler. The production implementation is the per-session event loop in
// internal/adapters/mq/worker; tests use Manual.
package sched

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running if it has not run yet.
	// For repeating timers it cancels all future runs. It reports whether
	// the call stopped a pending timer and is safe to call more than once.
	Stop() bool
}

// Scheduler runs callbacks after a delay or on an interval.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time

	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn every d until the returned timer is stopped.
	Every(d time.Duration, fn func()) Timer
}
