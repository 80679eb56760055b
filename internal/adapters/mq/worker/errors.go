package worker

import "errors"

// Sentinel kinds for loop errors.
var (
	ErrStopped = errors.New("event loop stopped")
	ErrBusy    = errors.New("event loop inbox full")
)
