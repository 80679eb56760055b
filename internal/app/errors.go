package service

import "errors"

// Sentinel kinds for session errors.
var (
	ErrTooManySessions = errors.New("too many open sessions")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionBusy     = errors.New("session inbox full")
	ErrServiceStopped  = errors.New("service not running")
)
