// Package types contains common types used across the application
package types

import "time"

// SessionInfo is the summary of a live session returned by the HTTP API.
type SessionInfo struct {
	ID            string    `json:"id"`
	OpenedAt      time.Time `json:"opened_at"`
	Phase         string    `json:"phase"`
	Score         int       `json:"score"`
	Goal          int       `json:"goal"`
	TimeRemaining int       `json:"time_remaining"`
	Targets       int       `json:"targets"`
}

// Stats is the service summary returned by GET /stats.
type Stats struct {
	Started        bool `json:"started"`
	ActiveSessions int  `json:"active_sessions"`
	MaxSessions    int  `json:"max_sessions"`
	InboxSize      int  `json:"inbox_size"`
	Goal           int  `json:"goal"`
	DurationSecs   int  `json:"duration_seconds"`
	RoundsStarted  int  `json:"rounds_started"`
	RoundsWon      int  `json:"rounds_won"`
	RoundsTimedOut int  `json:"rounds_timed_out"`
}
