package playtest

import "time"

// Defaults for a playtest run.
const (
	DefaultGames     = 20
	DefaultHitRate   = 0.8
	DefaultReaction  = 250 * time.Millisecond
	DefaultTimeout   = 10 * time.Second
	DefaultAreaW     = 360
	DefaultAreaH     = 420
	DefaultMaxRounds = 1
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	progressInterval     = time.Second
	writeWait            = 5 * time.Second
)
