package playtest

import "time"

// Config holds configuration for a playtest run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Games     int           // Number of games to play
	Workers   int           // Number of concurrent players
	HitRate   float64       // Probability of clicking a spawned heart
	Reaction  time.Duration // Delay between a spawn and the click
	Choice    string        // Letter answer sent after a win; empty skips it
	Msgpack   bool          // Speak msgpack instead of JSON
	Timeout   time.Duration // HTTP request and per-message timeout
	LogFile   string        // Log file for test output
	Verbose   bool          // Log every game
	AreaW     float64       // Reported play area width
	AreaH     float64       // Reported play area height
	MaxRounds int           // Rounds per game before giving up; a timed-out round is retried
	Seed      int64         // Seed for click decisions; 0 picks one from the clock
}

// Outcome of one game.
type Outcome string

// Game outcomes.
const (
	OutcomeWon      Outcome = "won"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeFailed   Outcome = "failed"
)

// Result is what one bot saw during a game.
type Result struct {
	Outcome  Outcome
	Rounds   int
	Score    int
	Spawned  int
	Collects int
	Misses   int
	Replied  bool
	Duration time.Duration
	Err      error
}

// Stats holds run statistics.
type Stats struct {
	GamesPlayed int
	GamesWon    int
	TimedOut    int
	Failed      int
	Rounds      int
	Spawned     int
	Collects    int
	Misses      int
	Replies     int
	MinGame     time.Duration
	MaxGame     time.Duration
	TotalGame   time.Duration
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// Add folds one game result into the totals.
func (s *Stats) Add(r Result) {
	s.GamesPlayed++
	switch r.Outcome {
	case OutcomeWon:
		s.GamesWon++
	case OutcomeTimedOut:
		s.TimedOut++
	default:
		s.Failed++
		return
	}
	s.Rounds += r.Rounds
	s.Spawned += r.Spawned
	s.Collects += r.Collects
	s.Misses += r.Misses
	if r.Replied {
		s.Replies++
	}
	s.TotalGame += r.Duration
	if s.MinGame == 0 || r.Duration < s.MinGame {
		s.MinGame = r.Duration
	}
	if r.Duration > s.MaxGame {
		s.MaxGame = r.Duration
	}
}

// AvgGame is the mean duration of completed games.
func (s *Stats) AvgGame() time.Duration {
	done := s.GamesWon + s.TimedOut
	if done == 0 {
		return 0
	}
	return s.TotalGame / time.Duration(done)
}
