package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/hearts/internal/playtest"
)

// Default configuration constants.
const (
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		games    = flag.Int("games", playtest.DefaultGames, "Number of games to play")
		workers  = flag.Int("workers", runtime.NumCPU(), "Number of concurrent players")
		hitRate  = flag.Float64("hit", playtest.DefaultHitRate, "Probability of clicking a heart")
		reaction = flag.Duration("reaction", playtest.DefaultReaction, "Delay before clicking a heart")
		rounds   = flag.Int("rounds", playtest.DefaultMaxRounds, "Rounds per game; a timed-out round is replayed")
		choice   = flag.String("choice", "forgive", "Letter answer after a win (forgive, not_yet or empty)")
		msgpack  = flag.Bool("msgpack", false, "Speak msgpack instead of JSON")
		timeout  = flag.Duration("timeout", playtest.DefaultTimeout, "HTTP and per-message timeout")
		seed     = flag.Int64("seed", 0, "Seed for click decisions (0 uses the clock)")
		logFile  = flag.String("log", "", "Log file for test output (default: playtest_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Log every game")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		playtest.ShowHelp()
		return
	}

	// Setup logging
	closer, err := playtest.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &playtest.Config{
		BaseURL:   *baseURL,
		Games:     *games,
		Workers:   *workers,
		HitRate:   *hitRate,
		Reaction:  *reaction,
		MaxRounds: *rounds,
		Choice:    *choice,
		Msgpack:   *msgpack,
		Timeout:   *timeout,
		Seed:      *seed,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if _, err := playtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Playtest failed: " + err.Error() + "\n")
		cancel()
		closer.Close()
		os.Exit(1)
	}
}
