package playtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/hearts/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends logs to stdout and a file. If logFile is empty, a
// timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "playtest_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the playtest tool.
func ShowHelp() {
	os.Stdout.WriteString(`Hearts Playtest
===============

Plays games against a running hearts server over its websocket and reports
how the rounds went.

Usage:
  go run ./cmd/playtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -games int
        Number of games to play (default 20)
  -workers int
        Number of concurrent players (default CPU cores)
  -hit float
        Probability of clicking a heart (default 0.8)
  -reaction duration
        Delay before clicking a heart (default 250ms)
  -rounds int
        Rounds per game; a timed-out round is replayed (default 1)
  -choice string
        Letter answer after a win: forgive, not_yet or empty (default "forgive")
  -msgpack
        Speak msgpack instead of JSON
  -timeout duration
        HTTP and per-message timeout (default 10s)
  -log string
        Log file for test output (default: playtest_TIMESTAMP.log)
  -verbose
        Log every game
  -help
        Show this help message

Examples:
  # Ten careful players
  go run ./cmd/playtest -games 100 -workers 10 -hit 1

  # Slow, clumsy players over msgpack
  go run ./cmd/playtest -hit 0.3 -reaction 800ms -msgpack
`)
}
