package playtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hearts/pkg/logger"
)

// ErrAllGamesFailed is returned when no game reached an outcome.
var ErrAllGamesFailed = errors.New("every game failed")

// Run executes the complete playtest and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	applyDefaults(config)
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting hearts playtest",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", config.Games),
		logger.Int("workers", config.Workers),
		logger.Float64("hitRate", config.HitRate),
		logger.Duration("reaction", config.Reaction),
		logger.Bool("msgpack", config.Msgpack),
		logger.String("logFile", config.LogFile))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Play games concurrently
	playGames(ctx, config, stats)

	// Step 3: Compare with the server's counters
	if server, err := fetchServerStats(ctx, config); err != nil {
		logger.Get().Warn(ctx, "failed to read server stats", logger.Error(err))
	} else {
		logger.Get().Info(ctx, "server statistics",
			logger.Int("activeSessions", server.ActiveSessions),
			logger.Int("roundsStarted", server.RoundsStarted),
			logger.Int("roundsWon", server.RoundsWon),
			logger.Int("roundsTimedOut", server.RoundsTimedOut))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.GamesPlayed > 0 && stats.Failed == stats.GamesPlayed {
		return stats, ErrAllGamesFailed
	}
	logger.Get().Info(ctx, "playtest completed")
	return stats, nil
}

func applyDefaults(c *Config) {
	if c.Games <= 0 {
		c.Games = DefaultGames
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.AreaW <= 0 || c.AreaH <= 0 {
		c.AreaW, c.AreaH = DefaultAreaW, DefaultAreaH
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// playGames runs config.Games games on a pool of config.Workers players.
func playGames(ctx context.Context, config *Config, stats *Stats) {
	jobs := make(chan int, config.Workers)
	results := make(chan Result, config.Workers)

	var played atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(config.Seed + int64(workerID)))
			for game := range jobs {
				res := PlayGame(ctx, config, rng)
				played.Add(1)
				if config.Verbose {
					logger.Get().Info(ctx, "game finished",
						logger.Int("game", game),
						logger.String("outcome", string(res.Outcome)),
						logger.Int("score", res.Score),
						logger.Int("rounds", res.Rounds),
						logger.Duration("duration", res.Duration),
						logger.Any("error", res.Err))
				}
				results <- res
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for g := 0; g < config.Games; g++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- g:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case res, ok := <-results:
			if !ok {
				return
			}
			stats.Add(res)
			if res.Err != nil {
				logger.Get().Warn(ctx, "game failed", logger.Error(res.Err))
			}
		case <-ticker.C:
			logger.Get().Info(ctx, "progress",
				logger.Int64("played", played.Load()),
				logger.Int("games", config.Games))
		}
	}
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var winRate, hitRate float64
	if stats.GamesPlayed > 0 {
		winRate = float64(stats.GamesWon) / float64(stats.GamesPlayed) * PercentageMultiplier
	}
	if stats.Spawned > 0 {
		hitRate = float64(stats.Collects) / float64(stats.Spawned) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("gamesPlayed", stats.GamesPlayed),
		logger.Int("gamesWon", stats.GamesWon),
		logger.Int("timedOut", stats.TimedOut),
		logger.Int("failed", stats.Failed),
		logger.Int("rounds", stats.Rounds),
		logger.Int("spawned", stats.Spawned),
		logger.Int("collects", stats.Collects),
		logger.Int("misses", stats.Misses),
		logger.Int("replies", stats.Replies),
		logger.Duration("minGame", stats.MinGame),
		logger.Duration("avgGame", stats.AvgGame()),
		logger.Duration("maxGame", stats.MaxGame),
		logger.Duration("duration", stats.Duration),
		logger.Float64("winRate", winRate),
		logger.Float64("hitRate", hitRate))
}
