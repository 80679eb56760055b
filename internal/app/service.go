// Package service hosts live game sessions and implements the dependencies
// required by the HTTP API and the websocket handler.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/hearts/internal/adapters/mq/queue"
	workerpool "github.com/okian/hearts/internal/adapters/mq/worker"
	repository "github.com/okian/hearts/internal/adapters/repository"
	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/types"
	"github.com/okian/hearts/pkg/logger"
	"github.com/okian/hearts/pkg/metrics"
)

const (
	defaultMaxSessions = 1000
	defaultInboxSize   = 256
	closeTimeout       = 2 * time.Second
)

// Service owns the session registry. Each session runs its controller on a
// dedicated event loop.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions *repository.MemoryStore[*Session]

	// Configuration
	maxSessions int
	inboxSize   int
	settings    game.Settings
	gameOpts    []game.Option

	// State
	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	roundsStarted  atomic.Int64
	roundsWon      atomic.Int64
	roundsTimedOut atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxSessions caps the number of concurrently open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithInboxSize sets the capacity of each session's inbox.
func WithInboxSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.inboxSize = size
		}
	}
}

// WithGameSettings sets the round tunables used for every session.
func WithGameSettings(settings game.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithGameOptions appends controller options applied to every session after
// the settings.
func WithGameOptions(opts ...game.Option) Option {
	return func(s *Service) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxSessions: defaultMaxSessions,
		inboxSize:   defaultInboxSize,
		settings:    game.DefaultSettings(),
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the session registry. Calling Start on a started service
// is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.sessions = repository.NewMemoryStore[*Session](s.ctx)
	s.started = true
	metrics.UpdateSessionsActive(0)

	s.logger.Info(ctx, "hearts service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Int("inboxSize", s.inboxSize),
		logger.Int("goal", s.settings.Goal),
		logger.Int("durationSeconds", s.settings.Duration),
	)

	return nil
}

// Stop closes every open session and shuts the registry down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping hearts service...")

	for _, rec := range s.sessions.List(ctx) {
		if _, err := s.sessions.Delete(ctx, rec.ID); err != nil {
			continue
		}
		if err := rec.Value.shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "session did not stop cleanly",
				logger.String("sessionID", rec.ID),
				logger.Error(err),
			)
		}
	}

	_ = s.sessions.Close()
	s.cancel()
	s.started = false
	metrics.UpdateSessionsActive(0)

	s.logger.Info(ctx, "hearts service stopped")
}

// Open creates a session whose controller draws onto port. Extra options are
// applied after the service-wide ones.
func (s *Service) Open(ctx context.Context, port game.Port, opts ...game.Option) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrServiceStopped
	}
	if s.sessions.Count(ctx) >= s.maxSessions {
		metrics.RecordSessionRejected()
		metrics.RecordErrorByComponent("service", "too_many_sessions")
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	q := eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.inboxSize),
		eventqueue.WithName("session"),
	)
	loop := workerpool.NewEventLoop(q,
		workerpool.WithName("session-"+id[:8]),
		workerpool.WithLogger(s.logger),
	)
	go loop.Run(s.ctx)

	sess := &Session{id: id, openedAt: time.Now(), loop: loop}

	ctrlOpts := make([]game.Option, 0, len(s.gameOpts)+len(opts)+3)
	ctrlOpts = append(ctrlOpts,
		game.WithSettings(s.settings),
		game.WithHooks(s.hooks()),
		game.WithLogger(s.logger.Named("game").Named(id[:8])),
	)
	ctrlOpts = append(ctrlOpts, s.gameOpts...)
	ctrlOpts = append(ctrlOpts, opts...)

	if err := loop.Do(ctx, func() {
		sess.ctrl = game.NewController(loop, port, ctrlOpts...)
	}); err != nil {
		_ = loop.Shutdown(context.Background())
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if err := s.sessions.Put(ctx, id, sess); err != nil {
		_ = sess.shutdown(context.Background())
		return nil, fmt.Errorf("registering session: %w", err)
	}

	metrics.RecordSessionOpened()
	metrics.UpdateSessionsActive(s.sessions.Count(ctx))
	s.logger.Info(ctx, "session opened", logger.String("sessionID", id))

	return sess, nil
}

// Get returns an open session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrServiceStopped
	}
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

// Snapshot returns the game state of an open session.
func (s *Service) Snapshot(ctx context.Context, id string) (model.GameState, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return model.GameState{}, err
	}
	return sess.Snapshot(ctx)
}

// Close stops a session's round and its loop and removes it from the registry.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrServiceStopped
	}
	sess, err := s.sessions.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	metrics.UpdateSessionsActive(s.sessions.Count(ctx))

	closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()
	if err := sess.shutdown(closeCtx); err != nil {
		s.logger.Warn(ctx, "session did not stop cleanly",
			logger.String("sessionID", id),
			logger.Error(err),
		)
		return err
	}

	s.logger.Info(ctx, "session closed", logger.String("sessionID", id))
	return nil
}

// List returns a summary of every open session, oldest first. Sessions that
// close while being listed are skipped.
func (s *Service) List(ctx context.Context) []types.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil
	}
	recs := s.sessions.List(ctx)
	out := make([]types.SessionInfo, 0, len(recs))
	for _, rec := range recs {
		info, err := rec.Value.Info(ctx)
		if err != nil {
			s.logger.Debug(ctx, "skipping session in listing",
				logger.String("sessionID", rec.ID),
				logger.Error(err),
			)
			continue
		}
		out = append(out, info)
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:        s.started,
		MaxSessions:    s.maxSessions,
		InboxSize:      s.inboxSize,
		Goal:           s.settings.Goal,
		DurationSecs:   s.settings.Duration,
		RoundsStarted:  int(s.roundsStarted.Load()),
		RoundsWon:      int(s.roundsWon.Load()),
		RoundsTimedOut: int(s.roundsTimedOut.Load()),
	}

	if s.started {
		stats.ActiveSessions = s.sessions.Count(context.Background())
		metrics.UpdateSessionsActive(stats.ActiveSessions)
	}

	return stats
}

// Settings returns the round tunables used for new sessions.
func (s *Service) Settings() game.Settings {
	return s.settings
}

// hooks feeds controller events into the service counters and metrics.
func (s *Service) hooks() game.Hooks {
	return game.Hooks{
		Started: func() {
			s.roundsStarted.Add(1)
			metrics.RecordGameStarted()
		},
		Ended: func(outcome model.Phase, _ int, elapsed time.Duration) {
			switch outcome {
			case model.PhaseWon:
				s.roundsWon.Add(1)
			case model.PhaseTimedOut:
				s.roundsTimedOut.Add(1)
			}
			metrics.RecordGameOutcome(string(outcome), elapsed.Seconds())
		},
		Spawned: func(model.Target) {
			metrics.RecordTargetSpawned()
		},
		Resolved: func(why model.Resolution, points int) {
			metrics.RecordTargetResolved(string(why))
			if points > 0 {
				metrics.RecordPointsAwarded(points)
			}
		},
		Cue: func(c model.Cue) {
			metrics.RecordCue(string(c))
		},
		Replied: func(choice string) {
			metrics.RecordLetterResponse(choice)
		},
	}
}
