package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	workerpool "github.com/okian/hearts/internal/adapters/mq/worker"
	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/types"
)

// Session is one player's game: a controller confined to its own event loop.
type Session struct {
	id       string
	openedAt time.Time
	loop     *workerpool.EventLoop
	ctrl     *game.Controller
	closed   atomic.Bool
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// OpenedAt returns when the session was opened.
func (s *Session) OpenedAt() time.Time { return s.openedAt }

// Done is closed once the session's loop has exited.
func (s *Session) Done() <-chan struct{} { return s.loop.Done() }

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool { return s.closed.Load() || s.loop.Stopped() }

// Do queues fn to run against the controller on the session loop. It does not
// wait for fn to run.
func (s *Session) Do(fn func(c *game.Controller)) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	if !s.loop.Post(func() { fn(s.ctrl) }) {
		if s.Closed() {
			return ErrSessionClosed
		}
		return ErrSessionBusy
	}
	return nil
}

// Call runs fn on the session loop and waits for it to finish.
func (s *Session) Call(ctx context.Context, fn func(c *game.Controller)) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	err := s.loop.Do(ctx, func() { fn(s.ctrl) })
	switch {
	case errors.Is(err, workerpool.ErrStopped):
		return ErrSessionClosed
	case errors.Is(err, workerpool.ErrBusy):
		return ErrSessionBusy
	}
	return err
}

// Snapshot returns the game state as seen from the loop.
func (s *Session) Snapshot(ctx context.Context) (model.GameState, error) {
	var st model.GameState
	err := s.Call(ctx, func(c *game.Controller) { st = c.Snapshot() })
	return st, err
}

// Info summarizes the session for listings.
func (s *Session) Info(ctx context.Context) (types.SessionInfo, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return types.SessionInfo{}, err
	}
	return types.SessionInfo{
		ID:            s.id,
		OpenedAt:      s.openedAt,
		Phase:         string(st.Phase),
		Score:         st.Score,
		Goal:          st.Goal,
		TimeRemaining: st.TimeRemaining,
		Targets:       len(st.Targets),
	}, nil
}

// shutdown stops the controller's timers and the loop. Safe to call repeatedly.
func (s *Session) shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.ctrl != nil {
		_ = s.loop.Do(ctx, s.ctrl.Close)
	}
	return s.loop.Shutdown(ctx)
}
