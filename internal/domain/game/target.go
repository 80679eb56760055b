package game

import (
	"time"

	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
)

// TargetState is the lifecycle state of a heart.
type TargetState int

// Heart states. A heart leaves Active at most once.
const (
	TargetActive TargetState = iota
	TargetCollected
	TargetMissed
)

func (s TargetState) String() string {
	switch s {
	case TargetActive:
		return "active"
	case TargetCollected:
		return "collected"
	case TargetMissed:
		return "missed"
	default:
		return "unknown"
	}
}

// Target is one clickable heart.
type Target struct {
	ID        string
	X, Y      float64
	Glyph     string
	CreatedAt time.Time

	seq      uint64
	state    TargetState
	missTime sched.Timer
	sweep    sched.Timer
}

// State returns the heart's lifecycle state.
func (t *Target) State() TargetState { return t.state }

// Active reports whether the heart can still be collected.
func (t *Target) Active() bool { return t.state == TargetActive }

// View returns the presentation model of the heart. bornAt is relative to epoch.
func (t *Target) View(epoch time.Time) model.Target {
	return model.Target{
		ID:       t.ID,
		X:        t.X,
		Y:        t.Y,
		Glyph:    t.Glyph,
		BornAtMs: t.CreatedAt.Sub(epoch).Milliseconds(),
	}
}

// resolve moves an active heart to its final state. It returns false if the
// heart was already resolved.
func (t *Target) resolve(to TargetState) bool {
	if t.state != TargetActive || to == TargetActive {
		return false
	}
	t.state = to
	if t.missTime != nil {
		t.missTime.Stop()
	}
	return true
}
