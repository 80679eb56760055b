package game

import (
	"time"

	"github.com/okian/hearts/internal/domain/sched"
)

// Clock is the whole-second round countdown. Remaining never goes below zero
// and the expiry callback runs at most once per Start.
type Clock struct {
	sched    sched.Scheduler
	total    int
	step     time.Duration
	onTick   func(remaining int)
	onExpire func()

	remaining int
	ticker    sched.Timer
}

// NewClock creates a stopped clock at total seconds.
func NewClock(s sched.Scheduler, total int, step time.Duration, onTick func(int), onExpire func()) *Clock {
	if total < 0 {
		total = 0
	}
	if step <= 0 {
		step = time.Second
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Clock{
		sched:     s,
		total:     total,
		step:      step,
		onTick:    onTick,
		onExpire:  onExpire,
		remaining: total,
	}
}

// Start begins counting down from the current remaining time. A running clock
// is left alone.
func (c *Clock) Start() {
	if c.ticker != nil {
		return
	}
	c.ticker = c.sched.Every(c.step, c.tick)
}

// Stop halts the countdown. Safe to call repeatedly.
func (c *Clock) Stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

// Reset stops the clock and restores the full duration.
func (c *Clock) Reset() {
	c.Stop()
	c.remaining = c.total
}

// Remaining returns the seconds left.
func (c *Clock) Remaining() int { return c.remaining }

// Total returns the configured duration in seconds.
func (c *Clock) Total() int { return c.total }

// Running reports whether the countdown is active.
func (c *Clock) Running() bool { return c.ticker != nil }

func (c *Clock) tick() {
	if c.ticker == nil {
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	c.onTick(c.remaining)
	if c.remaining == 0 {
		c.Stop()
		c.onExpire()
	}
}
