package sched

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. Due callbacks run on
// the goroutine calling Advance, in deadline order; ties fire in the order
// the timers were created.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m      *Manual
	at     time.Time
	every  time.Duration
	fn     func()
	seq    uint64
	active bool
}

// NewManual creates a manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn once after d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every schedules fn every d. A non-positive d yields a stopped timer.
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		return &manualTimer{m: m}
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), every: every, fn: fn, seq: m.seq, active: true}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward by d, firing every callback that falls due.
// Callbacks scheduled by other callbacks fire too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			next.active = false
			m.remove(next)
		}
		fn := next.fn
		m.mu.Unlock()

		fn()
	}
}

// Pending returns the number of scheduled timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// nextDue must be called with m.mu held.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		a, b := m.timers[i], m.timers[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	if first := m.timers[0]; !first.at.After(target) {
		return first
	}
	return nil
}

// remove must be called with m.mu held.
func (m *Manual) remove(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	if t.m == nil {
		return false
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if !t.active {
		return false
	}
	t.active = false
	t.m.remove(t)
	return true
}
