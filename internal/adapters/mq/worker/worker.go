// Package worker runs a session's single-threaded event loop.
//
// All game state of a session is touched only from the loop goroutine.
// Socket readers post tasks; timers created through the loop post their
// callbacks back onto it instead of running them on the timer goroutine.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hearts/internal/adapters/mq/queue"
	"github.com/okian/hearts/internal/domain/sched"
	"github.com/okian/hearts/pkg/logger"
	"github.com/okian/hearts/pkg/metrics"
)

// Queue defines how the loop sends and receives tasks.
type Queue interface {
	Enqueue(ctx context.Context, t queue.Task) bool
	Dequeue(ctx context.Context) <-chan queue.Task
	Close() error
}

// Worker drains a queue until stopped.
type Worker interface {
	// Run starts the loop until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// EventLoop runs posted tasks one at a time and doubles as a sched.Scheduler
// whose callbacks run on the loop.
type EventLoop struct {
	queue Queue
	name  string
	now   func() time.Time

	shutdown     chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
	started      atomic.Bool

	logger logger.Logger
}

var (
	_ Worker          = (*EventLoop)(nil)
	_ sched.Scheduler = (*EventLoop)(nil)
)

// NewEventLoop creates a loop over q with configuration options.
func NewEventLoop(q Queue, opts ...Option) *EventLoop {
	l := &EventLoop{
		queue:    q,
		name:     "loop",
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("loop"),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.name != "loop" {
		l.logger = l.logger.Named(l.name)
	}

	return l
}

// Name returns the loop name.
func (l *EventLoop) Name() string { return l.name }

// Run drains tasks until ctx is canceled, Shutdown is called or the queue
// closes. It must be called at most once.
func (l *EventLoop) Run(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	defer close(l.done)

	// Releases the queue's dequeue goroutine when Run leaves with tasks
	// still queued.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := l.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			l.run(ctx, task)
		}
	}
}

// run executes one task, containing panics so one bad message cannot take
// the session down.
func (l *EventLoop) run(ctx context.Context, task queue.Task) {
	start := time.Now()
	defer func() {
		metrics.RecordTaskLatency(float64(time.Since(start).Microseconds()) / 1000)
		if r := recover(); r != nil {
			metrics.RecordTaskPanic()
			metrics.RecordErrorByComponent("worker", "task_panic")
			metrics.RecordErrorByType("task_panic", "high")
			l.logger.Error(ctx, "task panicked", logger.Any("panic", r))
		}
	}()
	task()
}

// Post queues fn to run on the loop. It returns false if the loop is stopped
// or its inbox is full.
func (l *EventLoop) Post(fn func()) bool {
	select {
	case <-l.shutdown:
		return false
	case <-l.done:
		return false
	default:
	}
	return l.queue.Enqueue(context.Background(), queue.Task(fn))
}

// Do runs fn on the loop and waits for it to finish.
func (l *EventLoop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		if l.Stopped() {
			return ErrStopped
		}
		return ErrBusy
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s: %w", l.name, ctx.Err())
	}
}

// Stopped reports whether Shutdown was called or Run has returned.
func (l *EventLoop) Stopped() bool {
	select {
	case <-l.shutdown:
		return true
	case <-l.done:
		return true
	default:
		return false
	}
}

// Done is closed when Run returns.
func (l *EventLoop) Done() <-chan struct{} { return l.done }

// Shutdown stops the loop, closes its queue and waits for Run to exit.
func (l *EventLoop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() {
		close(l.shutdown)
		if err := l.queue.Close(); err != nil {
			l.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	})

	if !l.started.Load() {
		return nil
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Now returns the loop's wall clock.
func (l *EventLoop) Now() time.Time { return l.now() }

// AfterFunc runs fn on the loop once after d. A stopped timer's callback is
// dropped even if it was already queued.
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) sched.Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		metrics.RecordTimerTask()
		l.postTimer(func() {
			if !t.stopped.CompareAndSwap(false, true) {
				return
			}
			fn()
		})
	})
	return t
}

// Every runs fn on the loop every d until stopped. At most one tick is
// queued at a time; ticks that fire while one is pending are dropped.
func (l *EventLoop) Every(d time.Duration, fn func()) sched.Timer {
	t := &loopTimer{quit: make(chan struct{})}
	if d <= 0 {
		t.stopped.Store(true)
		return t
	}

	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-l.done:
				return
			case <-ticker.C:
				if !t.pending.CompareAndSwap(false, true) {
					continue
				}
				metrics.RecordTimerTask()
				if !l.postTimer(func() {
					t.pending.Store(false)
					if t.stopped.Load() {
						return
					}
					fn()
				}) {
					t.pending.Store(false)
				}
			}
		}
	}()
	return t
}

func (l *EventLoop) postTimer(fn func()) bool {
	if l.Post(fn) {
		return true
	}
	if !l.Stopped() {
		l.logger.Warn(context.Background(), "timer task dropped, inbox full")
	}
	return false
}

// loopTimer is a sched.Timer owned by an EventLoop.
type loopTimer struct {
	stopped  atomic.Bool
	pending  atomic.Bool
	timer    *time.Timer
	quit     chan struct{}
	quitOnce sync.Once
}

func (t *loopTimer) Stop() bool {
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.quit != nil {
		t.quitOnce.Do(func() { close(t.quit) })
	}
	return true
}
