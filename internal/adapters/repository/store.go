// Package repository keeps the live session registry.
package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hearts/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// Record is one stored value with its bookkeeping.
type Record[T any] struct {
	ID      string
	Value   T
	Created time.Time
	seq     uint64
}

// Store provides read/write access to live records keyed by ID.
type Store[T any] interface {
	// Put adds a record. Returns ErrExists if the ID is taken.
	Put(ctx context.Context, id string, v T) error

	// Get returns the record value. Returns ErrNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes and returns a record. Returns ErrNotFound if the ID is unknown.
	Delete(ctx context.Context, id string) (T, error)

	// List returns every record, oldest first.
	List(ctx context.Context) []Record[T]

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}

// Snapshot is an immutable view of the store published after each write.
type Snapshot[T any] struct {
	Records []Record[T]
}

// MemoryStore is a map-backed Store. Reads of the full listing go through an
// atomically published snapshot so they never contend with writers.
type MemoryStore[T any] struct {
	mu   sync.RWMutex
	byID map[string]Record[T]
	seq  uint64
	opts storeOptions

	snapshot atomic.Pointer[Snapshot[T]]

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store[int] = (*MemoryStore[int])(nil)

// NewMemoryStore constructs a store and starts its metrics updater, which
// stops when ctx is done or Close is called.
func NewMemoryStore[T any](ctx context.Context, opts ...Option) *MemoryStore[T] {
	s := &MemoryStore[T]{
		byID: make(map[string]Record[T]),
		opts: storeOptions{
			metricsUpdateInterval: defaultMetricsUpdateInterval,
			now:                   time.Now,
		},
		stopChan: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(&s.opts)
	}

	s.snapshot.Store(&Snapshot[T]{})
	metrics.UpdateStoreRecords(0)
	s.startMetricsUpdater(ctx)

	return s
}

// Put implements Store.Put.
func (s *MemoryStore[T]) Put(ctx context.Context, id string, v T) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; ok {
		metrics.RecordErrorByComponent("repository", "duplicate_id")
		return ErrExists
	}
	s.seq++
	s.byID[id] = Record[T]{ID: id, Value: v, Created: s.opts.now(), seq: s.seq}
	s.publishSnapshotLocked()
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return rec.Value, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore[T]) Delete(ctx context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	delete(s.byID, id)
	s.publishSnapshotLocked()
	return rec.Value, nil
}

// List implements Store.List from the latest snapshot.
func (s *MemoryStore[T]) List(ctx context.Context) []Record[T] {
	snap := s.snapshot.Load()
	out := make([]Record[T], len(snap.Records))
	copy(out, snap.Records)
	return out
}

// Count implements Store.Count.
func (s *MemoryStore[T]) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close stops the background metrics updater.
func (s *MemoryStore[T]) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// publishSnapshotLocked must be called with s.mu held.
func (s *MemoryStore[T]) publishSnapshotLocked() {
	records := make([]Record[T], 0, len(s.byID))
	for _, rec := range s.byID {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	s.snapshot.Store(&Snapshot[T]{Records: records})
	metrics.UpdateStoreRecords(len(records))
}

// startMetricsUpdater starts a background goroutine that updates store metrics.
func (s *MemoryStore[T]) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoreRecords(s.Count(ctx))
			}
		}
	}()
}
