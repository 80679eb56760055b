// Package dedupe drops repeated requests for the same target, such as a
// double click or a resent collect message.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 128

// Deduper remembers recently seen IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it may be submitted again, for example when the
	// request was recorded but could not be delivered.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot struct {
	id   string
	used bool
}

// inMemoryDeduper keeps IDs in a map plus, in bounded mode, a ring of
// insertion order used for eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> ring slot, -1 in unbounded mode
	ring    []slot
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[id] = -1
		d.size.Add(1)
		return false
	}

	// The next slot is either free or holds the oldest ID.
	if old := d.ring[d.next]; old.used {
		delete(d.seen, old.id)
		d.size.Add(-1)
	}
	d.ring[d.next] = slot{id: id, used: true}
	d.seen[id] = d.next
	d.next = (d.next + 1) % d.maxSize
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen set.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	at, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	if at >= 0 {
		d.ring[at] = slot{}
	}
	d.size.Add(-1)
}

// Size returns the current number of remembered IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
