package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string](ctx)
	defer store.Close()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Put(ctx, "s1", "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "first" {
		t.Errorf("expected first, got %q", got)
	}

	if err := store.Put(ctx, "s1", "again"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if err := store.Put(ctx, "", "x"); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	removed, err := store.Delete(ctx, "s1")
	if err != nil || removed != "first" {
		t.Errorf("expected to delete first, got %q, %v", removed, err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(100, 0)
	tick := 0
	store := NewMemoryStore[int](ctx, WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	defer store.Close()

	for i := 0; i < 5; i++ {
		if err := store.Put(ctx, fmt.Sprintf("s%d", i), i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := store.Delete(ctx, "s2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := store.List(ctx)
	want := []int{0, 1, 3, 4}
	if len(list) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(list))
	}
	for i, rec := range list {
		if rec.Value != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], rec.Value)
		}
		if i > 0 && !rec.Created.After(list[i-1].Created) {
			t.Errorf("expected records oldest first")
		}
	}

	// Callers may not mutate the published snapshot.
	list[0].Value = 99
	if again := store.List(ctx); again[0].Value != 0 {
		t.Errorf("expected snapshot to be isolated from callers")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[int](ctx, WithMetricsUpdateInterval(time.Millisecond))
	defer store.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("g%d-%d", g, i)
				_ = store.Put(ctx, id, i)
				_, _ = store.Get(ctx, id)
				_ = store.List(ctx)
				if i%2 == 0 {
					_, _ = store.Delete(ctx, id)
				}
			}
		}(g)
	}
	wg.Wait()

	if count := store.Count(ctx); count != 400 {
		t.Errorf("expected 400 records, got %d", count)
	}
	if n := len(store.List(ctx)); n != 400 {
		t.Errorf("expected snapshot of 400, got %d", n)
	}
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore[int](context.Background())
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}
