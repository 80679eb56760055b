package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	ran := false
	if !q.Enqueue(ctx, func() { ran = true }) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	task := <-q.Dequeue(ctx)
	task()
	if !ran {
		t.Error("expected dequeued task to be the enqueued one")
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithBufferSize(1))
	ctx := context.Background()
	noop := func() {}

	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
	if !q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to succeed")
	}

	if q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_RejectsNil(t *testing.T) {
	q := NewInMemoryQueue()
	if q.Enqueue(context.Background(), nil) {
		t.Error("expected nil task to be rejected")
	}
}

func TestInMemoryQueue_Order(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.Enqueue(ctx, func() { got = append(got, i) })
	}

	ch := q.Dequeue(ctx)
	for i := 0; i < 5; i++ {
		(<-ch)()
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", got)
		}
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	producers := 10
	perProducer := 100

	var count atomic.Int64
	done := make(chan bool, producers)
	for i := 0; i < producers; i++ {
		go func() {
			for j := 0; j < perProducer; j++ {
				for !q.Enqueue(ctx, func() { count.Add(1) }) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}()
	}

	consumed := make(chan struct{})
	go func() {
		for task := range q.Dequeue(ctx) {
			task()
		}
		close(consumed)
	}()

	for i := 0; i < producers; i++ {
		<-done
	}
	deadline := time.Now().Add(time.Second)
	for count.Load() < int64(producers*perProducer) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	_ = q.Close()
	<-consumed

	if got := count.Load(); got != int64(producers*perProducer) {
		t.Errorf("expected %d tasks run, got %d", producers*perProducer, got)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()
	noop := func() {}

	if !q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to succeed")
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	if q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to fail after closing")
	}

	ch := q.Dequeue(ctx)
	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				goto channelClosed
			}
		case <-timeout:
			t.Error("expected dequeue channel to be closed within timeout")
			return
		}
	}
channelClosed:

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
