package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/minintup/internal/domain/dedupe"
	"github.com/okian/minintup/internal/domain/record"
)

func event(seq uint64) Event {
	return Event{
		Seq:    seq,
		Key:    dedupe.EventKey{Run: 300000, Event: seq},
		Record: record.Map{"EventNumber": seq},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, event(1)) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Seq != 1 || got.Key.Event != 1 {
		t.Errorf("expected event 1, got %+v", got)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, event(1)) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, event(2)) {
		t.Error("expected enqueue to succeed")
	}

	if q.Enqueue(ctx, event(3)) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_PutBlocksUntilRoom(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Put(ctx, event(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, event(2)) }()

	select {
	case err := <-done:
		t.Fatalf("expected Put to block, returned %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	ch := q.Dequeue(ctx)
	if got := <-ch; got.Seq != 1 {
		t.Errorf("expected seq 1, got %d", got.Seq)
	}
	if err := <-done; err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got := <-ch; got.Seq != 2 {
		t.Errorf("expected seq 2, got %d", got.Seq)
	}
}

func TestInMemoryQueue_PutCancelled(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())

	if err := q.Put(ctx, event(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	if err := q.Put(ctx, event(2)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_CloseReleasesPut(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Put(ctx, event(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, event(2)) }()
	time.Sleep(10 * time.Millisecond)

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Put still blocked after Close")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(16))
	ctx := context.Background()
	numProducers := 8
	numEvents := 100

	var consumed sync.WaitGroup
	consumed.Add(1)
	count := 0
	go func() {
		defer consumed.Done()
		for range q.Dequeue(ctx) {
			count++
		}
	}()

	var produced sync.WaitGroup
	for i := 0; i < numProducers; i++ {
		produced.Add(1)
		go func(id int) {
			defer produced.Done()
			for j := 0; j < numEvents; j++ {
				if err := q.Put(ctx, event(uint64(id*numEvents+j))); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(i)
	}

	produced.Wait()
	_ = q.Close()
	consumed.Wait()

	if count != numProducers*numEvents {
		t.Errorf("expected %d events, got %d", numProducers*numEvents, count)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, event(1)) || !q.Enqueue(ctx, event(2)) {
		t.Fatal("expected enqueue to succeed")
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

	if q.Enqueue(ctx, event(3)) {
		t.Error("expected enqueue to fail after closing")
	}
	if err := q.Put(ctx, event(3)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Queued events drain before the channel closes.
	var seqs []uint64
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				if len(seqs) != 2 {
					t.Errorf("expected 2 drained events, got %v", seqs)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			seqs = append(seqs, e.Seq)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
