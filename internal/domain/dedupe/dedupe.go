// Package dedupe suppresses repeated events in an input stream.
package dedupe

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/minintup/internal/domain/record"
)

// EventKey identifies an event: the run and the event number within it.
type EventKey struct {
	Run   uint32
	Event uint64
}

// String formats the key as run:event.
func (k EventKey) String() string {
	return fmt.Sprintf("%d:%d", k.Run, k.Event)
}

// KeyOf reads the run and event numbers of rec. ok is false when either
// is missing.
func KeyOf(rec record.Record) (EventKey, bool) {
	run, okRun := rec.Int("RunNumber")
	ev, okEvent := rec.Int("EventNumber")
	if !okRun || !okEvent {
		return EventKey{}, false
	}
	return EventKey{Run: uint32(run), Event: uint64(ev)}, true
}

// Deduper records seen events to ensure every event is decorated at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key EventKey) bool

	// Unrecord removes a key so the event can be submitted again, e.g.
	// after it was rejected by a full queue.
	Unrecord(ctx context.Context, key EventKey)

	Size() int64
}

// inMemoryDeduper keeps seen keys in a map. In bounded mode the keys are
// also kept in insertion order and the oldest is evicted once maxSize is
// reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[EventKey]*list.Element
	order   *list.List
	maxSize int // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[EventKey]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key EventKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.order == nil {
		d.seen[key] = nil
		d.size.Add(1)
		return false
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(key)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key EventKey) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, exists := d.seen[key]
	if !exists {
		return
	}
	delete(d.seen, key)
	if el != nil {
		d.order.Remove(el)
	}
	d.size.Add(-1)
}

// evictOldest drops the earliest recorded key. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(EventKey))
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
