package store

import (
	"context"
	"io"
	"sync"

	"github.com/okian/minintup/internal/domain/record"
)

// MemorySource serves records from a slice.
type MemorySource struct {
	mu      sync.Mutex
	records []record.Record
	pos     int
}

// NewMemorySource creates a source over records.
func NewMemorySource(records ...record.Record) *MemorySource {
	return &MemorySource{records: records}
}

// Next returns the next record or io.EOF.
func (s *MemorySource) Next(ctx context.Context) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}

// Close is a no-op.
func (s *MemorySource) Close() error { return nil }

// MemorySink keeps copies of the written records.
type MemorySink struct {
	mu      sync.Mutex
	records []map[string]any
	closed  bool
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Write stores a copy of out.
func (s *MemorySink) Write(ctx context.Context, out *record.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = append(s.records, out.Map())
	return nil
}

// Close marks the sink closed.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Records returns the stored records in write order.
func (s *MemorySink) Records() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.records))
	copy(out, s.records)
	return out
}
