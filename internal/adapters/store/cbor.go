package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/okian/minintup/internal/domain/record"
)

// encMode writes Core Deterministic Encoding: sorted keys and shortest
// numeric forms, so equal records encode to equal bytes.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORSource reads a CBOR sequence of maps.
type CBORSource struct {
	rc  io.ReadCloser
	dec *cbor.Decoder
	n   int
}

// NewCBORSource reads records from r.
func NewCBORSource(r io.Reader) *CBORSource {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return &CBORSource{rc: rc, dec: decMode.NewDecoder(rc)}
}

// Next returns the next record. A data item that is not a map is
// malformed; a decoding error ends the stream.
func (s *CBORSource) Next(ctx context.Context) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var item any
	if err := s.dec.Decode(&item); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode item %d: %w", s.n+1, err)
	}
	s.n++
	m, ok := item.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: item %d: %T is not a map", ErrMalformedRecord, s.n, item)
	}
	return record.Map(m), nil
}

// Close closes the underlying reader.
func (s *CBORSource) Close() error { return s.rc.Close() }

// CBORSink writes a CBOR sequence of maps.
type CBORSink struct {
	mu     sync.Mutex
	wc     io.WriteCloser
	enc    *cbor.Encoder
	closed bool
}

// NewCBORSink writes records to w.
func NewCBORSink(w io.Writer) *CBORSink {
	wc, ok := w.(io.WriteCloser)
	if !ok {
		wc = nopWriteCloser{w}
	}
	return &CBORSink{wc: wc, enc: encMode.NewEncoder(wc)}
}

// Write appends one record.
func (s *CBORSink) Write(ctx context.Context, out *record.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.enc.Encode(out.Map()); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// Close closes the writer.
func (s *CBORSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.wc.Close()
}
