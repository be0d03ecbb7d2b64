package store

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/okian/minintup/internal/domain/record"
)

const maxLineBytes = 16 << 20

// JSONLSource reads one JSON object per line. Blank lines are skipped.
type JSONLSource struct {
	rc   io.ReadCloser
	sc   *bufio.Scanner
	line int
}

// NewJSONLSource reads records from r. Close closes r when it is an
// io.Closer.
func NewJSONLSource(r io.Reader) *JSONLSource {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &JSONLSource{rc: rc, sc: sc}
}

// Next returns the next record.
func (s *JSONLSource) Next(ctx context.Context) (record.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return nil, fmt.Errorf("read line %d: %w", s.line+1, err)
			}
			return nil, io.EOF
		}
		s.line++
		line := bytes.TrimSpace(s.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("%w: line %d: invalid json", ErrMalformedRecord, s.line)
		}
		res := gjson.ParseBytes(line)
		if !res.IsObject() {
			return nil, fmt.Errorf("%w: line %d: not an object", ErrMalformedRecord, s.line)
		}
		m, _ := value(res).(map[string]any)
		return record.Map(m), nil
	}
}

// Close closes the underlying reader.
func (s *JSONLSource) Close() error { return s.rc.Close() }

// value converts a parsed JSON value. Integer literals stay int64 so event
// numbers above 2^53 keep their precision.
func value(res gjson.Result) any {
	switch res.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if !strings.ContainsAny(res.Raw, ".eE") {
			if res.Raw[0] != '-' {
				if u := res.Uint(); u > 1<<63-1 {
					return u
				}
			}
			return res.Int()
		}
		return res.Float()
	case gjson.String:
		return res.String()
	case gjson.JSON:
		if res.IsArray() {
			items := res.Array()
			out := make([]any, len(items))
			for i, it := range items {
				out[i] = value(it)
			}
			return out
		}
		m := make(map[string]any)
		res.ForEach(func(k, v gjson.Result) bool {
			m[k.String()] = value(v)
			return true
		})
		return m
	default:
		return nil
	}
}

// JSONLSink writes one JSON object per record, keeping field order.
type JSONLSink struct {
	mu  sync.Mutex
	wc  io.WriteCloser
	bw  *bufio.Writer
	buf []byte
}

// NewJSONLSink writes records to w. Close closes w when it is an
// io.Closer.
func NewJSONLSink(w io.Writer) *JSONLSink {
	wc, ok := w.(io.WriteCloser)
	if !ok {
		wc = nopWriteCloser{w}
	}
	return &JSONLSink{wc: wc, bw: bufio.NewWriter(wc)}
}

// Write appends one record.
func (s *JSONLSink) Write(ctx context.Context, out *record.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bw == nil {
		return ErrClosed
	}
	buf, err := appendObject(s.buf[:0], out.Fields())
	if err != nil {
		return err
	}
	s.buf = append(buf, '\n')
	if _, err := s.bw.Write(s.buf); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the writer.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bw == nil {
		return nil
	}
	ferr := s.bw.Flush()
	s.bw = nil
	cerr := s.wc.Close()
	if ferr != nil {
		return fmt.Errorf("flush: %w", ferr)
	}
	return cerr
}
