// Package store reads input records from and writes output records to
// record streams: JSON lines or CBOR sequences, optionally zstd or lz4
// compressed, selected by file suffix.
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/minintup/internal/domain/record"
)

// Source yields input records. Next returns io.EOF after the last record
// and an error wrapping ErrMalformedRecord for a record that cannot be
// decoded; any other error ends the stream.
type Source interface {
	Next(ctx context.Context) (record.Record, error)
	Close() error
}

// Sink accepts output records. Implementations serialize concurrent writes.
type Sink interface {
	Write(ctx context.Context, out *record.Output) error
	Close() error
}

// Format is a record encoding.
type Format int

// Record formats.
const (
	JSONL Format = iota
	CBOR
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case JSONL:
		return "jsonl"
	case CBOR:
		return "cbor"
	default:
		return "unknown"
	}
}

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

// Detect returns the record format and compression named by the suffixes
// of path, e.g. "events.cbor.zst". Stdio is uncompressed JSON lines.
func Detect(path string) (Format, Compression, error) {
	if path == Stdio {
		return JSONL, None, nil
	}
	name := strings.ToLower(path)
	comp := None
	for c, ext := range compressionExt {
		if ext != "" && strings.HasSuffix(name, ext) {
			comp = c
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	switch {
	case strings.HasSuffix(name, ".jsonl"), strings.HasSuffix(name, ".ndjson"), strings.HasSuffix(name, ".json"):
		return JSONL, comp, nil
	case strings.HasSuffix(name, ".cbor"):
		return CBOR, comp, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// OpenSource opens a record stream for reading.
func OpenSource(path string) (Source, error) {
	format, comp, err := Detect(path)
	if err != nil {
		return nil, err
	}
	var f io.ReadCloser = os.Stdin
	if path != Stdio {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		f = file
	}
	r, err := decompress(f, comp)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	switch format {
	case CBOR:
		return NewCBORSource(r), nil
	default:
		return NewJSONLSource(r), nil
	}
}

// CreateSink creates a record stream for writing, truncating any existing
// file.
func CreateSink(path string) (Sink, error) {
	format, comp, err := Detect(path)
	if err != nil {
		return nil, err
	}
	var f io.WriteCloser = nopWriteCloser{os.Stdout}
	if path != Stdio {
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create sink: %w", err)
		}
		f = file
	}
	w, err := compress(f, comp)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	switch format {
	case CBOR:
		return NewCBORSink(w), nil
	default:
		return NewJSONLSink(w), nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
