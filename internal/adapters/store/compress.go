package store

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is a stream compression algorithm.
type Compression int

// Compression algorithms.
const (
	None Compression = iota
	Zstd
	LZ4
)

var compressionExt = map[Compression]string{
	None: "",
	Zstd: ".zst",
	LZ4:  ".lz4",
}

// String returns the algorithm name.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// readCloser closes the decompressor and then the underlying stream.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func decompress(rc io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return rc, nil
	case Zstd:
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return &readCloser{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			rc.Close,
		}}, nil
	case LZ4:
		return &readCloser{Reader: lz4.NewReader(rc), closers: []func() error{rc.Close}}, nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupportedFormat, c)
	}
}

// writeCloser flushes and closes the compressor and then the underlying
// stream.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func compress(wc io.WriteCloser, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return wc, nil
	case Zstd:
		enc, err := zstd.NewWriter(wc, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return &writeCloser{Writer: enc, closers: []func() error{enc.Close, wc.Close}}, nil
	case LZ4:
		zw := lz4.NewWriter(wc)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, wc.Close}}, nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupportedFormat, c)
	}
}
