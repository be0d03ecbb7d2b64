package store

import "errors"

// Store errors.
var (
	// ErrMalformedRecord marks a single unreadable record. The source stays
	// usable and the next call to Next moves on to the following record.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnsupportedFormat is returned for paths whose suffix names no
	// known record or compression format.
	ErrUnsupportedFormat = errors.New("unsupported record format")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)
