package queue

import "errors"

// ErrClosed is returned by Put once the queue has been closed.
var ErrClosed = errors.New("queue closed")
