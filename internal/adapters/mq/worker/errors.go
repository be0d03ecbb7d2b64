package worker

import "errors"

// ErrStopped is returned when a worker is shut down twice.
var ErrStopped = errors.New("worker stopped")
