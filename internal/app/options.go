package app

import (
	"github.com/google/uuid"

	"github.com/okian/minintup/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkerCount sets the number of decoration workers.
func WithWorkerCount(count int) Option {
	return func(r *Runner) {
		if count > 0 {
			r.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the duplicate event cache.
func WithDedupeSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(logger logger.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHistogramPath writes the generated-events histogram to path at the
// end of the run, when the decorator fills one.
func WithHistogramPath(path string) Option {
	return func(r *Runner) {
		r.histPath = path
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id uuid.UUID) Option {
	return func(r *Runner) {
		if id != uuid.Nil {
			r.id = id
		}
	}
}

// WithNames sets the input and output tree names reported in the summary.
func WithNames(input, output, stream string) Option {
	return func(r *Runner) {
		r.names = Names{Input: input, Output: output, Stream: stream}
	}
}
