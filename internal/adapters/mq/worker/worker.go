// Package worker runs the decoration workers that drain the event queue,
// decorate each record and hand the result to the sink.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/minintup/internal/adapters/mq/queue"
	"github.com/okian/minintup/internal/domain/decorate"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/record"
	"github.com/okian/minintup/internal/domain/tagprobe"
	"github.com/okian/minintup/pkg/logger"
	"github.com/okian/minintup/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Decorator turns an input record into an output record.
type Decorator interface {
	Decorate(ctx context.Context, rec record.Record, out *record.Output) (decorate.Report, error)
}

// Sink receives decorated output records.
type Sink interface {
	Write(ctx context.Context, out *record.Output) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// Observer is told about every processed event. err is non-nil when the
// event could not be decorated or written.
type Observer interface {
	Observe(ctx context.Context, e queue.Event, rep decorate.Report, err error)
}

// Worker decorates events from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker after the event in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker. Each worker owns its output record.
type InMemoryWorker struct {
	queue     Queue
	decorator Decorator
	sink      Sink
	observer  Observer
	name      string
	out       *record.Output

	processed *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, d Decorator, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		decorator: d,
		sink:      sink,
		name:      "worker",
		out:       record.NewOutput(),
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event",
					logger.Uint64("seq", event.Seq),
					logger.String("event", event.Key.String()),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker. A second call returns ErrStopped.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	stopped := true
	w.shutdownOnce.Do(func() {
		close(w.shutdown)
		stopped = false
	})
	if stopped {
		return ErrStopped
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// processEvent decorates and writes a single event.
func (w *InMemoryWorker) processEvent(ctx context.Context, event queue.Event) (err error) {
	start := time.Now()
	var rep decorate.Report
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		if w.observer != nil {
			w.observer.Observe(ctx, event, rep, err)
		}
	}()

	decStart := time.Now()
	rep, err = w.decorator.Decorate(ctx, event.Record, w.out)
	metrics.RecordDecorationLatency(float64(time.Since(decStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "decorate_error")
		return fmt.Errorf("decorate event %s: %w", event.Key, err)
	}
	recordReport(&rep)

	if err = w.sink.Write(ctx, w.out); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		return fmt.Errorf("write event %s: %w", event.Key, err)
	}
	metrics.RecordRecordWritten()
	metrics.RecordEventDecorated()
	w.processed.Add(1)
	return nil
}

func recordReport(rep *decorate.Report) {
	if rep.State != model.NoState {
		metrics.RecordTagProbeState(rep.State.String())
	}
	for _, res := range rep.Results {
		if res.Outcome != tagprobe.Assigned {
			metrics.RecordNoValidTag(res.Tier.String())
		}
	}
	for _, name := range rep.Missing {
		metrics.RecordMissingField(name)
	}
	metrics.RecordIndexMisses("lepton", rep.IndexMisses)
}

// Pool manages multiple workers sharing one queue, decorator and sink.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown     chan struct{}
	shutdownOnce sync.Once

	processedCount    atomic.Int64
	lastProcessed     int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below one starts a single
// worker, which keeps the output in input order.
func NewPool(workerCount int, q Queue, d Decorator, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             q,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(q, d, sink, wopts...)
		w.processed = &pool.processedCount
		pool.workers[i] = w
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of events decorated and written.
func (p *Pool) Processed() int64 { return p.processedCount.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater periodically publishes the pool throughput.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	total := p.processedCount.Load()
	if dt := now.Sub(p.lastProcessedTime).Seconds(); dt > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(total-p.lastProcessed) / dt)
	}
	p.lastProcessed = total
	p.lastProcessedTime = now
}

// Wait blocks until every worker has drained the queue and returned, or
// ctx is done. The queue must be closed for the workers to finish.
func (p *Pool) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for workers: %w", ctx.Err())
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	p.updateMetrics()
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(len(p.workers))
	return nil
}

// Stop signals all workers to stop without draining the queue.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	for _, w := range p.workers {
		w.shutdownOnce.Do(func() { close(w.shutdown) })
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue, lets the workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	if err := p.Wait(shutdownCtx); err != nil {
		p.logger.Warn(ctx, "worker shutdown timed out", logger.Error(err))
		p.Stop()
		return err
	}
	return nil
}
