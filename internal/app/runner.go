// Package app wires a decoration run: records are read from a source,
// repeated events are dropped, the rest are queued for the worker pool,
// decorated and written to the sink.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/minintup/internal/adapters/mq/queue"
	workerpool "github.com/okian/minintup/internal/adapters/mq/worker"
	"github.com/okian/minintup/internal/adapters/store"
	"github.com/okian/minintup/internal/domain/decorate"
	"github.com/okian/minintup/internal/domain/dedupe"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/tagprobe"
	"github.com/okian/minintup/internal/domain/weights"
	"github.com/okian/minintup/pkg/logger"
	"github.com/okian/minintup/pkg/metrics"
)

// Names are the tree and stream names of a run.
type Names struct {
	Input  string
	Output string
	Stream string
}

// Summary describes a finished (or running) decoration run.
type Summary struct {
	RunID      string
	Names      Names
	Read       uint64
	Decorated  uint64
	Duplicates uint64
	Malformed  uint64
	Failed     uint64
	NoValidTag map[string]uint64
	Generated  weights.Totals
	Elapsed    time.Duration
}

// Runner executes one decoration run. It is not reusable.
type Runner struct {
	id        uuid.UUID
	names     Names
	source    store.Source
	sink      store.Sink
	decorator *decorate.Decorator

	workerCount int
	queueSize   int
	dedupeSize  int
	histPath    string

	read       atomic.Uint64
	decorated  atomic.Uint64
	duplicates atomic.Uint64
	malformed  atomic.Uint64
	failed     atomic.Uint64
	noValidTag [model.NumTiers]atomic.Uint64

	mu      sync.Mutex
	started time.Time
	ran     bool

	logger logger.Logger
}

// New constructs a Runner reading from source and writing to sink.
func New(source store.Source, sink store.Sink, dec *decorate.Decorator, opts ...Option) *Runner {
	r := &Runner{
		id:          uuid.New(),
		source:      source,
		sink:        sink,
		decorator:   dec,
		workerCount: 1,
		queueSize:   1024,
		dedupeSize:  50000,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("runner")
	}
	return r
}

// ID returns the run identifier.
func (r *Runner) ID() string { return r.id.String() }

// Run processes the whole source. Per-event problems are counted, not
// returned; the error reports a failing source, sink or histogram file.
// The source and sink are closed before Run returns.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return Summary{}, ErrAlreadyRun
	}
	r.ran = true
	r.started = time.Now()
	r.mu.Unlock()

	log := r.logger
	log.Info(ctx, "decoration run starting",
		logger.String("run_id", r.ID()),
		logger.String("input_tree", r.names.Input),
		logger.String("output_tree", r.names.Output),
		logger.Int("workers", r.workerCount),
		logger.Int("queueSize", r.queueSize),
		logger.Int("dedupeSize", r.dedupeSize),
	)

	deduper := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(r.dedupeSize))
	queue := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(r.queueSize))
	pool := workerpool.NewPool(r.workerCount, queue, r.decorator, r.sink,
		workerpool.WithObserver(r),
	)

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(workCtx)

	readErr := r.feed(workCtx, deduper, queue)
	_ = queue.Close()

	var errs []error
	if readErr != nil {
		errs = append(errs, readErr)
	}
	if err := pool.Wait(ctx); err != nil {
		pool.Stop()
		errs = append(errs, err)
	}
	if err := r.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close source: %w", err))
	}
	if err := r.sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sink: %w", err))
	}
	if err := r.flushHistogram(); err != nil {
		errs = append(errs, err)
	}

	sum := r.Stats()
	metrics.UpdateGeneratedEvents(sum.Generated.Raw, sum.Generated.Weighted)
	log.Info(ctx, "decoration run finished",
		logger.String("run_id", sum.RunID),
		logger.Uint64("read", sum.Read),
		logger.Uint64("decorated", sum.Decorated),
		logger.Uint64("duplicates", sum.Duplicates),
		logger.Uint64("malformed", sum.Malformed),
		logger.Uint64("failed", sum.Failed),
		logger.Uint64("noValidTag_SLT", sum.NoValidTag[model.SLT.String()]),
		logger.Uint64("noValidTag_DLT", sum.NoValidTag[model.DLT.String()]),
		logger.Uint64("generated_raw", sum.Generated.Raw),
		logger.Float64("generated_weighted", sum.Generated.Weighted),
		logger.Duration("elapsed", sum.Elapsed),
	)
	return sum, errors.Join(errs...)
}

// feed reads the source until EOF and queues every new event.
func (r *Runner) feed(ctx context.Context, deduper dedupe.Deduper, queue eventqueue.Queue) error {
	var seq uint64
	for {
		rec, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, store.ErrMalformedRecord) {
			r.malformed.Add(1)
			metrics.RecordMalformedRecord()
			metrics.RecordErrorByComponent("source", "malformed_record")
			r.logger.Warn(ctx, "skipping malformed record", logger.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		seq++
		r.read.Add(1)
		metrics.RecordEventRead()

		key, ok := dedupe.KeyOf(rec)
		if ok && deduper.SeenAndRecord(ctx, key) {
			r.duplicates.Add(1)
			metrics.RecordEventDuplicate()
			r.logger.Debug(ctx, "duplicate event detected, skipping",
				logger.String("event", key.String()),
				logger.Uint64("seq", seq),
			)
			continue
		}

		if err := queue.Put(ctx, eventqueue.Event{Seq: seq, Key: key, Record: rec}); err != nil {
			if ok {
				deduper.Unrecord(ctx, key)
			}
			return fmt.Errorf("queue event %s: %w", key, err)
		}
	}
}

// Observe implements worker.Observer.
func (r *Runner) Observe(_ context.Context, _ eventqueue.Event, rep decorate.Report, err error) {
	if err != nil {
		r.failed.Add(1)
		return
	}
	r.decorated.Add(1)
	for _, res := range rep.Results {
		if res.Outcome != tagprobe.Assigned && res.Tier >= 0 && res.Tier < model.NumTiers {
			r.noValidTag[res.Tier].Add(1)
		}
	}
}

func (r *Runner) flushHistogram() error {
	rs := r.decorator.RunState()
	if r.histPath == "" || !rs.HasHistogram() {
		return nil
	}
	f, err := os.Create(r.histPath)
	if err != nil {
		return fmt.Errorf("create histogram file: %w", err)
	}
	if err := rs.WriteYODA(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close histogram file: %w", err)
	}
	r.logger.Info(context.Background(), "generated events histogram written",
		logger.String("path", r.histPath),
		logger.String("stream", r.names.Stream),
	)
	return nil
}

// Stats returns a snapshot of the run counters.
func (r *Runner) Stats() Summary {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	s := Summary{
		RunID:      r.ID(),
		Names:      r.names,
		Read:       r.read.Load(),
		Decorated:  r.decorated.Load(),
		Duplicates: r.duplicates.Load(),
		Malformed:  r.malformed.Load(),
		Failed:     r.failed.Load(),
		NoValidTag: make(map[string]uint64, model.NumTiers),
		Generated:  r.decorator.RunState().Totals(),
	}
	for t := model.Tier(0); t < model.NumTiers; t++ {
		s.NoValidTag[t.String()] = r.noValidTag[t].Load()
	}
	if !started.IsZero() {
		s.Elapsed = time.Since(started)
	}
	return s
}
