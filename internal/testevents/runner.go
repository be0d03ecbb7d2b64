package testevents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/minintup/internal/adapters/store"
	"github.com/okian/minintup/internal/domain/record"
	"github.com/okian/minintup/pkg/logger"
)

// Sink receives generated records.
type Sink interface {
	Write(ctx context.Context, out *record.Output) error
}

// Run generates cfg.NumEvents distinct events, plus duplicates, into
// cfg.OutputPath.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	sink, err := store.CreateSink(cfg.OutputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open output: %w", err)
	}

	logger.Get().Info(ctx, "generating events",
		logger.Int("events", cfg.NumEvents),
		logger.Int("year", cfg.Year),
		logger.Bool("mc", cfg.MC),
		logger.Float64("duplicates", cfg.Duplicates),
		logger.String("output", cfg.OutputPath))

	stats, genErr := Generate(ctx, NewGenerator(cfg), sink, cfg.NumEvents)
	if err := sink.Close(); err != nil {
		genErr = errors.Join(genErr, fmt.Errorf("close output: %w", err))
	}
	if genErr != nil {
		return stats, genErr
	}

	displayFinalStats(ctx, stats)
	return stats, nil
}

// Generate writes records from gen into sink until n distinct events have
// been produced.
func Generate(ctx context.Context, gen *Generator, sink Sink, n int) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	out := record.NewOutput()
	for stats.EventsGenerated < n {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("context cancelled during event generation: %w", err)
		}
		dup := gen.Next(out)
		if err := sink.Write(ctx, out); err != nil {
			return stats, fmt.Errorf("write event %d: %w", stats.EventsWritten, err)
		}
		stats.EventsWritten++
		if dup {
			stats.Duplicates++
		} else {
			stats.EventsGenerated++
		}
		stats.Leptons += countLeptons(out)
		if v, ok := out.Get("jet_pt"); ok {
			stats.Jets += len(v.([]float32))
		}
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats, nil
}

func countLeptons(out *record.Output) int {
	n := 0
	for _, name := range []string{"lep_ID_0", "lep_ID_1", "lep_ID_2"} {
		if _, ok := out.Get(name); ok {
			n++
		}
	}
	return n
}

// displayFinalStats logs the final generator statistics.
func displayFinalStats(ctx context.Context, stats Stats) {
	var eventsPerSecond float64
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsWritten) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsWritten", stats.EventsWritten),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("leptons", stats.Leptons),
		logger.Int("jets", stats.Jets),
		logger.Duration("duration", stats.Duration),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
