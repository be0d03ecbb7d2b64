// Package testevents synthesizes flat input records for exercising the
// decoration pipeline end to end. The output follows the input layout read
// by the decorator: scalar event fields, per-slot lep_<name>_<i> fields and
// per-collection sequences.
package testevents

import (
	"fmt"
	"time"
)

// Defaults for a generator run.
const (
	DefaultNumEvents = 1000
	DefaultRunNumber = 284500
	DefaultYear      = 2016
	DefaultMaxJets   = 6
	DefaultChannel   = 410000
)

// Config holds configuration for the event generator
type Config struct {
	NumEvents  int     // Number of distinct events to generate
	Seed       uint64  // Random seed; equal seeds give equal streams
	RunNumber  uint32  // Run number stamped on every event
	Year       int     // Data-taking year selecting the trigger chains
	MC         bool    // Emit simulation weights and truth flags
	Duplicates float64 // Fraction of extra records repeating an earlier event number
	MaxJets    int     // Upper bound on jets per event
	OutputPath string  // Destination path; the extension selects the format
}

// DefaultConfig returns a simulation configuration for 2016.
func DefaultConfig() Config {
	return Config{
		NumEvents:  DefaultNumEvents,
		Seed:       1,
		RunNumber:  DefaultRunNumber,
		Year:       DefaultYear,
		MC:         true,
		MaxJets:    DefaultMaxJets,
		OutputPath: "-",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.NumEvents < 0:
		return fmt.Errorf("%w: events must be >= 0, got %d", ErrInvalidConfig, c.NumEvents)
	case c.Duplicates < 0 || c.Duplicates >= 1:
		return fmt.Errorf("%w: duplicate fraction must be in [0,1), got %g", ErrInvalidConfig, c.Duplicates)
	case c.MaxJets < 0:
		return fmt.Errorf("%w: max jets must be >= 0, got %d", ErrInvalidConfig, c.MaxJets)
	case c.OutputPath == "":
		return fmt.Errorf("%w: output path is empty", ErrInvalidConfig)
	}
	return nil
}

// Stats holds generator statistics
type Stats struct {
	EventsGenerated int
	EventsWritten   int
	Duplicates      int
	Leptons         int
	Jets            int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
