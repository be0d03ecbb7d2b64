package weights

import (
	"fmt"
	"io"
	"sync"

	"go-hep.org/x/hep/hbook"
)

// HistName is the name of the generated-events histogram.
const HistName = "TotalEvents"

// Totals is a snapshot of the run counters.
type Totals struct {
	Raw      uint64
	Weighted float64
}

// RunState accumulates the generated-event counters of one processing run.
// It is created at run start and flushed once at run end; Add is safe for
// concurrent use.
type RunState struct {
	mu     sync.Mutex
	totals Totals
	hist   *hbook.H1D
}

// NewRunState creates run counters. With hist set, the counters are also
// filled into a two-bin histogram: bin 0 raw, bin 1 weighted.
func NewRunState(hist bool) *RunState {
	rs := &RunState{}
	if hist {
		rs.hist = hbook.NewH1D(2, 0, 2)
		rs.hist.Annotation()["name"] = HistName
		rs.hist.Annotation()["title"] = "generated events (raw, weighted)"
	}
	return rs
}

// Add counts one event with its generator weight.
func (rs *RunState) Add(weight float64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.totals.Raw++
	rs.totals.Weighted += weight
	if rs.hist != nil {
		rs.hist.Fill(0.5, 1)
		rs.hist.Fill(1.5, weight)
	}
}

// Totals returns the current counters.
func (rs *RunState) Totals() Totals {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.totals
}

// HasHistogram reports whether the histogram is being filled.
func (rs *RunState) HasHistogram() bool { return rs.hist != nil }

// WriteYODA writes the histogram in YODA format.
func (rs *RunState) WriteYODA(w io.Writer) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.hist == nil {
		return ErrNoHistogram
	}
	raw, err := rs.hist.MarshalYODA()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", HistName, err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write %s: %w", HistName, err)
	}
	return nil
}
