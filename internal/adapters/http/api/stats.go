package api

import (
	"net/http"
)

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type statsResponse struct {
	RunID      string            `json:"run_id"`
	InputTree  string            `json:"input_tree"`
	OutputTree string            `json:"output_tree"`
	Read       uint64            `json:"read"`
	Decorated  uint64            `json:"decorated"`
	Duplicates uint64            `json:"duplicates"`
	Malformed  uint64            `json:"malformed"`
	Failed     uint64            `json:"failed"`
	NoValidTag map[string]uint64 `json:"no_valid_tag"`
	RawEvents  uint64            `json:"generated_raw"`
	Weighted   float64           `json:"generated_weighted"`
	ElapsedSec float64           `json:"elapsed_seconds"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	if h.statsProvider == nil {
		writeError(w, http.StatusServiceUnavailable, "no_run", ErrNoRun)
		return
	}
	s := h.statsProvider.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		RunID:      s.RunID,
		InputTree:  s.Names.Input,
		OutputTree: s.Names.Output,
		Read:       s.Read,
		Decorated:  s.Decorated,
		Duplicates: s.Duplicates,
		Malformed:  s.Malformed,
		Failed:     s.Failed,
		NoValidTag: s.NoValidTag,
		RawEvents:  s.Generated.Raw,
		Weighted:   s.Generated.Weighted,
		ElapsedSec: s.Elapsed.Seconds(),
	})
}
