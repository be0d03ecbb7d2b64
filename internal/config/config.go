// Package config defines the run configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Configuration errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"github.com/okian/minintup/internal/domain/decorate"
)

// TightRule is the tight definition of one lepton flavour.
type TightRule struct {
	// WorkingPoints lists the input flag stems that must all pass,
	// e.g. isTightLH, isolationFixedCutLoose.
	WorkingPoints []string `koanf:"working_points"`
	// MaxD0Sig and MaxZ0SinTheta are impact-parameter cuts; zero disables.
	MaxD0Sig      float64 `koanf:"max_d0sig"`
	MaxZ0SinTheta float64 `koanf:"max_z0sintheta"`
}

// TriggerChain is one trigger chain of the matching table.
type TriggerChain struct {
	Name    string `koanf:"name"`
	Flavour string `koanf:"flavour"`
	Tier    string `koanf:"tier"`
	Years   []int  `koanf:"years"`
}

// SortKeys names the ordering key of each output sequence group.
type SortKeys struct {
	Electron string `koanf:"electron"`
	Muon     string `koanf:"muon"`
	Lepton   string `koanf:"lepton"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// MetricsAddr serves /metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// InputPath and OutputPath are record stream paths; "-" is stdin/stdout.
	InputPath  string `koanf:"input_path"`
	OutputPath string `koanf:"output_path"`

	InputNtupName    string `koanf:"input_ntup_name"`
	OutputNtupName   string `koanf:"output_ntup_name"`
	OutputStreamName string `koanf:"output_stream_name"`

	// InputBranches restricts the readable input fields; empty reads all.
	InputBranches []string `koanf:"input_branches"`

	// UseTruthTP selects the truth-based Tag/Probe definition.
	UseTruthTP bool `koanf:"use_truth_tp"`

	// UseSUSYSSTP takes both Tight trigger-matched leptons as Tag in turn.
	UseSUSYSSTP bool `koanf:"use_susy_ss_tp"`

	// AmbiguityCriterion is the tie-break for symmetric states.
	AmbiguityCriterion string `koanf:"ambiguity_criterion"`

	// AddStreamEventsHist fills the generated-events histogram.
	AddStreamEventsHist bool `koanf:"add_stream_events_hist"`
	// EventsHistPath is where the histogram is written as YODA.
	EventsHistPath string `koanf:"events_hist_path"`

	// TPTiers lists the trigger tiers with Tag/Probe assignment.
	TPTiers []string `koanf:"tp_tiers"`

	WorkerCount int `koanf:"worker_count"`
	QueueSize   int `koanf:"queue_size"`
	DedupeSize  int `koanf:"dedupe_size"`

	BJetWeightCut   float64 `koanf:"bjet_weight_cut"`
	TruthJetMatchDR float64 `koanf:"truth_jet_match_dr"`

	// SumWeights normalises the event weight; zero leaves it unnormalised.
	SumWeights float64 `koanf:"sum_weights"`

	// Tight maps electron and muon to their tight rules.
	Tight map[string]TightRule `koanf:"tight"`

	// TriggerChains replaces the built-in chain table when non-empty.
	TriggerChains []TriggerChain `koanf:"trigger_chains"`

	SortKeys SortKeys `koanf:"sort_keys"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		InputPath:          "-",
		OutputPath:         "-",
		InputNtupName:      "nominal",
		OutputNtupName:     "physics",
		OutputStreamName:   "output",
		AmbiguityCriterion: "Pt",
		TPTiers:            []string{"SLT", "DLT"},
		WorkerCount:        1,
		QueueSize:          1024,
		DedupeSize:         50_000,
		BJetWeightCut:      decorate.DefaultBJetCut,
		TruthJetMatchDR:    decorate.DefaultTruthJetMatchDR,
		SumWeights:         1,
		Tight: map[string]TightRule{
			"electron": {
				WorkingPoints: []string{"isTightLH", "isolationFixedCutLoose"},
				MaxD0Sig:      5,
				MaxZ0SinTheta: 0.5,
			},
			"muon": {
				WorkingPoints: []string{"isMedium", "isolationFixedCutLoose"},
				MaxD0Sig:      3,
				MaxZ0SinTheta: 0.5,
			},
		},
		SortKeys: SortKeys{Electron: "Pt", Muon: "Pt", Lepton: "Pt"},
	}
}
