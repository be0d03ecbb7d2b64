package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/minintup/internal/domain/lepsort"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/serialize"
	"github.com/okian/minintup/internal/domain/tightness"
	"github.com/okian/minintup/internal/domain/trigger"
	"github.com/okian/minintup/pkg/logger"
)

// Validate checks every option and returns the first problem found,
// wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(err error) error { return fmt.Errorf("%w: %w", ErrInvalidConfig, err) }

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return invalid(err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return invalid(fmt.Errorf("log_format %q", c.LogFormat))
	}
	if c.OutputNtupName == "" {
		return invalid(errors.New("output_ntup_name must not be empty"))
	}
	if c.OutputNtupName == c.InputNtupName {
		return invalid(fmt.Errorf("output_ntup_name %q collides with input_ntup_name", c.OutputNtupName))
	}
	if c.InputPath == "" || c.OutputPath == "" {
		return invalid(errors.New("input_path and output_path must not be empty"))
	}
	if c.WorkerCount < 1 {
		return invalid(fmt.Errorf("worker_count %d < 1", c.WorkerCount))
	}
	if c.QueueSize < 1 {
		return invalid(fmt.Errorf("queue_size %d < 1", c.QueueSize))
	}
	if c.DedupeSize < 0 {
		return invalid(fmt.Errorf("dedupe_size %d < 0", c.DedupeSize))
	}
	if c.TruthJetMatchDR <= 0 {
		return invalid(fmt.Errorf("truth_jet_match_dr %g must be positive", c.TruthJetMatchDR))
	}
	if c.SumWeights < 0 {
		return invalid(fmt.Errorf("sum_weights %g must not be negative", c.SumWeights))
	}
	if _, err := c.Criterion(); err != nil {
		return invalid(err)
	}
	if _, err := c.Tiers(); err != nil {
		return invalid(err)
	}
	if _, err := c.TightRules(); err != nil {
		return invalid(err)
	}
	if _, err := c.Chains(); err != nil {
		return invalid(err)
	}
	if _, err := c.OutputSortKeys(); err != nil {
		return invalid(err)
	}
	return nil
}

// Criterion returns the tie-break key.
func (c *Config) Criterion() (lepsort.Key, error) {
	k, err := lepsort.ParseKey(c.AmbiguityCriterion)
	if err != nil {
		return 0, fmt.Errorf("ambiguity_criterion: %w", err)
	}
	return k, nil
}

// Tiers returns the Tag/Probe tiers in configured order.
func (c *Config) Tiers() ([]model.Tier, error) {
	if len(c.TPTiers) == 0 {
		return nil, fmt.Errorf("tp_tiers: %w: none configured", ErrUnknownTier)
	}
	var (
		out  []model.Tier
		seen [model.NumTiers]bool
	)
	for _, name := range c.TPTiers {
		t, err := parseTier(name)
		if err != nil {
			return nil, fmt.Errorf("tp_tiers: %w", err)
		}
		if seen[t] {
			return nil, fmt.Errorf("tp_tiers: %q listed twice", name)
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

// TightRules returns the per-flavour tight definitions.
func (c *Config) TightRules() (map[model.Flavour]tightness.Rule, error) {
	rules := make(map[model.Flavour]tightness.Rule, len(c.Tight))
	for name, r := range c.Tight {
		f, err := parseFlavour(name)
		if err != nil {
			return nil, fmt.Errorf("tight: %w", err)
		}
		rule, err := tightness.ParseRule(r.WorkingPoints, r.MaxD0Sig, r.MaxZ0SinTheta)
		if err != nil {
			return nil, fmt.Errorf("tight.%s: %w", name, err)
		}
		rules[f] = rule
	}
	return rules, nil
}

// Chains returns the trigger chain table, the built-in one when none is
// configured.
func (c *Config) Chains() ([]trigger.Chain, error) {
	if len(c.TriggerChains) == 0 {
		return trigger.DefaultChains(), nil
	}
	out := make([]trigger.Chain, 0, len(c.TriggerChains))
	for i, tc := range c.TriggerChains {
		if tc.Name == "" {
			return nil, fmt.Errorf("trigger_chains[%d]: empty name", i)
		}
		f, err := parseFlavour(tc.Flavour)
		if err != nil {
			return nil, fmt.Errorf("trigger_chains[%d]: %w", i, err)
		}
		t, err := parseTier(tc.Tier)
		if err != nil {
			return nil, fmt.Errorf("trigger_chains[%d]: %w", i, err)
		}
		out = append(out, trigger.Chain{Name: tc.Name, Flavour: f, Tier: t, Years: tc.Years})
	}
	return out, nil
}

// OutputSortKeys returns the ordering keys of the output sequences.
func (c *Config) OutputSortKeys() (serialize.SortKeys, error) {
	var (
		keys serialize.SortKeys
		err  error
	)
	if keys.Electron, err = lepsort.ParseKey(c.SortKeys.Electron); err != nil {
		return keys, fmt.Errorf("sort_keys.electron: %w", err)
	}
	if keys.Muon, err = lepsort.ParseKey(c.SortKeys.Muon); err != nil {
		return keys, fmt.Errorf("sort_keys.muon: %w", err)
	}
	if keys.Lepton, err = lepsort.ParseKey(c.SortKeys.Lepton); err != nil {
		return keys, fmt.Errorf("sort_keys.lepton: %w", err)
	}
	return keys, nil
}

// HistPath returns where the generated-events histogram is written.
// Without events_hist_path it sits next to the output, named after the
// output stream.
func (c *Config) HistPath() string {
	if c.EventsHistPath != "" {
		return c.EventsHistPath
	}
	name := c.OutputStreamName + "_" + "TotalEvents.yoda"
	if c.OutputPath == "-" {
		return name
	}
	return filepath.Join(filepath.Dir(c.OutputPath), name)
}

func parseTier(s string) (model.Tier, error) {
	t, ok := model.ParseTier(strings.ToUpper(strings.TrimSpace(s)))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

func parseFlavour(s string) (model.Flavour, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "electron", "el", "e":
		return model.Electron, nil
	case "muon", "mu", "m":
		return model.Muon, nil
	default:
		return model.NoFlavour, fmt.Errorf("unknown flavour %q", s)
	}
}
