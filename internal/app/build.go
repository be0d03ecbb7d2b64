package app

import (
	"github.com/okian/minintup/internal/adapters/store"
	"github.com/okian/minintup/internal/config"
	"github.com/okian/minintup/internal/domain/decorate"
	"github.com/okian/minintup/internal/domain/serialize"
	"github.com/okian/minintup/internal/domain/tagprobe"
	"github.com/okian/minintup/internal/domain/tightness"
	"github.com/okian/minintup/internal/domain/trigger"
	"github.com/okian/minintup/internal/domain/weights"
	"github.com/okian/minintup/pkg/logger"
)

// NewDecorator builds the decoration pipeline described by cfg.
func NewDecorator(cfg *config.Config, log logger.Logger) (*decorate.Decorator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	criterion, _ := cfg.Criterion()
	tiers, _ := cfg.Tiers()
	rules, _ := cfg.TightRules()
	chains, _ := cfg.Chains()
	keys, _ := cfg.OutputSortKeys()
	if log != nil {
		log = log.Named("decorate")
	}

	return decorate.New(
		decorate.WithLogger(log),
		decorate.WithActivation(decorate.NewActivation(cfg.InputBranches)),
		decorate.WithMatcher(trigger.NewMatcher(chains)),
		decorate.WithClassifier(tightness.NewClassifier(rules)),
		decorate.WithAssigner(tagprobe.NewAssigner(
			tagprobe.WithCriterion(criterion),
			tagprobe.WithTruthDefinition(cfg.UseTruthTP),
			tagprobe.WithSUSYSSDefinition(cfg.UseSUSYSSTP),
			tagprobe.WithTiers(tiers...),
		)),
		decorate.WithComposer(weights.NewComposer(weights.WithSumWeights(cfg.SumWeights))),
		decorate.WithSerializer(serialize.New(
			serialize.WithSortKeys(keys),
			serialize.WithTiers(tiers...),
		)),
		decorate.WithRunState(weights.NewRunState(cfg.AddStreamEventsHist)),
		decorate.WithBJetCut(cfg.BJetWeightCut),
		decorate.WithTruthJetMatchDR(cfg.TruthJetMatchDR),
	), nil
}

// NewFromConfig opens the configured input and output streams and builds a
// Runner for them.
func NewFromConfig(cfg *config.Config, log logger.Logger, opts ...Option) (*Runner, error) {
	dec, err := NewDecorator(cfg, log)
	if err != nil {
		return nil, err
	}
	src, err := store.OpenSource(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	sink, err := store.CreateSink(cfg.OutputPath)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	if log != nil {
		log = log.Named("runner")
	}
	base := []Option{
		WithLogger(log),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithNames(cfg.InputNtupName, cfg.OutputNtupName, cfg.OutputStreamName),
	}
	if cfg.AddStreamEventsHist {
		base = append(base, WithHistogramPath(cfg.HistPath()))
	}
	return New(src, sink, dec, append(base, opts...)...), nil
}
