// Package decorate runs the per-event decoration pipeline: object model
// build, trigger matching across overlap removal, closest b-jet
// association, tightness, tag-and-probe roles, weights and serialization.
//
// A Decorator holds only configuration and run-wide counters, so one
// instance can be shared by several workers; each call owns its event.
package decorate

import (
	"context"
	"sync"

	"github.com/okian/minintup/internal/domain/bjet"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/record"
	"github.com/okian/minintup/internal/domain/serialize"
	"github.com/okian/minintup/internal/domain/tagprobe"
	"github.com/okian/minintup/internal/domain/tightness"
	"github.com/okian/minintup/internal/domain/trigger"
	"github.com/okian/minintup/internal/domain/weights"
	"github.com/okian/minintup/pkg/logger"
)

// Defaults.
const (
	DefaultBJetCut         = 0.8244273 // MV2c10 70% working point
	DefaultTruthJetMatchDR = 0.4
)

// Report summarises one decorated event for logging and metrics.
type Report struct {
	RunNumber   uint32
	EventNumber uint64
	State       model.TPState
	Results     []tagprobe.Result
	// IndexMisses counts leptons whose pre-removal position was not found.
	IndexMisses int
	// Missing lists the fields absent from this record.
	Missing []string
	// NewMissing lists the fields absent for the first time in the run.
	NewMissing []string
}

// Decorator decorates input records.
type Decorator struct {
	log        logger.Logger
	activation Activation
	matcher    *trigger.Matcher
	classifier *tightness.Classifier
	assigner   *tagprobe.Assigner
	composer   *weights.Composer
	serializer *serialize.Serializer
	run        *weights.RunState

	bjetCut         float64
	truthJetMatchDR float64

	missing sync.Map
}

// New creates a decorator. Unset collaborators get their defaults.
func New(opts ...Option) *Decorator {
	d := &Decorator{
		log:             logger.Get().Named("decorate"),
		matcher:         trigger.NewMatcher(trigger.DefaultChains()),
		classifier:      tightness.NewClassifier(tightness.DefaultRules()),
		assigner:        tagprobe.NewAssigner(),
		composer:        weights.NewComposer(),
		serializer:      serialize.New(),
		run:             weights.NewRunState(false),
		bjetCut:         DefaultBJetCut,
		truthJetMatchDR: DefaultTruthJetMatchDR,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunState returns the run-wide counters.
func (d *Decorator) RunState() *weights.RunState { return d.run }

// Decorate builds the event from rec, runs every stage and writes the
// result into out, which is reset first. Per-event problems (missing
// fields, unresolved indices, no valid tag) are reported, never returned
// as errors.
func (d *Decorator) Decorate(ctx context.Context, rec record.Record, out *record.Output) (Report, error) {
	if rec == nil {
		return Report{}, ErrNoRecord
	}
	r := &reader{rec: rec, act: d.activation}

	ev := buildEvent(r)
	ev.Jets = buildJets(r, ev.IsMC)
	if ev.IsMC {
		matchTruthJets(ev.Jets, buildTruthJets(r), d.truthJetMatchDR)
	}
	ev.BJets = bjet.Select(ev.Jets, d.bjetCut)

	misses := d.matcher.Apply(ev.Leptons, triggerInputs(r, ev.RunYear, d.matcher))
	bjet.Associate(ev.Leptons, ev.BJets)
	d.classifier.Apply(ev.Leptons)
	results := d.assigner.Assign(ev)
	eventFlags(ev)

	tiers := d.assigner.Tiers()
	d.composer.Apply(ev, tiers[0])
	d.serializer.Serialize(ev, out)

	generated := 1.0
	if ev.IsMC {
		generated = ev.MCWeight
	}
	d.run.Add(generated)

	rep := Report{
		RunNumber:   ev.RunNumber,
		EventNumber: ev.EventNumber,
		State:       ev.Summary.State,
		Results:     results,
		IndexMisses: misses,
		Missing:     r.missing,
	}
	for _, name := range r.missing {
		if _, seen := d.missing.LoadOrStore(name, struct{}{}); seen {
			continue
		}
		rep.NewMissing = append(rep.NewMissing, name)
		d.log.Warn(ctx, "input field missing, using default",
			logger.String("field", name),
			logger.Int64("event", int64(ev.EventNumber)),
		)
	}
	if misses > 0 {
		d.log.Debug(ctx, "lepton index not resolved across overlap removal",
			logger.Int64("event", int64(ev.EventNumber)),
			logger.Int("misses", misses),
		)
	}
	return rep, nil
}
