// Package tagprobe assigns Tag and Probe roles to the two leading leptons
// of an event for the real/fake efficiency measurement.
//
// The two leading leptons are classified as Tight or AntiTight, giving one
// of eight states. When exactly one lepton is Tight it is the Tag, provided
// it is trigger-matched at the tier; the other lepton is the Probe whether
// matched or not. When both share the same tightness, the trigger-matched
// leptons are the Tag candidates and a configurable ranking key breaks the
// tie between two candidates. With the same-sign analysis definition two
// Tight trigger-matched leptons are instead each taken as Tag in turn, so
// both carry both roles. If no Tag can be found the tier's NoValidTag
// sentinel stays set and no role flags are written.
package tagprobe

import (
	"github.com/okian/minintup/internal/domain/lepsort"
	"github.com/okian/minintup/internal/domain/model"
)

// Outcome explains a per-tier assignment.
type Outcome int

// Assignment outcomes.
const (
	Assigned Outcome = iota
	TooFewLeptons
	NoTriggerMatchedTag
)

// String returns a short label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Assigned:
		return "assigned"
	case TooFewLeptons:
		return "too_few_leptons"
	case NoTriggerMatchedTag:
		return "no_trigger_matched_tag"
	default:
		return "unknown"
	}
}

// Result is the assignment for one tier.
type Result struct {
	Tier    model.Tier
	State   model.TPState
	Outcome Outcome
	Tag     *model.LeptonRecord
	Probe   *model.LeptonRecord
	// BothRoles is set when Tag and Probe each hold both roles.
	BothRoles bool
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithCriterion sets the tie-break key for symmetric states.
func WithCriterion(k lepsort.Key) Option {
	return func(a *Assigner) {
		a.criterion = k
	}
}

// WithTruthDefinition classifies leptons by truth provenance (prompt and not
// charge-flipped) instead of the reconstructed tight flag.
func WithTruthDefinition(enabled bool) Option {
	return func(a *Assigner) {
		a.truth = enabled
	}
}

// WithSUSYSSDefinition resolves the Tight+Tight case with both leptons
// trigger-matched by taking each lepton as Tag in turn instead of applying
// the tie-break.
func WithSUSYSSDefinition(enabled bool) Option {
	return func(a *Assigner) {
		a.susySS = enabled
	}
}

// WithTiers sets the trigger tiers to assign roles for.
func WithTiers(tiers ...model.Tier) Option {
	return func(a *Assigner) {
		if len(tiers) > 0 {
			a.tiers = append([]model.Tier(nil), tiers...)
		}
	}
}

// Assigner is stateless across events and safe for concurrent use.
type Assigner struct {
	criterion lepsort.Key
	truth     bool
	susySS    bool
	tiers     []model.Tier
}

// NewAssigner creates an Assigner. Defaults: pT tie-break, reconstruction
// definition, single-lepton tier only.
func NewAssigner(opts ...Option) *Assigner {
	a := &Assigner{
		criterion: lepsort.Pt,
		tiers:     []model.Tier{model.SLT},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tiers returns the tiers this assigner handles.
func (a *Assigner) Tiers() []model.Tier { return append([]model.Tier(nil), a.tiers...) }

// good is the Tight predicate under the configured definition.
func (a *Assigner) good(l *model.LeptonRecord) bool {
	if a.truth {
		return l.Prompt && !l.ChargeFlip
	}
	return l.Tight
}

// Classify returns the state of the two leading leptons under good.
func Classify(l0, l1 *model.LeptonRecord, good func(*model.LeptonRecord) bool) model.TPState {
	g0, g1 := good(l0), good(l1)
	sameFlavour := l0.Flavour == l1.Flavour
	switch {
	case g0 && g1:
		return model.TightTight
	case !g0 && !g1:
		return model.AntiTightAntiTight
	case g0:
		switch {
		case sameFlavour:
			return model.TightAntiTight
		case l0.Flavour == model.Electron:
			return model.TightElAntiTightMu
		default:
			return model.TightMuAntiTightEl
		}
	default:
		switch {
		case sameFlavour:
			return model.AntiTightTight
		case l0.Flavour == model.Electron:
			return model.AntiTightElTightMu
		default:
			return model.AntiTightMuTightEl
		}
	}
}

// AssignTier computes the roles for one tier without touching the event.
func (a *Assigner) AssignTier(ev *model.Event, tier model.Tier) Result {
	res := Result{Tier: tier, State: model.NoState, Outcome: TooFewLeptons}
	if len(ev.Leptons) < 2 {
		return res
	}
	l0, l1 := ev.Leptons[0], ev.Leptons[1]
	res.State = Classify(l0, l1, a.good)
	res.Outcome = NoTriggerMatchedTag

	if !res.State.Symmetric() {
		tight, other := l0, l1
		if !a.good(l0) {
			tight, other = l1, l0
		}
		if !tight.TrigMatched[tier] {
			return res
		}
		res.Tag, res.Probe, res.Outcome = tight, other, Assigned
		return res
	}

	m0, m1 := l0.TrigMatched[tier], l1.TrigMatched[tier]
	switch {
	case m0 && m1 && a.susySS && res.State == model.TightTight:
		res.Tag, res.Probe, res.BothRoles = l0, l1, true
	case m0 && m1:
		res.Tag, res.Probe = a.criterion.Winner(l0, l1)
	case m0:
		res.Tag, res.Probe = l0, l1
	case m1:
		res.Tag, res.Probe = l1, l0
	default:
		return res
	}
	res.Outcome = Assigned
	return res
}

// Assign decorates the event: the state in the summary, role flags on the
// leptons and the NoValidTag sentinel for every configured tier. Roles and
// sentinels of every tier are reset first.
func (a *Assigner) Assign(ev *model.Event) []Result {
	for _, l := range ev.Leptons {
		l.Tag = [model.NumTiers]bool{}
		l.Probe = [model.NumTiers]bool{}
	}
	for t := range ev.Summary.NoValidTag {
		ev.Summary.NoValidTag[t] = true
	}
	ev.Summary.State = model.NoState

	results := make([]Result, 0, len(a.tiers))
	for _, tier := range a.tiers {
		res := a.AssignTier(ev, tier)
		ev.Summary.State = res.State
		if res.Outcome == Assigned {
			res.Tag.Tag[tier] = true
			res.Probe.Probe[tier] = true
			if res.BothRoles {
				res.Tag.Probe[tier] = true
				res.Probe.Tag[tier] = true
			}
			ev.Summary.NoValidTag[tier] = false
		}
		results = append(results, res)
	}
	return results
}
