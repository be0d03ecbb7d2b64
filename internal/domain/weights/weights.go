// Package weights composes event-level and tag/probe-level weights from the
// per-lepton scale factors and the generator-level event weights.
package weights

import (
	"github.com/okian/minintup/internal/domain/model"
)

// Option configures a Composer.
type Option func(*Composer)

// WithSumWeights sets the run-wide sum of generated weights used to
// normalise the event weight. Zero or negative values disable the
// normalisation.
func WithSumWeights(sum float64) Option {
	return func(c *Composer) {
		c.sumWeights = sum
	}
}

// Composer multiplies scale factors into weights. It is stateless and safe
// for concurrent use.
type Composer struct {
	sumWeights float64
}

// NewComposer creates a composer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{sumWeights: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Product multiplies factors. An empty product is 1.
func Product(factors ...float64) float64 {
	p := 1.0
	for _, f := range factors {
		p *= f
	}
	return p
}

// Event returns generator × pileup × b-tag × JVT weight over the sum of
// weights. Data events weigh 1.
func (c *Composer) Event(ev *model.Event) float64 {
	if !ev.IsMC {
		return 1
	}
	w := Product(ev.MCWeight, ev.PileupWeight, ev.BTagWeight, ev.JVTWeight)
	if c.sumWeights > 0 {
		w /= c.sumWeights
	}
	return w
}

// Lepton returns identification × isolation × reconstruction × track-to-vertex
// scale factors at the lepton's working point.
func Lepton(l *model.LeptonRecord) float64 {
	if l.Tight {
		return Product(l.SF.IDTight, l.SF.IsoTight, l.SF.Reco, l.SF.TTVA)
	}
	return Product(l.SF.IDLoose, l.SF.IsoLoose, l.SF.Reco, l.SF.TTVA)
}

// trig returns the trigger scale factor and efficiency at the lepton's
// working point.
func trig(l *model.LeptonRecord) (sf, eff float64) {
	if l.Tight {
		return l.SF.TrigTight, l.SF.EffTrigTight
	}
	return l.SF.TrigLoose, l.SF.EffTrigLoose
}

// EventLepton returns the product of Lepton over all leptons.
func EventLepton(leptons []*model.LeptonRecord) float64 {
	w := 1.0
	for _, l := range leptons {
		w *= Lepton(l)
	}
	return w
}

// EventTrigger returns the trigger weight of the event at a tier, the ratio
// of the probabilities that at least one matched lepton fires the trigger
// in data and in simulation. It is 1 when no matched lepton carries an
// efficiency.
func EventTrigger(leptons []*model.LeptonRecord, tier model.Tier) float64 {
	missData, missMC := 1.0, 1.0
	for _, l := range leptons {
		if !l.TrigMatched[tier] {
			continue
		}
		sf, eff := trig(l)
		missData *= 1 - sf*eff
		missMC *= 1 - eff
	}
	den := 1 - missMC
	if den == 0 {
		return 1
	}
	return (1 - missData) / den
}

// TagTrigger returns the trigger scale factor of the Tag lepton.
func TagTrigger(l *model.LeptonRecord) float64 {
	sf, _ := trig(l)
	return sf
}

// ProbeTrigger returns the Probe trigger weight. A matched probe takes the
// scale factor; an unmatched one the inefficiency ratio (1-SF·ε)/(1-ε),
// which is neutral when ε is 0 or 1.
func ProbeTrigger(l *model.LeptonRecord, tier model.Tier) float64 {
	sf, eff := trig(l)
	if l.TrigMatched[tier] {
		return sf
	}
	if eff <= 0 || eff >= 1 {
		return 1
	}
	return (1 - sf*eff) / (1 - eff)
}

// Apply writes every weight of the summary. Tag/probe weights are taken
// from the roles at tier and stay 1 when the role is absent.
func (c *Composer) Apply(ev *model.Event, tier model.Tier) {
	s := &ev.Summary
	s.WeightEvent = c.Event(ev)
	s.WeightEventLep = 1
	s.WeightLepTag, s.WeightLepProbe = 1, 1
	s.WeightTrigTag, s.WeightTrigProbe = 1, 1
	for t := range s.WeightEventTrig {
		s.WeightEventTrig[t] = 1
	}
	if !ev.IsMC {
		return
	}
	s.WeightEventLep = EventLepton(ev.Leptons)
	for t := model.Tier(0); t < model.NumTiers; t++ {
		s.WeightEventTrig[t] = EventTrigger(ev.Leptons, t)
	}
	if tag := ev.Role(tier, true); tag != nil {
		s.WeightLepTag = Lepton(tag)
		s.WeightTrigTag = TagTrigger(tag)
	}
	if probe := ev.Role(tier, false); probe != nil {
		s.WeightLepProbe = Lepton(probe)
		s.WeightTrigProbe = ProbeTrigger(probe, tier)
	}
}
