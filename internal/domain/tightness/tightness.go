// Package tightness derives the analysis "tight" flag of a lepton from its
// identification, isolation and impact-parameter values.
package tightness

import (
	"fmt"
	"math"

	"github.com/okian/minintup/internal/domain/model"
)

// Rule is the flavour-specific definition of a tight lepton: every listed
// working point must be passed and the impact-parameter cuts, when
// positive, must hold on absolute values.
type Rule struct {
	WorkingPoints []model.WorkingPoint
	MaxD0Sig      float64
	MaxZ0SinTheta float64
}

// ParseRule builds a Rule from working point field names.
func ParseRule(workingPoints []string, maxD0Sig, maxZ0SinTheta float64) (Rule, error) {
	r := Rule{MaxD0Sig: maxD0Sig, MaxZ0SinTheta: maxZ0SinTheta}
	for _, name := range workingPoints {
		wp, ok := model.WorkingPointByField(name)
		if !ok {
			return Rule{}, fmt.Errorf("%w: %q", ErrUnknownWorkingPoint, name)
		}
		r.WorkingPoints = append(r.WorkingPoints, wp)
	}
	return r, nil
}

// Pass evaluates the rule on one lepton.
func (r Rule) Pass(l *model.LeptonRecord) bool {
	for _, wp := range r.WorkingPoints {
		if !l.WorkingPoints[wp] {
			return false
		}
	}
	if r.MaxD0Sig > 0 && math.Abs(l.D0Sig) >= r.MaxD0Sig {
		return false
	}
	if r.MaxZ0SinTheta > 0 && math.Abs(l.Z0SinTheta) >= r.MaxZ0SinTheta {
		return false
	}
	return true
}

// Classifier holds one Rule per flavour.
type Classifier struct {
	rules map[model.Flavour]Rule
}

// NewClassifier builds a classifier. Flavours without a rule are never tight.
func NewClassifier(rules map[model.Flavour]Rule) *Classifier {
	c := &Classifier{rules: make(map[model.Flavour]Rule, len(rules))}
	for f, r := range rules {
		c.rules[f] = r
	}
	return c
}

// IsTight reports whether the lepton passes the rule of its flavour.
func (c *Classifier) IsTight(l *model.LeptonRecord) bool {
	r, ok := c.rules[l.Flavour]
	if !ok {
		return false
	}
	return r.Pass(l)
}

// Apply sets Tight on every lepton.
func (c *Classifier) Apply(leptons []*model.LeptonRecord) {
	for _, l := range leptons {
		l.Tight = c.IsTight(l)
	}
}

// DefaultRules returns the standard tight definitions: tight likelihood
// electrons and medium muons, both with loose fixed-cut isolation.
func DefaultRules() map[model.Flavour]Rule {
	return map[model.Flavour]Rule{
		model.Electron: {
			WorkingPoints: []model.WorkingPoint{model.WPTightLH, model.WPIsoFixedCutLoose},
			MaxD0Sig:      5,
			MaxZ0SinTheta: 0.5,
		},
		model.Muon: {
			WorkingPoints: []model.WorkingPoint{model.WPMedium, model.WPIsoFixedCutLoose},
			MaxD0Sig:      3,
			MaxZ0SinTheta: 0.5,
		},
	}
}
