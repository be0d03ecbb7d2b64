// Package trigger combines per-chain trigger-match sequences into one
// match flag per lepton and trigger tier.
package trigger

import (
	"slices"

	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/overlap"
)

// Chain describes one trigger chain and the data-taking years it was active.
type Chain struct {
	Name    string
	Flavour model.Flavour
	Tier    model.Tier
	Years   []int
}

// Field returns the input sequence name, e.g. "electron_match_HLT_e60_lhmedium".
func (c Chain) Field() string {
	return c.Flavour.String() + "_match_" + c.Name
}

// ValidFor reports whether the chain was active in year.
func (c Chain) ValidFor(year int) bool {
	return slices.Contains(c.Years, year)
}

// Inputs are the per-event sequences needed for matching.
type Inputs struct {
	Year int
	// Survived holds the overlap-removal survival flags per flavour.
	Survived map[model.Flavour][]bool
	// Matches holds the pre-removal match sequences keyed by Chain.Field.
	Matches map[string][]bool
}

// Matcher evaluates trigger matching against a fixed chain table.
type Matcher struct {
	chains []Chain
}

// NewMatcher builds a matcher for the given chain table.
func NewMatcher(chains []Chain) *Matcher {
	return &Matcher{chains: slices.Clone(chains)}
}

// Chains returns the configured chain table.
func (m *Matcher) Chains() []Chain { return slices.Clone(m.chains) }

// Fields returns the distinct input sequence names the table reads.
func (m *Matcher) Fields() []string {
	out := make([]string, 0, len(m.chains))
	for _, c := range m.chains {
		if f := c.Field(); !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Match returns the per-tier match flags for one lepton. resolved is false
// when the lepton's pre-removal position could not be found; every tier is
// then unmatched. Chains not valid for the year and missing or short
// sequences contribute false.
func (m *Matcher) Match(lep *model.LeptonRecord, in Inputs) (tiers [model.NumTiers]bool, resolved bool) {
	pos, ok := overlap.PreORPosition(lep.Index, in.Survived[lep.Flavour])
	if !ok {
		return tiers, false
	}
	for _, c := range m.chains {
		if c.Flavour != lep.Flavour || !c.ValidFor(in.Year) {
			continue
		}
		seq := in.Matches[c.Field()]
		if pos < len(seq) && seq[pos] {
			tiers[c.Tier] = true
		}
	}
	return tiers, true
}

// Apply sets TrigMatched on every lepton and returns how many leptons could
// not be resolved.
func (m *Matcher) Apply(leptons []*model.LeptonRecord, in Inputs) (misses int) {
	for _, l := range leptons {
		tiers, ok := m.Match(l, in)
		l.TrigMatched = tiers
		if !ok {
			misses++
		}
	}
	return misses
}

var (
	y2015     = []int{2015}
	y2016     = []int{2016}
	y20152016 = []int{2015, 2016}
)

// DefaultChains returns the 2015/2016 chain table.
func DefaultChains() []Chain {
	el, mu := model.Electron, model.Muon
	slt, dlt := model.SLT, model.DLT
	return []Chain{
		// 2015
		{Name: "HLT_e24_lhmedium_L1EM20VH", Flavour: el, Tier: slt, Years: y2015},
		{Name: "HLT_e60_lhmedium", Flavour: el, Tier: slt, Years: y2015},
		{Name: "HLT_e120_lhloose", Flavour: el, Tier: slt, Years: y2015},
		{Name: "HLT_2e12_lhloose_L12EM10VH", Flavour: el, Tier: dlt, Years: y2015},
		{Name: "HLT_e24_medium_L1EM20VHI_mu8noL1", Flavour: el, Tier: dlt, Years: y2015},
		{Name: "HLT_e7_medium_mu24", Flavour: el, Tier: dlt, Years: y2015},
		{Name: "HLT_mu20_iloose_L1MU15", Flavour: mu, Tier: slt, Years: y2015},
		{Name: "HLT_mu18_mu8noL1", Flavour: mu, Tier: dlt, Years: y2015},
		{Name: "HLT_e24_medium_L1EM20VHI_mu8noL1", Flavour: mu, Tier: dlt, Years: y2015},
		{Name: "HLT_e7_medium_mu24", Flavour: mu, Tier: dlt, Years: y2015},
		// 2016
		{Name: "HLT_e26_lhtight_nod0_ivarloose", Flavour: el, Tier: slt, Years: y2016},
		{Name: "HLT_e60_lhmedium_nod0", Flavour: el, Tier: slt, Years: y2016},
		{Name: "HLT_e140_lhloose_nod0", Flavour: el, Tier: slt, Years: y2016},
		{Name: "HLT_2e17_lhvloose_nod0", Flavour: el, Tier: dlt, Years: y2016},
		{Name: "HLT_e17_lhloose_mu14", Flavour: el, Tier: dlt, Years: y2016},
		{Name: "HLT_e17_lhloose_nod0_mu14", Flavour: el, Tier: dlt, Years: y2016},
		{Name: "HLT_e7_lhmedium_mu24", Flavour: el, Tier: dlt, Years: y2016},
		{Name: "HLT_mu26_ivarmedium", Flavour: mu, Tier: slt, Years: y2016},
		{Name: "HLT_mu22_mu8noL1", Flavour: mu, Tier: dlt, Years: y2016},
		{Name: "HLT_e17_lhloose_mu14", Flavour: mu, Tier: dlt, Years: y2016},
		{Name: "HLT_e17_lhloose_nod0_mu14", Flavour: mu, Tier: dlt, Years: y2016},
		// both years
		{Name: "HLT_mu50", Flavour: mu, Tier: slt, Years: y20152016},
	}
}
