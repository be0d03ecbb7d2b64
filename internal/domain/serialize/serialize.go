// Package serialize projects a decorated event into a flat output record.
// Every field is produced from an enumerated column table; the record is
// cleared before each event so no value survives from the previous one.
package serialize

import (
	"fmt"

	"github.com/okian/minintup/internal/domain/lepsort"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/record"
)

// SortKeys selects the ordering of each lepton sequence group.
type SortKeys struct {
	Electron lepsort.Key
	Muon     lepsort.Key
	Lepton   lepsort.Key
}

// DefaultSortKeys orders every group by descending pT.
func DefaultSortKeys() SortKeys {
	return SortKeys{Electron: lepsort.Pt, Muon: lepsort.Pt, Lepton: lepsort.Pt}
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithSortKeys sets the per-group sort keys.
func WithSortKeys(k SortKeys) Option {
	return func(s *Serializer) {
		s.keys = k
	}
}

// WithTiers sets the tiers whose Tag/Probe field sets are written.
func WithTiers(tiers ...model.Tier) Option {
	return func(s *Serializer) {
		if len(tiers) > 0 {
			s.tiers = append([]model.Tier(nil), tiers...)
		}
	}
}

// Serializer writes output records. It holds no per-event state.
type Serializer struct {
	keys  SortKeys
	tiers []model.Tier
	roles [model.NumTiers][]column
	blank *model.LeptonRecord
}

// New creates a serializer.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		keys:  DefaultSortKeys(),
		tiers: []model.Tier{model.SLT},
		blank: model.NewLeptonRecord(-1),
	}
	for _, opt := range opts {
		opt(s)
	}
	for t := model.Tier(0); t < model.NumTiers; t++ {
		s.roles[t] = roleColumns(t)
	}
	return s
}

// Serialize resets out and writes every output field of ev.
func (s *Serializer) Serialize(ev *model.Event, out *record.Output) {
	out.Reset()
	s.summary(ev, out)
	s.slots(ev, out)
	s.sequences(ev, out)
	s.tagProbe(ev, out)
	s.jets(ev, out)
}

func (s *Serializer) summary(ev *model.Event, out *record.Output) {
	sum := &ev.Summary
	out.Set("RunNumber", ev.RunNumber)
	out.Set("EventNumber", ev.EventNumber)
	out.Set("isSS01", record.Flag(sum.IsSS01))
	out.Set("isSS12", record.Flag(sum.IsSS12))
	out.Set("dilep", record.Flag(sum.Dilep))
	out.Set("trilep", record.Flag(sum.Trilep))
	out.Set("dilep_type", int32(sum.DilepType))
	out.Set("nbjets", int32(sum.NBJets))
	out.Set("nleptons", int32(sum.NLeptons))
	out.Set("nelectrons", int32(sum.NElectrons))
	out.Set("nmuons", int32(sum.NMuons))
	out.Set("event_isTrigMatch_DLT", record.Flag(sum.EventTrigMatchDLT))
	for _, t := range s.tiers {
		out.Set("isBadTPEvent_"+t.String(), record.Flag(sum.NoValidTag[t]))
	}
	for _, st := range model.AllTPStates() {
		out.Set("is_"+st.String(), record.Flag(sum.State == st))
	}
	out.Set("weight_event", float32(sum.WeightEvent))
	for t := model.Tier(0); t < model.NumTiers; t++ {
		out.Set("weight_event_trig_"+t.String(), float32(sum.WeightEventTrig[t]))
	}
	out.Set("weight_event_lep", float32(sum.WeightEventLep))
	out.Set("weight_lep_tag", float32(sum.WeightLepTag))
	out.Set("weight_lep_probe", float32(sum.WeightLepProbe))
	out.Set("weight_trig_tag", float32(sum.WeightTrigTag))
	out.Set("weight_trig_probe", float32(sum.WeightTrigProbe))
}

// slots writes the flat per-slot scalars; an empty slot gets the sentinels.
func (s *Serializer) slots(ev *model.Event, out *record.Output) {
	var bySlot [model.MaxLeptons]*model.LeptonRecord
	for _, l := range ev.Leptons {
		if l.Slot >= 0 && l.Slot < model.MaxLeptons {
			bySlot[l.Slot] = l
		}
	}
	for i, l := range bySlot {
		if l == nil {
			l = s.blank
		}
		out.Set(fmt.Sprintf("lep_isTightSelected_%d", i), record.Flag(l.Tight))
		out.Set(fmt.Sprintf("lep_deltaRClosestBJet_%d", i), float32(l.DeltaRClosestBJet))
		for t := model.Tier(0); t < model.NumTiers; t++ {
			out.Set(fmt.Sprintf("lep_isTrigMatch_%s_%d", t, i), record.Flag(l.TrigMatched[t]))
		}
	}
}

func (s *Serializer) sequences(ev *model.Event, out *record.Output) {
	group := func(prefix string, leptons []*model.LeptonRecord, key lepsort.Key, cols []column) {
		order := lepsort.Order(leptons, key)
		for _, c := range cols {
			out.Set(prefix+c.name, c.vector(leptons, order))
		}
	}
	group("electron_", ev.Electrons(), s.keys.Electron, electronColumns)
	group("muon_", ev.Muons(), s.keys.Muon, muonColumns)
	group("lep_", ev.Leptons, s.keys.Lepton, leptonColumns)
}

// tagProbe writes each role twice: as a scalar and as a sequence holding
// every lepton with the role, or empty when the role is not assigned.
func (s *Serializer) tagProbe(ev *model.Event, out *record.Output) {
	for _, t := range s.tiers {
		for _, role := range []struct {
			name string
			tag  bool
		}{{"Tag", true}, {"Probe", false}} {
			l := ev.Role(t, role.tag)
			leptons := ev.Roles(t, role.tag)
			order := make([]int, len(leptons))
			for i := range order {
				order[i] = i
			}
			if l == nil {
				l = s.blank
			}
			prefix := fmt.Sprintf("lep_%s_%s_", role.name, t)
			for _, c := range s.roles[t] {
				out.Set(prefix+c.name, c.scalar(l))
				out.Set(prefix+c.name+"_VEC", c.vector(leptons, order))
			}
		}
	}
}

func (s *Serializer) jets(ev *model.Event, out *record.Output) {
	n := len(ev.Jets)
	pt, eta, phi, e := make([]float32, n), make([]float32, n), make([]float32, n), make([]float32, n)
	tpt, teta, tphi, te := make([]float32, n), make([]float32, n), make([]float32, n), make([]float32, n)
	isB, isC, isL, isG := make([]int8, n), make([]int8, n), make([]int8, n), make([]int8, n)
	for i, j := range ev.Jets {
		pt[i], eta[i], phi[i], e[i] = float32(j.Pt), float32(j.Eta), float32(j.Phi), float32(j.E)
		tpt[i], teta[i], tphi[i], te[i] = float32(j.TruthPt), float32(j.TruthEta), float32(j.TruthPhi), float32(j.TruthE)
		isB[i] = record.Flag(j.Flavour == model.JetB)
		isC[i] = record.Flag(j.Flavour == model.JetC)
		isL[i] = record.Flag(j.Flavour == model.JetLight)
		isG[i] = record.Flag(j.Flavour == model.JetGluon)
	}
	out.Set("jet_OR_Pt", pt)
	out.Set("jet_OR_Eta", eta)
	out.Set("jet_OR_Phi", phi)
	out.Set("jet_OR_E", e)
	out.Set("jet_OR_truthMatch_Pt", tpt)
	out.Set("jet_OR_truthMatch_Eta", teta)
	out.Set("jet_OR_truthMatch_Phi", tphi)
	out.Set("jet_OR_truthMatch_E", te)
	out.Set("jet_OR_truthMatch_isBJet", isB)
	out.Set("jet_OR_truthMatch_isCJet", isC)
	out.Set("jet_OR_truthMatch_isLFJet", isL)
	out.Set("jet_OR_truthMatch_isGluonJet", isG)
}
