package testevents

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/record"
	"github.com/okian/minintup/internal/domain/trigger"
)

// Kinematic ranges in GeV.
const (
	leadingPtMin   = 20.0
	leadingPtScale = 40.0
	subPtFloor     = 10.0
	etaMaxElectron = 2.47
	etaMaxMuon     = 2.5
	etaMaxJet      = 2.5
	jetPtMin       = 25.0
	jetPtScale     = 50.0
	muonMass       = 0.1057
)

// Object rates.
const (
	probOneLepton   = 0.1
	probTwoLeptons  = 0.6
	probElectron    = 0.5
	probTightID     = 0.7
	probIsolated    = 0.8
	probTrigMatch   = 0.75
	probRemoved     = 0.15
	probPrompt      = 0.85
	probChargeFlip  = 0.02
	probBrems       = 0.05
	probConversion  = 0.03
	probNegWeight   = 0.1
	probJetRemoved  = 0.1
	probTruthJet    = 0.9
	bTagMV2c10Range = 2.0
)

// Truth labels emitted for jets: light, charm, bottom.
var jetLabels = []int32{0, 0, 0, 4, 5}

// Generator produces synthetic input records. It is not safe for
// concurrent use.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	chains []trigger.Chain
	next   uint64
	seen   []uint64
}

// NewGenerator creates a generator seeded from cfg.Seed. Only chains active
// in cfg.Year get match sequences.
func NewGenerator(cfg Config) *Generator {
	var chains []trigger.Chain
	for _, c := range trigger.DefaultChains() {
		if c.ValidFor(cfg.Year) {
			chains = append(chains, c)
		}
	}
	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		chains: chains,
		next:   1,
	}
}

// Next fills out with the next record. duplicate is true when the record
// repeats the key of an earlier one. out is reset first.
func (g *Generator) Next(out *record.Output) (duplicate bool) {
	out.Reset()
	event := g.next
	if len(g.seen) > 0 && g.rng.Float64() < g.cfg.Duplicates {
		event = g.seen[g.rng.IntN(len(g.seen))]
		duplicate = true
	} else {
		g.seen = append(g.seen, event)
		g.next++
	}
	g.fill(out, event)
	return duplicate
}

type lepton struct {
	flavour model.Flavour
	charge  int
	pt      float64
	eta     float64
	phi     float64
	index   int
}

func (g *Generator) fill(out *record.Output, event uint64) {
	out.Set("RunNumber", g.cfg.RunNumber)
	out.Set("EventNumber", event)
	out.Set("RunYear", int32(g.cfg.Year))
	if g.cfg.MC {
		out.Set("mc_channel_number", int32(DefaultChannel))
		w := 1 + 0.2*g.rng.NormFloat64()
		if g.rng.Float64() < probNegWeight {
			w = -w
		}
		out.Set("mcWeightOrg", float32(w))
		out.Set("pileupEventWeight_090", float32(0.9+0.2*g.rng.Float64()))
		out.Set("MV2c10_70_EventWeight", float32(0.95+0.1*g.rng.Float64()))
		out.Set("JVT_EventWeight", float32(0.98+0.04*g.rng.Float64()))
	}

	leps := g.leptons()
	out.Set("dilep_type", int32(dilepType(leps)))
	out.Set("trilep_type", int32(0))
	for slot, l := range leps {
		g.fillLepton(out, slot, l)
	}
	g.fillSequences(out, leps)
	g.fillJets(out)
}

// leptons draws one to three leptons in descending pT.
func (g *Generator) leptons() []lepton {
	n := 3
	switch u := g.rng.Float64(); {
	case u < probOneLepton:
		n = 1
	case u < probOneLepton+probTwoLeptons:
		n = 2
	}
	leps := make([]lepton, n)
	pt := leadingPtMin + g.rng.ExpFloat64()*leadingPtScale
	counts := map[model.Flavour]int{}
	for i := range leps {
		f := model.Muon
		etaMax := etaMaxMuon
		if g.rng.Float64() < probElectron {
			f, etaMax = model.Electron, etaMaxElectron
		}
		charge := 1
		if g.rng.IntN(2) == 0 {
			charge = -1
		}
		leps[i] = lepton{
			flavour: f,
			charge:  charge,
			pt:      pt,
			eta:     (2*g.rng.Float64() - 1) * etaMax,
			phi:     (2*g.rng.Float64() - 1) * math.Pi,
			index:   counts[f],
		}
		counts[f]++
		pt = subPtFloor + (pt-subPtFloor)*g.rng.Float64()
	}
	return leps
}

func (g *Generator) fillLepton(out *record.Output, slot int, l lepton) {
	set := func(name string, v any) {
		out.Set("lep_"+name+"_"+strconv.Itoa(slot), v)
	}
	id := int32(l.flavour)
	if l.charge > 0 {
		id = -id
	}
	mass := 0.0
	if l.flavour == model.Muon {
		mass = muonMass
	}
	set("ID", id)
	set("Index", int32(l.index))
	set("Pt", float32(l.pt))
	set("E", float32(math.Sqrt(math.Pow(l.pt*math.Cosh(l.eta), 2)+mass*mass)))
	set("Eta", float32(l.eta))
	set("EtaBE2", float32(l.eta))
	set("Phi", float32(l.phi))
	set("sigd0PV", float32(g.rng.NormFloat64()*2))
	set("Z0SinTheta", float32(g.rng.NormFloat64()*0.3))
	set("ptVarcone20", float32(g.rng.ExpFloat64()*0.05*l.pt))
	set("ptVarcone30", float32(g.rng.ExpFloat64()*0.06*l.pt))
	set("topoEtcone20", float32(g.rng.ExpFloat64()*0.08*l.pt))

	tight := g.rng.Float64() < probTightID
	iso := g.rng.Float64() < probIsolated
	if l.flavour == model.Electron {
		set(model.WPTightLH.Field(), record.Flag(tight))
		set(model.WPMediumLH.Field(), record.Flag(true))
		set(model.WPLooseLH.Field(), record.Flag(true))
	} else {
		set(model.WPTight.Field(), record.Flag(tight && g.rng.Float64() < probTightID))
		set(model.WPMedium.Field(), record.Flag(tight))
		set(model.WPLoose.Field(), record.Flag(true))
	}
	set(model.WPIsoLooseTrackOnly.Field(), record.Flag(iso || g.rng.Float64() < 0.5))
	set(model.WPIsoLoose.Field(), record.Flag(iso))
	set(model.WPIsoFixedCutLoose.Field(), record.Flag(iso))
	set(model.WPIsoFixedCutTight.Field(), record.Flag(iso && g.rng.Float64() < probIsolated))
	set(model.WPIsoFixedCutTightTrackOnly.Field(), record.Flag(iso && g.rng.Float64() < probIsolated))

	if !g.cfg.MC {
		return
	}
	prompt := g.rng.Float64() < probPrompt
	set("isPrompt", record.Flag(prompt))
	set("isFakeLep", record.Flag(!prompt))
	set("isQMisID", record.Flag(l.flavour == model.Electron && g.rng.Float64() < probChargeFlip))
	set("isBrems", record.Flag(g.rng.Float64() < probBrems))
	set("isConvPh", record.Flag(l.flavour == model.Electron && g.rng.Float64() < probConversion))
	truthType, truthOrigin := int32(2), int32(10)
	if !prompt {
		truthType, truthOrigin = 3, 26
	}
	set("truthType", truthType)
	set("truthOrigin", truthOrigin)
}

// fillSequences writes the overlap-removal flags and trigger-match
// sequences. Removed objects are interleaved so that collection positions
// differ from the post-removal indices.
func (g *Generator) fillSequences(out *record.Output, leps []lepton) {
	for _, f := range []model.Flavour{model.Electron, model.Muon} {
		survived := []bool{}
		var kept []int
		for _, l := range leps {
			if l.flavour != f {
				continue
			}
			if g.rng.Float64() < probRemoved {
				survived = append(survived, false)
			}
			kept = append(kept, len(survived))
			survived = append(survived, true)
		}
		out.Set(f.String()+"_passOR", survived)
		for _, c := range g.chains {
			if c.Flavour != f {
				continue
			}
			if _, done := out.Get(c.Field()); done {
				continue
			}
			match := make([]bool, len(survived))
			for _, pos := range kept {
				match[pos] = g.rng.Float64() < probTrigMatch
			}
			out.Set(c.Field(), match)
		}
	}
}

func (g *Generator) fillJets(out *record.Output) {
	n := 0
	if g.cfg.MaxJets > 0 {
		n = g.rng.IntN(g.cfg.MaxJets + 1)
	}
	pt := make([]float32, n)
	eta := make([]float32, n)
	phi := make([]float32, n)
	e := make([]float32, n)
	btag := make([]float32, n)
	labels := make([]int32, n)
	selected := make([]int32, 0, n)
	tpt, teta := make([]float32, 0, n), make([]float32, 0, n)
	tphi, te := make([]float32, 0, n), make([]float32, 0, n)

	p := jetPtMin + g.rng.ExpFloat64()*jetPtScale*2
	for i := 0; i < n; i++ {
		pt[i] = float32(p)
		eta[i] = float32((2*g.rng.Float64() - 1) * etaMaxJet)
		phi[i] = float32((2*g.rng.Float64() - 1) * math.Pi)
		e[i] = float32(p * math.Cosh(float64(eta[i])))
		labels[i] = jetLabels[g.rng.IntN(len(jetLabels))]
		w := g.rng.Float64()*bTagMV2c10Range - 1
		if labels[i] == 5 {
			w = 1 - g.rng.Float64()*0.3
		}
		btag[i] = float32(w)
		if g.rng.Float64() >= probJetRemoved {
			selected = append(selected, int32(i))
		}
		if g.cfg.MC && g.rng.Float64() < probTruthJet {
			tpt = append(tpt, pt[i]*float32(0.9+0.2*g.rng.Float64()))
			teta = append(teta, eta[i]+float32(0.02*g.rng.NormFloat64()))
			tphi = append(tphi, phi[i]+float32(0.02*g.rng.NormFloat64()))
			te = append(te, e[i])
		}
		p = jetPtMin + (p-jetPtMin)*g.rng.Float64()
	}

	out.Set("jet_pt", pt)
	out.Set("jet_eta", eta)
	out.Set("jet_phi", phi)
	out.Set("jet_E", e)
	out.Set("jet_flavor_weight_MV2c10", btag)
	out.Set("selected_jets", selected)
	if !g.cfg.MC {
		return
	}
	out.Set("jet_flavor_truth_label_ghost", labels)
	out.Set("truth_jet_pt", tpt)
	out.Set("truth_jet_eta", teta)
	out.Set("truth_jet_phi", tphi)
	out.Set("truth_jet_e", te)
}

// dilepType follows the input convention: 1 mumu, 2 emu, 3 ee, 0 otherwise.
func dilepType(leps []lepton) int {
	if len(leps) != 2 {
		return 0
	}
	switch int(leps[0].flavour) + int(leps[1].flavour) {
	case int(model.Muon) * 2:
		return 1
	case int(model.Electron) + int(model.Muon):
		return 2
	default:
		return 3
	}
}
