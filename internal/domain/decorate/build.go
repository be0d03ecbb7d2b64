package decorate

import (
	"fmt"

	"github.com/okian/minintup/internal/domain/bjet"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/overlap"
	"github.com/okian/minintup/internal/domain/trigger"
)

// Input field names.
const (
	fieldRunNumber   = "RunNumber"
	fieldEventNumber = "EventNumber"
	fieldRunYear     = "RunYear"
	fieldChannel     = "mc_channel_number"
	fieldMCWeight    = "mcWeightOrg"
	fieldPileup      = "pileupEventWeight_090"
	fieldBTagWeight  = "MV2c10_70_EventWeight"
	fieldJVTWeight   = "JVT_EventWeight"
	fieldDilepType   = "dilep_type"
	fieldTrilepType  = "trilep_type"

	fieldElectronOR = "electron_passOR"
	fieldMuonOR     = "muon_passOR"

	fieldJetPt         = "jet_pt"
	fieldJetEta        = "jet_eta"
	fieldJetPhi        = "jet_phi"
	fieldJetE          = "jet_E"
	fieldJetBTag       = "jet_flavor_weight_MV2c10"
	fieldJetLabel      = "jet_flavor_truth_label"
	fieldJetLabelGhost = "jet_flavor_truth_label_ghost"
	fieldSelectedJets  = "selected_jets"

	fieldTruthJetPt  = "truth_jet_pt"
	fieldTruthJetEta = "truth_jet_eta"
	fieldTruthJetPhi = "truth_jet_phi"
	fieldTruthJetE   = "truth_jet_e"
)

// lepField returns the flat per-slot field name, e.g. lep_Pt_0.
func lepField(name string, slot int) string {
	return fmt.Sprintf("lep_%s_%d", name, slot)
}

// buildEvent reads the event-level scalars and the leptons.
func buildEvent(r *reader) *model.Event {
	ev := &model.Event{
		RunNumber:   uint32(r.int(fieldRunNumber, 0)),
		EventNumber: uint64(r.int(fieldEventNumber, 0)),
		RunYear:     int(r.int(fieldRunYear, 0)),
		Summary:     model.NewEventSummary(),
	}
	ev.IsMC = r.has(fieldChannel) && r.int(fieldChannel, 0) > 0
	ev.MCWeight, ev.PileupWeight, ev.BTagWeight, ev.JVTWeight = 1, 1, 1, 1
	if ev.IsMC {
		ev.MCWeight = r.float(fieldMCWeight, 1)
		ev.PileupWeight = r.float(fieldPileup, 1)
		ev.BTagWeight = r.float(fieldBTagWeight, 1)
		ev.JVTWeight = r.float(fieldJVTWeight, 1)
	}
	ev.DilepType = int(r.int(fieldDilepType, 0))
	ev.TrilepType = int(r.int(fieldTrilepType, 0))

	for slot := 0; slot < model.MaxLeptons; slot++ {
		if l := buildLepton(r, slot, ev.IsMC); l != nil {
			ev.Leptons = append(ev.Leptons, l)
		}
	}
	return ev
}

// buildLepton reads one slot. It returns nil for an empty slot.
func buildLepton(r *reader, slot int, isMC bool) *model.LeptonRecord {
	id := int(r.int(lepField("ID", slot), 0))
	f := model.FlavourFromID(id)
	if f == model.NoFlavour {
		return nil
	}
	pt := r.float(lepField("Pt", slot), model.UndefinedPt)
	if pt <= 0 {
		return nil
	}

	l := model.NewLeptonRecord(slot)
	l.ID, l.Flavour, l.Pt = id, f, pt
	l.Charge = 1
	if id > 0 {
		l.Charge = -1
	}
	l.Index = int(r.int(lepField("Index", slot), -1))
	l.E = r.float(lepField("E", slot), model.UndefinedPt)
	l.Eta = r.float(lepField("Eta", slot), model.UndefinedAngle)
	l.Phi = r.float(lepField("Phi", slot), model.UndefinedAngle)
	if f == model.Electron {
		l.EtaBE2 = r.float(lepField("EtaBE2", slot), model.UndefinedAngle)
	}
	l.D0Sig = r.float(lepField("sigd0PV", slot), model.UndefinedIP)
	l.Z0SinTheta = r.float(lepField("Z0SinTheta", slot), model.UndefinedIP)

	l.TopoEtcone20 = r.float(lepField("topoEtcone20", slot), model.UndefinedIso)
	l.PtVarcone20 = r.float(lepField("ptVarcone20", slot), model.UndefinedIso)
	l.PtVarcone30 = r.float(lepField("ptVarcone30", slot), model.UndefinedIso)
	trackIso := l.PtVarcone20
	if f == model.Muon {
		trackIso = l.PtVarcone30
	}
	if trackIso >= 0 {
		l.TrackIsoOverPt = trackIso / pt
	}
	if l.TopoEtcone20 != model.UndefinedIso {
		l.CaloIsoOverPt = l.TopoEtcone20 / pt
	}

	for wp := model.WorkingPoint(0); wp < model.NumWorkingPoints; wp++ {
		l.WorkingPoints[wp] = r.flag(lepField(wp.Field(), slot))
	}

	if isMC {
		l.Prompt = r.flag(lepField("isPrompt", slot))
		l.Brems = r.flag(lepField("isBrems", slot))
		l.Fake = r.flag(lepField("isFakeLep", slot))
		l.ChargeFlip = r.flag(lepField("isQMisID", slot))
		l.Conversion = r.flag(lepField("isConvPh", slot))
		l.TruthType = int(r.int(lepField("truthType", slot), 0))
		l.TruthOrigin = int(r.int(lepField("truthOrigin", slot), 0))
		readScaleFactors(r, slot, &l.SF)
	}
	return l
}

func readScaleFactors(r *reader, slot int, sf *model.ScaleFactors) {
	for _, s := range []struct {
		name string
		dst  *float64
		def  float64
	}{
		{"SFIDLoose", &sf.IDLoose, 1},
		{"SFIDTight", &sf.IDTight, 1},
		{"SFTrigLoose", &sf.TrigLoose, 1},
		{"SFTrigTight", &sf.TrigTight, 1},
		{"EffTrigLoose", &sf.EffTrigLoose, 0},
		{"EffTrigTight", &sf.EffTrigTight, 0},
		{"SFIsoLoose", &sf.IsoLoose, 1},
		{"SFIsoTight", &sf.IsoTight, 1},
		{"SFReco", &sf.Reco, 1},
		{"SFTTVA", &sf.TTVA, 1},
		{"SFObjLoose", &sf.ObjLoose, 1},
		{"SFObjTight", &sf.ObjTight, 1},
	} {
		*s.dst = r.float(lepField(s.name, slot), s.def)
	}
}

// triggerInputs collects the survival flags and the chain sequences.
func triggerInputs(r *reader, year int, m *trigger.Matcher) trigger.Inputs {
	in := trigger.Inputs{
		Year: year,
		Survived: map[model.Flavour][]bool{
			model.Electron: r.bools(fieldElectronOR),
			model.Muon:     r.bools(fieldMuonOR),
		},
		Matches: make(map[string][]bool),
	}
	for _, c := range m.Chains() {
		if !c.ValidFor(year) {
			continue
		}
		if _, done := in.Matches[c.Field()]; done {
			continue
		}
		in.Matches[c.Field()] = r.bools(c.Field())
	}
	return in
}

// buildJets returns the jets surviving overlap removal, in input order.
func buildJets(r *reader, isMC bool) []model.JetRecord {
	pt := r.floats(fieldJetPt)
	if len(pt) == 0 {
		return nil
	}
	eta, phi, e := r.floats(fieldJetEta), r.floats(fieldJetPhi), r.floats(fieldJetE)
	btag := r.floats(fieldJetBTag)

	var labels []int64
	if isMC {
		var ok bool
		if r.has(fieldJetLabelGhost) {
			labels, ok = r.ints(fieldJetLabelGhost)
		}
		if !ok {
			labels, _ = r.ints(fieldJetLabel)
		}
	}

	survived := make([]bool, len(pt))
	if sel, ok := r.ints(fieldSelectedJets); ok {
		idx := make([]int, len(sel))
		for i, v := range sel {
			idx[i] = int(v)
		}
		survived = overlap.FromIndices(len(pt), idx)
	} else {
		for i := range survived {
			survived[i] = true
		}
	}

	at := func(s []float64, i int, def float64) float64 {
		if i < len(s) {
			return s[i]
		}
		return def
	}
	positions := overlap.Survivors(survived)
	jets := make([]model.JetRecord, 0, len(positions))
	for _, p := range positions {
		j := model.JetRecord{
			Pt:         pt[p],
			Eta:        at(eta, p, model.UndefinedAngle),
			Phi:        at(phi, p, model.UndefinedAngle),
			E:          at(e, p, model.UndefinedPt),
			BTagWeight: at(btag, p, -1),
			TruthLabel: -1,
			TruthPt:    model.UndefinedPt,
			TruthEta:   model.UndefinedAngle,
			TruthPhi:   model.UndefinedAngle,
			TruthE:     model.UndefinedPt,
		}
		if p < len(labels) {
			j.TruthLabel = int(labels[p])
		}
		jets = append(jets, j)
	}
	return jets
}

type truthJet struct {
	pt, eta, phi, e float64
}

func buildTruthJets(r *reader) []truthJet {
	pt := r.floats(fieldTruthJetPt)
	if len(pt) == 0 {
		return nil
	}
	eta, phi, e := r.floats(fieldTruthJetEta), r.floats(fieldTruthJetPhi), r.floats(fieldTruthJetE)
	n := min(len(pt), len(eta), len(phi), len(e))
	out := make([]truthJet, n)
	for i := range out {
		out[i] = truthJet{pt: pt[i], eta: eta[i], phi: phi[i], e: e[i]}
	}
	return out
}

// JetFlavourFromLabel maps a truth label to a jet flavour.
func JetFlavourFromLabel(label int) model.JetFlavour {
	switch {
	case label == 5:
		return model.JetB
	case label == 4:
		return model.JetC
	case label == 21:
		return model.JetGluon
	case label >= 0 && label <= 3:
		return model.JetLight
	default:
		return model.JetUnknown
	}
}

// matchTruthJets links every jet to the closest truth jet within maxDR. The
// first truth jet wins ties.
func matchTruthJets(jets []model.JetRecord, truth []truthJet, maxDR float64) {
	for i := range jets {
		j := &jets[i]
		best, bestDR := -1, maxDR
		for k, t := range truth {
			if dr := bjet.DeltaR(j.Eta, j.Phi, t.eta, t.phi); dr < bestDR {
				best, bestDR = k, dr
			}
		}
		if best < 0 {
			continue
		}
		t := truth[best]
		j.TruthMatched = true
		j.TruthPt, j.TruthEta, j.TruthPhi, j.TruthE = t.pt, t.eta, t.phi, t.e
		j.Flavour = JetFlavourFromLabel(j.TruthLabel)
	}
}

// dilepType follows the input convention: 1 mumu, 2 emu, 3 ee.
func dilepType(leptons []*model.LeptonRecord) int {
	if len(leptons) != 2 {
		return 0
	}
	ne := 0
	for _, l := range leptons {
		if l.Flavour == model.Electron {
			ne++
		}
	}
	switch ne {
	case 0:
		return 1
	case 1:
		return 2
	default:
		return 3
	}
}

// eventFlags fills the multiplicities and the event-level flags.
func eventFlags(ev *model.Event) {
	s := &ev.Summary
	s.NLeptons = len(ev.Leptons)
	s.NElectrons = len(ev.Electrons())
	s.NMuons = len(ev.Muons())
	s.NBJets = len(ev.BJets)

	s.DilepType = ev.DilepType
	if s.DilepType == 0 {
		s.DilepType = dilepType(ev.Leptons)
	}
	s.Dilep = s.DilepType > 0 && s.NLeptons == 2
	s.Trilep = ev.TrilepType > 0 || s.NLeptons == 3

	sameSign := func(a, b int) bool {
		return a < len(ev.Leptons) && b < len(ev.Leptons) &&
			ev.Leptons[a].Charge*ev.Leptons[b].Charge > 0
	}
	s.IsSS01 = sameSign(0, 1)
	s.IsSS12 = sameSign(1, 2)

	for _, l := range ev.Leptons {
		if l.TrigMatched[model.DLT] {
			s.EventTrigMatchDLT = true
		}
	}
}
