package serialize

import (
	"github.com/okian/minintup/internal/domain/model"
)

type kind int

const (
	floatKind kind = iota // float32
	intKind               // int32
	flagKind              // int8
)

// column maps one typed lepton attribute to an output name suffix.
type column struct {
	name string
	kind kind
	get  func(l *model.LeptonRecord) float64
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var (
	colPt        = column{"pt", floatKind, func(l *model.LeptonRecord) float64 { return l.Pt }}
	colEta       = column{"eta", floatKind, func(l *model.LeptonRecord) float64 { return l.Eta }}
	colEtaBE2    = column{"EtaBE2", floatKind, func(l *model.LeptonRecord) float64 { return l.EtaBE2 }}
	colPhi       = column{"phi", floatKind, func(l *model.LeptonRecord) float64 { return l.Phi }}
	colTight     = column{"isTightSelected", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.Tight) }}
	colD0Sig     = column{"sigd0PV", floatKind, func(l *model.LeptonRecord) float64 { return l.D0Sig }}
	colZ0        = column{"z0SinTheta", floatKind, func(l *model.LeptonRecord) float64 { return l.Z0SinTheta }}
	colDRBJet    = column{"deltaRClosestBJet", floatKind, func(l *model.LeptonRecord) float64 { return l.DeltaRClosestBJet }}
	colVarcone20 = column{"ptvarcone20", floatKind, func(l *model.LeptonRecord) float64 { return l.PtVarcone20 }}
	colVarcone30 = column{"ptvarcone30", floatKind, func(l *model.LeptonRecord) float64 { return l.PtVarcone30 }}
	colEtcone20  = column{"topoetcone20", floatKind, func(l *model.LeptonRecord) float64 { return l.TopoEtcone20 }}
	colType      = column{"truthType", intKind, func(l *model.LeptonRecord) float64 { return float64(l.TruthType) }}
	colOrigin    = column{"truthOrigin", intKind, func(l *model.LeptonRecord) float64 { return float64(l.TruthOrigin) }}
	colPrompt    = column{"isPrompt", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.Prompt) }}
	colFake      = column{"isFakeLep", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.Fake) }}
	colBrems     = column{"isBrems", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.Brems) }}
	colQMisID    = column{"isQMisID", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.ChargeFlip) }}
	colConv      = column{"isConvPh", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.Conversion) }}
)

// electronColumns are written as electron_<name> sequences.
var electronColumns = []column{
	colPt, colEta, colEtaBE2, colPhi, colTight, colD0Sig, colZ0, colDRBJet,
	colVarcone20, colEtcone20, colType, colOrigin,
	colPrompt, colFake, colBrems, colQMisID, colConv,
}

// muonColumns are written as muon_<name> sequences.
var muonColumns = []column{
	colPt, colEta, colPhi, colTight, colD0Sig, colZ0, colDRBJet,
	colVarcone30, colType, colOrigin,
	colPrompt, colFake, colBrems, colQMisID, colConv,
}

// leptonColumns are written as lep_<name> sequences over both flavours.
var leptonColumns = []column{
	{"Pt", floatKind, colPt.get},
	{"Eta", floatKind, colEta.get},
	{"EtaBE2", floatKind, colEtaBE2.get},
	{"deltaRClosestBJet", floatKind, colDRBJet.get},
	{"ID", intKind, func(l *model.LeptonRecord) float64 { return float64(l.ID) }},
	{"isTightSelected", flagKind, colTight.get},
}

// roleColumns are written as lep_<Role>_<tier>_<name> scalars and _VEC
// single-element sequences. The trigger-match column depends on the tier.
func roleColumns(tier model.Tier) []column {
	return []column{
		{"Pt", floatKind, colPt.get},
		{"Eta", floatKind, colEta.get},
		{"EtaBE2", floatKind, colEtaBE2.get},
		{"Phi", floatKind, colPhi.get},
		{"ptVarcone20", floatKind, colVarcone20.get},
		{"ptVarcone30", floatKind, colVarcone30.get},
		{"topoEtcone20", floatKind, colEtcone20.get},
		{"sigd0PV", floatKind, colD0Sig.get},
		{"Z0SinTheta", floatKind, colZ0.get},
		{"ID", intKind, func(l *model.LeptonRecord) float64 { return float64(l.ID) }},
		{"deltaRClosestBJet", floatKind, colDRBJet.get},
		{"massClosestBJet", floatKind, func(l *model.LeptonRecord) float64 { return l.MassClosestBJet }},
		{"isTrigMatch", flagKind, func(l *model.LeptonRecord) float64 { return flag(l.TrigMatched[tier]) }},
		{"isTightSelected", flagKind, colTight.get},
		{"isPrompt", flagKind, colPrompt.get},
		{"isBrems", flagKind, colBrems.get},
		{"isFakeLep", flagKind, colFake.get},
		{"isQMisID", flagKind, colQMisID.get},
		{"isConvPh", flagKind, colConv.get},
		{"truthType", intKind, colType.get},
		{"truthOrigin", intKind, colOrigin.get},
	}
}

func (c column) scalar(l *model.LeptonRecord) any {
	v := c.get(l)
	switch c.kind {
	case intKind:
		return int32(v)
	case flagKind:
		return int8(v)
	default:
		return float32(v)
	}
}

func (c column) vector(leptons []*model.LeptonRecord, order []int) any {
	switch c.kind {
	case intKind:
		out := make([]int32, len(order))
		for i, j := range order {
			out[i] = int32(c.get(leptons[j]))
		}
		return out
	case flagKind:
		out := make([]int8, len(order))
		for i, j := range order {
			out[i] = int8(c.get(leptons[j]))
		}
		return out
	default:
		out := make([]float32, len(order))
		for i, j := range order {
			out[i] = float32(c.get(leptons[j]))
		}
		return out
	}
}
