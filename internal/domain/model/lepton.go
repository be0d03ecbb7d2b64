package model

// WorkingPoint enumerates the identification and isolation flags read from
// the input record. The set is fixed; which of them define "tight" is
// configuration.
type WorkingPoint int

// Working point flags.
const (
	WPTightLH WorkingPoint = iota
	WPMediumLH
	WPLooseLH
	WPTight
	WPMedium
	WPLoose
	WPIsoLooseTrackOnly
	WPIsoLoose
	WPIsoFixedCutTight
	WPIsoFixedCutTightTrackOnly
	WPIsoFixedCutLoose
	NumWorkingPoints
)

// workingPointFields maps each working point to its input field stem.
var workingPointFields = [NumWorkingPoints]string{
	WPTightLH:                   "isTightLH",
	WPMediumLH:                  "isMediumLH",
	WPLooseLH:                   "isLooseLH",
	WPTight:                     "isTight",
	WPMedium:                    "isMedium",
	WPLoose:                     "isLoose",
	WPIsoLooseTrackOnly:         "isolationLooseTrackOnly",
	WPIsoLoose:                  "isolationLoose",
	WPIsoFixedCutTight:          "isolationFixedCutTight",
	WPIsoFixedCutTightTrackOnly: "isolationFixedCutTightTrackOnly",
	WPIsoFixedCutLoose:          "isolationFixedCutLoose",
}

// Field returns the input field stem, e.g. "isTightLH".
func (wp WorkingPoint) Field() string {
	if wp < 0 || wp >= NumWorkingPoints {
		return ""
	}
	return workingPointFields[wp]
}

// WorkingPointByField resolves an input field stem.
func WorkingPointByField(name string) (WorkingPoint, bool) {
	for wp, f := range workingPointFields {
		if f == name {
			return WorkingPoint(wp), true
		}
	}
	return 0, false
}

// ScaleFactors holds the per-lepton efficiency corrections. Scale factors
// default to 1, efficiencies to 0.
type ScaleFactors struct {
	IDLoose      float64
	IDTight      float64
	TrigLoose    float64
	TrigTight    float64
	EffTrigLoose float64
	EffTrigTight float64
	IsoLoose     float64
	IsoTight     float64
	Reco         float64
	TTVA         float64
	ObjLoose     float64
	ObjTight     float64
}

// NeutralScaleFactors returns the default corrections.
func NeutralScaleFactors() ScaleFactors {
	return ScaleFactors{
		IDLoose: 1, IDTight: 1,
		TrigLoose: 1, TrigTight: 1,
		IsoLoose: 1, IsoTight: 1,
		Reco: 1, TTVA: 1,
		ObjLoose: 1, ObjTight: 1,
	}
}

// LeptonRecord is one reconstructed electron or muon.
type LeptonRecord struct {
	// Slot is the position in the flat input (0, 1 or 2).
	Slot int
	// Index is the position in the post-overlap-removal collection of its flavour.
	Index int

	Pt     float64
	E      float64
	Eta    float64
	EtaBE2 float64
	Phi    float64

	ID      int
	Flavour Flavour
	Charge  float64

	D0Sig      float64
	Z0SinTheta float64

	TrackIsoOverPt float64
	CaloIsoOverPt  float64
	PtVarcone20    float64
	PtVarcone30    float64
	TopoEtcone20   float64

	WorkingPoints [NumWorkingPoints]bool
	Tight         bool

	TrigMatched [NumTiers]bool

	Prompt      bool
	Fake        bool
	Brems       bool
	ChargeFlip  bool
	Conversion  bool
	TruthType   int
	TruthOrigin int

	Tag   [NumTiers]bool
	Probe [NumTiers]bool

	DeltaRClosestBJet float64
	MassClosestBJet   float64

	SF ScaleFactors
}

// NewLeptonRecord returns a record with every field at its sentinel value.
func NewLeptonRecord(slot int) *LeptonRecord {
	return &LeptonRecord{
		Slot:              slot,
		Index:             -1,
		Pt:                UndefinedPt,
		E:                 UndefinedPt,
		Eta:               UndefinedAngle,
		EtaBE2:            UndefinedAngle,
		Phi:               UndefinedAngle,
		Charge:            UndefinedCharge,
		D0Sig:             UndefinedIP,
		Z0SinTheta:        UndefinedIP,
		TrackIsoOverPt:    UndefinedIso,
		CaloIsoOverPt:     UndefinedIso,
		PtVarcone20:       UndefinedIso,
		PtVarcone30:       UndefinedIso,
		TopoEtcone20:      UndefinedIso,
		DeltaRClosestBJet: UndefinedBJetDR,
		MassClosestBJet:   UndefinedBJetM,
		SF:                NeutralScaleFactors(),
	}
}

// AbsEta returns |eta|.
func (l *LeptonRecord) AbsEta() float64 {
	if l.Eta < 0 {
		return -l.Eta
	}
	return l.Eta
}

// BJetRecord is a jet passing the b-tag working point.
type BJetRecord struct {
	Pt  float64
	Eta float64
	Phi float64
	E   float64
}

// JetFlavour classifies the parton origin of a truth-matched jet.
type JetFlavour int

// Jet flavours.
const (
	JetUnknown JetFlavour = iota
	JetB
	JetC
	JetLight
	JetGluon
)

// JetRecord is a jet surviving overlap removal with its truth association.
type JetRecord struct {
	Pt  float64
	Eta float64
	Phi float64
	E   float64

	BTagWeight float64
	TruthLabel int

	TruthMatched bool
	TruthPt      float64
	TruthEta     float64
	TruthPhi     float64
	TruthE       float64
	Flavour      JetFlavour
}
