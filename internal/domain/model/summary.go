package model

// TPState is the tightness configuration of the two leading leptons.
type TPState int

// Tag-and-probe states. Exactly one holds for an event with two or more
// leptons; NoState otherwise.
const (
	NoState TPState = iota
	TightTight
	TightAntiTight
	AntiTightTight
	AntiTightAntiTight
	TightElAntiTightMu
	TightMuAntiTightEl
	AntiTightElTightMu
	AntiTightMuTightEl
)

var tpStateNames = map[TPState]string{
	NoState:            "none",
	TightTight:         "T_T",
	TightAntiTight:     "T_AntiT",
	AntiTightTight:     "AntiT_T",
	AntiTightAntiTight: "AntiT_AntiT",
	TightElAntiTightMu: "Tel_AntiTmu",
	TightMuAntiTightEl: "Tmu_AntiTel",
	AntiTightElTightMu: "AntiTel_Tmu",
	AntiTightMuTightEl: "AntiTmu_Tel",
}

// String returns the suffix used in the is_<state> output flags.
func (s TPState) String() string {
	if n, ok := tpStateNames[s]; ok {
		return n
	}
	return "unknown"
}

// AllTPStates lists the eight states in output order.
func AllTPStates() []TPState {
	return []TPState{
		TightTight, TightAntiTight, AntiTightTight, AntiTightAntiTight,
		TightElAntiTightMu, TightMuAntiTightEl, AntiTightElTightMu, AntiTightMuTightEl,
	}
}

// Symmetric reports whether the state needs a tie-break between the leptons.
func (s TPState) Symmetric() bool {
	return s == TightTight || s == AntiTightAntiTight
}

// EventSummary holds the event-level decorations.
type EventSummary struct {
	IsSS01    bool
	IsSS12    bool
	Dilep     bool
	Trilep    bool
	DilepType int
	NBJets    int

	NLeptons   int
	NElectrons int
	NMuons     int

	State TPState
	// NoValidTag is true when no tag lepton was found for the tier.
	NoValidTag [NumTiers]bool

	EventTrigMatchDLT bool

	WeightEvent     float64
	WeightEventTrig [NumTiers]float64
	WeightEventLep  float64

	WeightLepTag    float64
	WeightLepProbe  float64
	WeightTrigTag   float64
	WeightTrigProbe float64
}

// NewEventSummary returns the summary with its pessimistic defaults.
func NewEventSummary() EventSummary {
	return EventSummary{
		NoValidTag:      [NumTiers]bool{true, true},
		WeightEvent:     1,
		WeightEventTrig: [NumTiers]float64{1, 1},
		WeightEventLep:  1,
		WeightLepTag:    1,
		WeightLepProbe:  1,
		WeightTrigTag:   1,
		WeightTrigProbe: 1,
	}
}
