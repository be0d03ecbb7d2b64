// Package model contains the per-event object model passed between the
// decoration stages. Every value here is owned by a single event pass and
// discarded once the output record has been written.
package model

// MaxLeptons is the number of leading leptons carried by the flat input.
const MaxLeptons = 3

// Sentinel values for undefined quantities.
const (
	UndefinedPt     = -1.0
	UndefinedAngle  = -999.0
	UndefinedBJetDR = -1.0
	UndefinedBJetM  = -1.0
	UndefinedIso    = -1.0
	UndefinedIP     = -999.0
	UndefinedCharge = -999.0
)

// Flavour is the absolute PDG code of a charged lepton.
type Flavour int

// Lepton flavours.
const (
	NoFlavour Flavour = 0
	Electron  Flavour = 11
	Muon      Flavour = 13
)

// String returns the short collection name used for field prefixes.
func (f Flavour) String() string {
	switch f {
	case Electron:
		return "electron"
	case Muon:
		return "muon"
	default:
		return "unknown"
	}
}

// FlavourFromID maps a signed PDG code to a flavour.
func FlavourFromID(id int) Flavour {
	if id < 0 {
		id = -id
	}
	switch Flavour(id) {
	case Electron:
		return Electron
	case Muon:
		return Muon
	default:
		return NoFlavour
	}
}

// Tier identifies a trigger category.
type Tier int

// Trigger tiers.
const (
	SLT Tier = iota // single-lepton triggers
	DLT             // dilepton triggers
	NumTiers
)

// String returns the tier tag used in output field names.
func (t Tier) String() string {
	switch t {
	case SLT:
		return "SLT"
	case DLT:
		return "DLT"
	default:
		return "unknown"
	}
}

// ParseTier parses "SLT" or "DLT".
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "SLT":
		return SLT, true
	case "DLT":
		return DLT, true
	default:
		return 0, false
	}
}

// Event is the in-memory view of one input record after the object model
// build. Leptons keep the input order (descending pT), Jets are the jets
// surviving overlap removal in their original relative order.
type Event struct {
	RunNumber   uint32
	EventNumber uint64
	RunYear     int
	IsMC        bool

	MCWeight     float64
	PileupWeight float64
	BTagWeight   float64
	JVTWeight    float64

	DilepType  int
	TrilepType int

	Leptons []*LeptonRecord
	BJets   []BJetRecord
	Jets    []JetRecord

	Summary EventSummary
}

// Electrons returns the leptons with electron flavour, preserving order.
func (e *Event) Electrons() []*LeptonRecord { return e.byFlavour(Electron) }

// Muons returns the leptons with muon flavour, preserving order.
func (e *Event) Muons() []*LeptonRecord { return e.byFlavour(Muon) }

func (e *Event) byFlavour(f Flavour) []*LeptonRecord {
	out := make([]*LeptonRecord, 0, len(e.Leptons))
	for _, l := range e.Leptons {
		if l.Flavour == f {
			out = append(out, l)
		}
	}
	return out
}

// Role returns the lepton holding the given role for a tier, or nil. When a
// lepton holds both roles the Probe is the first Probe other than the Tag.
func (e *Event) Role(tier Tier, tag bool) *LeptonRecord {
	if tag {
		for _, l := range e.Leptons {
			if l.Tag[tier] {
				return l
			}
		}
		return nil
	}
	t := e.Role(tier, true)
	var fallback *LeptonRecord
	for _, l := range e.Leptons {
		if !l.Probe[tier] {
			continue
		}
		if l != t {
			return l
		}
		fallback = l
	}
	return fallback
}

// Roles returns every lepton holding the given role for a tier, in input
// order.
func (e *Event) Roles(tier Tier, tag bool) []*LeptonRecord {
	var out []*LeptonRecord
	for _, l := range e.Leptons {
		if (tag && l.Tag[tier]) || (!tag && l.Probe[tier]) {
			out = append(out, l)
		}
	}
	return out
}
