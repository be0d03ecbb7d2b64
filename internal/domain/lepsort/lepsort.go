// Package lepsort orders leptons by a configurable key. It is shared by the
// tag-and-probe tie-break and the output serializer so both rank leptons
// the same way.
package lepsort

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/minintup/internal/domain/model"
)

// ErrUnknownKey is returned for an unrecognised key name.
var ErrUnknownKey = errors.New("unknown sort key")

// Key selects the ranking quantity. The lepton that ranks first "wins".
type Key int

// Ranking keys.
const (
	// Pt ranks by transverse momentum, descending.
	Pt Key = iota
	// AbsEta ranks by |eta|, descending.
	AbsEta
	// TrackIsoOverPt ranks by track isolation over pT, ascending; equal
	// isolation falls back to pT descending.
	TrackIsoOverPt
	// DeltaRClosestBJet ranks by distance to the closest b-jet, descending.
	DeltaRClosestBJet
	// MassClosestBJet ranks by lepton-b-jet mass, descending.
	MassClosestBJet
)

var keyNames = map[Key]string{
	Pt:                "Pt",
	AbsEta:            "Eta",
	TrackIsoOverPt:    "TrackIsoOverPt",
	DeltaRClosestBJet: "DeltaRClosestBJet",
	MassClosestBJet:   "MassClosestBJet",
}

// String returns the configuration name of the key.
func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// ParseKey accepts the configuration names, case-insensitively.
func ParseKey(s string) (Key, error) {
	for k, n := range keyNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// Prefer reports whether a ranks strictly before b.
func (k Key) Prefer(a, b *model.LeptonRecord) bool {
	switch k {
	case AbsEta:
		return a.AbsEta() > b.AbsEta()
	case TrackIsoOverPt:
		if a.TrackIsoOverPt == b.TrackIsoOverPt {
			return a.Pt > b.Pt
		}
		return a.TrackIsoOverPt < b.TrackIsoOverPt
	case DeltaRClosestBJet:
		return a.DeltaRClosestBJet > b.DeltaRClosestBJet
	case MassClosestBJet:
		return a.MassClosestBJet > b.MassClosestBJet
	default:
		return a.Pt > b.Pt
	}
}

// Winner returns whichever of a and b ranks first; a wins full ties.
func (k Key) Winner(a, b *model.LeptonRecord) (winner, loser *model.LeptonRecord) {
	if k.Prefer(b, a) {
		return b, a
	}
	return a, b
}

// Order returns the positions of leptons sorted by k. Equal leptons keep
// their relative order.
func Order(leptons []*model.LeptonRecord, k Key) []int {
	idx := make([]int, len(leptons))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(i, j int) int {
		switch {
		case k.Prefer(leptons[i], leptons[j]):
			return -1
		case k.Prefer(leptons[j], leptons[i]):
			return 1
		default:
			return 0
		}
	})
	return idx
}
