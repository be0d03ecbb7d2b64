// Package bjet associates leptons with their closest b-tagged jet.
package bjet

import (
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/okian/minintup/internal/domain/model"
)

// p4 builds a four-momentum from transverse momentum, pseudorapidity,
// azimuth and energy.
func p4(pt, eta, phi, e float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(pt*math.Cos(phi), pt*math.Sin(phi), pt*math.Sinh(eta), e)
}

// DeltaPhi returns phi1-phi2 wrapped into [-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	return math.Remainder(phi1-phi2, 2*math.Pi)
}

// DeltaR returns sqrt(deta^2 + dphi^2).
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	return math.Hypot(eta1-eta2, DeltaPhi(phi1, phi2))
}

// energy returns e, or the massless energy pt*cosh(eta) when e carries the
// undefined sentinel. ok is false when neither is available.
func energy(pt, eta, e float64) (float64, bool) {
	switch {
	case e >= 0:
		return e, true
	case pt >= 0 && eta != model.UndefinedAngle:
		return pt * math.Cosh(eta), true
	default:
		return 0, false
	}
}

// InvariantMass returns the mass of the lepton-jet system, or
// model.UndefinedBJetM when a momentum or energy is undefined.
func InvariantMass(l *model.LeptonRecord, j model.BJetRecord) float64 {
	if l.Pt < 0 || j.Pt < 0 || l.Phi == model.UndefinedAngle || j.Phi == model.UndefinedAngle {
		return model.UndefinedBJetM
	}
	le, lok := energy(l.Pt, l.Eta, l.E)
	je, jok := energy(j.Pt, j.Eta, j.E)
	if !lok || !jok {
		return model.UndefinedBJetM
	}
	a := p4(l.Pt, l.Eta, l.Phi, le)
	b := p4(j.Pt, j.Eta, j.Phi, je)
	sum := fmom.NewPxPyPzE(a.Px()+b.Px(), a.Py()+b.Py(), a.Pz()+b.Pz(), a.E()+b.E())
	return sum.M()
}

// Closest returns the position of the jet nearest to the lepton and the
// distance to it. The first jet wins ties. ok is false for an empty list.
func Closest(l *model.LeptonRecord, jets []model.BJetRecord) (idx int, dr float64, ok bool) {
	idx, dr = -1, math.Inf(1)
	for i, j := range jets {
		d := DeltaR(l.Eta, l.Phi, j.Eta, j.Phi)
		if d < dr {
			idx, dr = i, d
		}
	}
	if idx < 0 {
		return -1, model.UndefinedBJetDR, false
	}
	return idx, dr, true
}

// Associate decorates every lepton with the distance and mass to its
// closest b-jet. Without b-jets both are set to their negative sentinels.
func Associate(leptons []*model.LeptonRecord, jets []model.BJetRecord) {
	for _, l := range leptons {
		idx, dr, ok := Closest(l, jets)
		if !ok {
			l.DeltaRClosestBJet = model.UndefinedBJetDR
			l.MassClosestBJet = model.UndefinedBJetM
			continue
		}
		l.DeltaRClosestBJet = dr
		l.MassClosestBJet = InvariantMass(l, jets[idx])
	}
}

// Select returns the jets whose b-tag discriminant is above cut, in order.
func Select(jets []model.JetRecord, cut float64) []model.BJetRecord {
	out := make([]model.BJetRecord, 0, len(jets))
	for _, j := range jets {
		if j.BTagWeight > cut {
			out = append(out, model.BJetRecord{Pt: j.Pt, Eta: j.Eta, Phi: j.Phi, E: j.E})
		}
	}
	return out
}
