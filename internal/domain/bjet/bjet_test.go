package bjet_test

import (
	"math"
	"testing"

	"github.com/okian/minintup/internal/domain/bjet"
	"github.com/okian/minintup/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func lepton(pt, eta, phi float64) *model.LeptonRecord {
	l := model.NewLeptonRecord(0)
	l.Pt, l.Eta, l.Phi = pt, eta, phi
	l.E = pt * math.Cosh(eta) // massless
	return l
}

func jet(pt, eta, phi float64) model.BJetRecord {
	return model.BJetRecord{Pt: pt, Eta: eta, Phi: phi, E: pt * math.Cosh(eta)}
}

func TestDeltaR(t *testing.T) {
	Convey("Given two directions", t, func() {
		Convey("Then the separation combines eta and phi", func() {
			So(bjet.DeltaR(0, 0, 0.3, 0.4), ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("Then the azimuth difference wraps around pi", func() {
			d := bjet.DeltaR(0, math.Pi-0.1, 0, -math.Pi+0.1)
			So(d, ShouldAlmostEqual, 0.2, 1e-9)
		})
	})
}

func TestInvariantMass(t *testing.T) {
	Convey("Given two back-to-back massless objects", t, func() {
		l := lepton(50, 0, 0)
		j := jet(50, 0, math.Pi)

		Convey("Then the mass is the sum of energies", func() {
			So(bjet.InvariantMass(l, j), ShouldAlmostEqual, 100, 1e-6)
		})
	})

	Convey("Given a lepton whose energy was not read", t, func() {
		l := model.NewLeptonRecord(0)
		l.Pt, l.Eta, l.Phi = 40, 0.5, 0.1
		j := model.BJetRecord{Pt: 50, Eta: 0.6, Phi: 0.3, E: 60}

		Convey("When it is associated with a b-jet", func() {
			bjet.Associate([]*model.LeptonRecord{l}, []model.BJetRecord{j})

			Convey("Then the mass uses the massless energy and stays physical", func() {
				withE := lepton(40, 0.5, 0.1)
				So(l.DeltaRClosestBJet, ShouldAlmostEqual, 0.2236, 1e-4)
				So(l.MassClosestBJet, ShouldBeGreaterThanOrEqualTo, 0)
				So(l.MassClosestBJet, ShouldAlmostEqual, bjet.InvariantMass(withE, j), 1e-9)
			})
		})

		Convey("When the jet energy is undefined too", func() {
			j.E = model.UndefinedPt

			Convey("Then the jet energy is rebuilt the same way", func() {
				So(bjet.InvariantMass(l, j), ShouldAlmostEqual, bjet.InvariantMass(lepton(40, 0.5, 0.1), jet(50, 0.6, 0.3)), 1e-9)
			})
		})

		Convey("When the lepton direction is undefined as well", func() {
			l.Eta = model.UndefinedAngle

			Convey("Then the mass is the undefined sentinel", func() {
				So(bjet.InvariantMass(l, j), ShouldEqual, model.UndefinedBJetM)
			})
		})

		Convey("When the jet momentum is undefined", func() {
			j.Pt = model.UndefinedPt

			Convey("Then the mass is the undefined sentinel", func() {
				So(bjet.InvariantMass(l, j), ShouldEqual, model.UndefinedBJetM)
			})
		})
	})
}

func TestAssociate(t *testing.T) {
	Convey("Given leptons", t, func() {
		l := lepton(40, 0.5, 1.0)

		Convey("When the event has no b-jets", func() {
			bjet.Associate([]*model.LeptonRecord{l}, nil)

			Convey("Then distance and mass are negative sentinels", func() {
				So(l.DeltaRClosestBJet, ShouldEqual, model.UndefinedBJetDR)
				So(l.MassClosestBJet, ShouldEqual, model.UndefinedBJetM)
			})
		})

		Convey("When the event has one b-jet", func() {
			j := jet(60, 0.5, 2.0)
			bjet.Associate([]*model.LeptonRecord{l}, []model.BJetRecord{j})

			Convey("Then that jet is associated", func() {
				So(l.DeltaRClosestBJet, ShouldAlmostEqual, 1.0, 1e-9)
				So(l.MassClosestBJet, ShouldAlmostEqual, bjet.InvariantMass(l, j), 1e-9)
				So(l.MassClosestBJet, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the event has several b-jets", func() {
			jets := []model.BJetRecord{
				jet(30, -1.0, -2.0),
				jet(30, 0.6, 1.1),
				jet(30, 2.0, 1.0),
			}
			bjet.Associate([]*model.LeptonRecord{l}, jets)

			Convey("Then the distance is not larger than to any other jet", func() {
				for _, j := range jets {
					So(l.DeltaRClosestBJet, ShouldBeLessThanOrEqualTo, bjet.DeltaR(l.Eta, l.Phi, j.Eta, j.Phi))
				}
				So(l.MassClosestBJet, ShouldAlmostEqual, bjet.InvariantMass(l, jets[1]), 1e-9)
			})
		})

		Convey("When two jets are equally close", func() {
			jets := []model.BJetRecord{jet(30, 0.5, 1.5), jet(80, 0.5, 0.5)}
			idx, _, ok := bjet.Closest(l, jets)

			Convey("Then the first one wins", func() {
				So(ok, ShouldBeTrue)
				So(idx, ShouldEqual, 0)
			})
		})
	})
}

func TestSelect(t *testing.T) {
	Convey("Given jets with b-tag weights", t, func() {
		jets := []model.JetRecord{
			{Pt: 10, BTagWeight: 0.9},
			{Pt: 20, BTagWeight: 0.1},
			{Pt: 30, BTagWeight: 0.95},
		}

		Convey("Then only jets above the cut are kept, in order", func() {
			got := bjet.Select(jets, 0.8)
			So(len(got), ShouldEqual, 2)
			So(got[0].Pt, ShouldEqual, 10)
			So(got[1].Pt, ShouldEqual, 30)
		})
	})
}
