package lepsort_test

import (
	"errors"
	"testing"

	"github.com/okian/minintup/internal/domain/lepsort"
	"github.com/okian/minintup/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func lep(pt, eta, iso, dr, m float64) *model.LeptonRecord {
	l := model.NewLeptonRecord(0)
	l.Pt, l.Eta, l.TrackIsoOverPt, l.DeltaRClosestBJet, l.MassClosestBJet = pt, eta, iso, dr, m
	return l
}

func TestParseKey(t *testing.T) {
	Convey("Given key names", t, func() {
		Convey("Then every configured name parses", func() {
			for name, want := range map[string]lepsort.Key{
				"Pt":                lepsort.Pt,
				"eta":               lepsort.AbsEta,
				"TrackIsoOverPt":    lepsort.TrackIsoOverPt,
				"DeltaRClosestBJet": lepsort.DeltaRClosestBJet,
				"massclosestbjet":   lepsort.MassClosestBJet,
			} {
				k, err := lepsort.ParseKey(name)
				So(err, ShouldBeNil)
				So(k, ShouldEqual, want)
			}
		})

		Convey("Then unknown names fail", func() {
			_, err := lepsort.ParseKey("Random")
			So(errors.Is(err, lepsort.ErrUnknownKey), ShouldBeTrue)
		})
	})
}

func TestPrefer(t *testing.T) {
	Convey("Given two leptons", t, func() {
		a := lep(40, -2.1, 0.05, 1.5, 90)
		b := lep(25, 0.3, 0.01, 2.5, 120)

		Convey("Then each key picks its winner", func() {
			So(lepsort.Pt.Prefer(a, b), ShouldBeTrue)
			So(lepsort.AbsEta.Prefer(a, b), ShouldBeTrue)
			So(lepsort.TrackIsoOverPt.Prefer(b, a), ShouldBeTrue)
			So(lepsort.DeltaRClosestBJet.Prefer(b, a), ShouldBeTrue)
			So(lepsort.MassClosestBJet.Prefer(b, a), ShouldBeTrue)
		})

		Convey("Then equal isolation falls back to pT", func() {
			b.TrackIsoOverPt = a.TrackIsoOverPt
			w, l := lepsort.TrackIsoOverPt.Winner(b, a)
			So(w, ShouldEqual, a)
			So(l, ShouldEqual, b)
		})

		Convey("Then full ties go to the first lepton", func() {
			c := lep(40, 1, 0, 1, 1)
			d := lep(40, 1, 0, 1, 1)
			w, _ := lepsort.Pt.Winner(c, d)
			So(w, ShouldEqual, c)
		})
	})
}

func TestOrder(t *testing.T) {
	Convey("Given three leptons", t, func() {
		leps := []*model.LeptonRecord{
			lep(20, 0.1, 0.2, 0.5, 10),
			lep(50, -1.5, 0.0, 3.0, 30),
			lep(35, 2.2, 0.0, 1.0, 20),
		}

		Convey("Then pT order is descending", func() {
			order := lepsort.Order(leps, lepsort.Pt)
			So(order, ShouldResemble, []int{1, 2, 0})
			for i := 1; i < len(order); i++ {
				So(leps[order[i-1]].Pt, ShouldBeGreaterThanOrEqualTo, leps[order[i]].Pt)
			}
		})

		Convey("Then isolation order breaks ties by pT", func() {
			So(lepsort.Order(leps, lepsort.TrackIsoOverPt), ShouldResemble, []int{1, 2, 0})
		})

		Convey("Then |eta| order is descending", func() {
			So(lepsort.Order(leps, lepsort.AbsEta), ShouldResemble, []int{2, 1, 0})
		})

		Convey("Then the input slice is not reordered", func() {
			_ = lepsort.Order(leps, lepsort.MassClosestBJet)
			So(leps[0].Pt, ShouldEqual, 20)
		})
	})
}
