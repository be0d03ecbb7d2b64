package tightness_test

import (
	"errors"
	"testing"

	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/tightness"
	. "github.com/smartystreets/goconvey/convey"
)

func lepton(f model.Flavour, wps ...model.WorkingPoint) *model.LeptonRecord {
	l := model.NewLeptonRecord(0)
	l.Flavour = f
	l.D0Sig = 1
	l.Z0SinTheta = 0.1
	for _, wp := range wps {
		l.WorkingPoints[wp] = true
	}
	return l
}

func TestClassifier(t *testing.T) {
	Convey("Given the default rules", t, func() {
		c := tightness.NewClassifier(tightness.DefaultRules())

		Convey("When an electron passes identification and isolation", func() {
			l := lepton(model.Electron, model.WPTightLH, model.WPIsoFixedCutLoose)
			So(c.IsTight(l), ShouldBeTrue)

			Convey("And fails only isolation", func() {
				l.WorkingPoints[model.WPIsoFixedCutLoose] = false
				So(c.IsTight(l), ShouldBeFalse)
			})

			Convey("And has a large impact parameter significance", func() {
				l.D0Sig = -6
				So(c.IsTight(l), ShouldBeFalse)
			})

			Convey("And has a large longitudinal impact parameter", func() {
				l.Z0SinTheta = 0.7
				So(c.IsTight(l), ShouldBeFalse)
			})
		})

		Convey("When a muon carries only electron flags", func() {
			l := lepton(model.Muon, model.WPTightLH, model.WPIsoFixedCutLoose)

			Convey("Then the muon rule decides", func() {
				So(c.IsTight(l), ShouldBeFalse)
				l.WorkingPoints[model.WPMedium] = true
				So(c.IsTight(l), ShouldBeTrue)
			})
		})

		Convey("When the lepton has no known flavour", func() {
			l := lepton(model.NoFlavour, model.WPTightLH, model.WPMedium, model.WPIsoFixedCutLoose)
			So(c.IsTight(l), ShouldBeFalse)
		})

		Convey("When applied to a list", func() {
			leps := []*model.LeptonRecord{
				lepton(model.Electron, model.WPTightLH, model.WPIsoFixedCutLoose),
				lepton(model.Muon),
			}
			c.Apply(leps)
			So(leps[0].Tight, ShouldBeTrue)
			So(leps[1].Tight, ShouldBeFalse)
		})
	})
}

func TestParseRule(t *testing.T) {
	Convey("Given working point names", t, func() {
		Convey("When they are known", func() {
			r, err := tightness.ParseRule([]string{"isLoose", "isolationLoose"}, 0, 0)

			Convey("Then the rule is built and cuts are disabled", func() {
				So(err, ShouldBeNil)
				So(r.WorkingPoints, ShouldResemble, []model.WorkingPoint{model.WPLoose, model.WPIsoLoose})
				l := lepton(model.Muon, model.WPLoose, model.WPIsoLoose)
				l.D0Sig = 100
				So(r.Pass(l), ShouldBeTrue)
			})
		})

		Convey("When one is unknown", func() {
			_, err := tightness.ParseRule([]string{"isTightLH", "isGolden"}, 5, 0.5)
			So(errors.Is(err, tightness.ErrUnknownWorkingPoint), ShouldBeTrue)
		})
	})
}
