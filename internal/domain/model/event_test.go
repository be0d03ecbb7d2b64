package model_test

import (
	"testing"

	model "github.com/okian/minintup/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestFlavour(t *testing.T) {
	convey.Convey("Given signed PDG codes", t, func() {
		convey.Convey("Then electrons and positrons map to Electron", func() {
			convey.So(model.FlavourFromID(11), convey.ShouldEqual, model.Electron)
			convey.So(model.FlavourFromID(-11), convey.ShouldEqual, model.Electron)
		})

		convey.Convey("Then muons map to Muon", func() {
			convey.So(model.FlavourFromID(-13), convey.ShouldEqual, model.Muon)
			convey.So(model.Muon.String(), convey.ShouldEqual, "muon")
		})

		convey.Convey("Then anything else has no flavour", func() {
			convey.So(model.FlavourFromID(15), convey.ShouldEqual, model.NoFlavour)
			convey.So(model.FlavourFromID(0), convey.ShouldEqual, model.NoFlavour)
		})
	})
}

func TestLeptonRecordDefaults(t *testing.T) {
	convey.Convey("Given a fresh lepton record", t, func() {
		l := model.NewLeptonRecord(1)

		convey.Convey("Then it carries sentinels and neutral scale factors", func() {
			convey.So(l.Slot, convey.ShouldEqual, 1)
			convey.So(l.Index, convey.ShouldEqual, -1)
			convey.So(l.DeltaRClosestBJet, convey.ShouldEqual, model.UndefinedBJetDR)
			convey.So(l.MassClosestBJet, convey.ShouldEqual, model.UndefinedBJetM)
			convey.So(l.SF.IDTight, convey.ShouldEqual, 1.0)
			convey.So(l.SF.TTVA, convey.ShouldEqual, 1.0)
			convey.So(l.SF.EffTrigTight, convey.ShouldEqual, 0.0)
			convey.So(l.Tag[model.SLT], convey.ShouldBeFalse)
			convey.So(l.Probe[model.SLT], convey.ShouldBeFalse)
		})
	})
}

func TestWorkingPointFields(t *testing.T) {
	convey.Convey("Given the working point table", t, func() {
		convey.Convey("Then every working point round-trips through its field name", func() {
			for wp := model.WorkingPoint(0); wp < model.NumWorkingPoints; wp++ {
				got, ok := model.WorkingPointByField(wp.Field())
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, wp)
			}
		})

		convey.Convey("Then unknown names are rejected", func() {
			_, ok := model.WorkingPointByField("isSuperTight")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestEventSelectors(t *testing.T) {
	convey.Convey("Given an event with mixed leptons", t, func() {
		e1 := model.NewLeptonRecord(0)
		e1.Flavour = model.Electron
		m1 := model.NewLeptonRecord(1)
		m1.Flavour = model.Muon
		e2 := model.NewLeptonRecord(2)
		e2.Flavour = model.Electron
		m1.Tag[model.SLT] = true
		e2.Probe[model.SLT] = true

		ev := &model.Event{Leptons: []*model.LeptonRecord{e1, m1, e2}}

		convey.Convey("Then flavour selectors keep input order", func() {
			convey.So(ev.Electrons(), convey.ShouldResemble, []*model.LeptonRecord{e1, e2})
			convey.So(ev.Muons(), convey.ShouldResemble, []*model.LeptonRecord{m1})
		})

		convey.Convey("Then role lookup finds tag and probe", func() {
			convey.So(ev.Role(model.SLT, true), convey.ShouldEqual, m1)
			convey.So(ev.Role(model.SLT, false), convey.ShouldEqual, e2)
			convey.So(ev.Role(model.DLT, true), convey.ShouldBeNil)
		})
	})
}

func TestEventSummaryDefaults(t *testing.T) {
	convey.Convey("Given a new event summary", t, func() {
		s := model.NewEventSummary()

		convey.Convey("Then the no-valid-tag sentinel is pessimistic and weights are neutral", func() {
			convey.So(s.NoValidTag[model.SLT], convey.ShouldBeTrue)
			convey.So(s.NoValidTag[model.DLT], convey.ShouldBeTrue)
			convey.So(s.WeightEvent, convey.ShouldEqual, 1.0)
			convey.So(s.WeightTrigProbe, convey.ShouldEqual, 1.0)
			convey.So(s.State, convey.ShouldEqual, model.NoState)
		})

		convey.Convey("Then state names match the output flag suffixes", func() {
			convey.So(model.TightElAntiTightMu.String(), convey.ShouldEqual, "Tel_AntiTmu")
			convey.So(len(model.AllTPStates()), convey.ShouldEqual, 8)
			convey.So(model.TightTight.Symmetric(), convey.ShouldBeTrue)
			convey.So(model.TightAntiTight.Symmetric(), convey.ShouldBeFalse)
		})
	})
}
