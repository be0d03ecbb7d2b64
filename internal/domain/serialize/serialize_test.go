package serialize_test

import (
	"testing"

	"github.com/okian/minintup/internal/domain/lepsort"
	"github.com/okian/minintup/internal/domain/model"
	"github.com/okian/minintup/internal/domain/record"
	"github.com/okian/minintup/internal/domain/serialize"
	"github.com/smartystreets/goconvey/convey"
)

func lep(slot int, f model.Flavour, pt, eta float64) *model.LeptonRecord {
	l := model.NewLeptonRecord(slot)
	l.Flavour = f
	l.ID = int(f)
	l.Pt = pt
	l.Eta = eta
	return l
}

func decorated() *model.Event {
	e0 := lep(0, model.Electron, 25, 0.1)
	m1 := lep(1, model.Muon, 60, -1.2)
	e2 := lep(2, model.Electron, 40, 2.3)
	e0.Tight = true
	e0.TrigMatched[model.SLT] = true
	e0.Tag[model.SLT] = true
	m1.Probe[model.SLT] = true
	ev := &model.Event{
		RunNumber:   284500,
		EventNumber: 77,
		Leptons:     []*model.LeptonRecord{e0, m1, e2},
		Jets: []model.JetRecord{
			{Pt: 30, Eta: 0.5, Phi: 1, E: 35, TruthMatched: true, TruthPt: 29, Flavour: model.JetB},
			{Pt: 20, Eta: -0.5, Phi: -1, E: 22, TruthPt: -1, Flavour: model.JetUnknown},
		},
		Summary: model.NewEventSummary(),
	}
	ev.Summary.State = model.TightElAntiTightMu
	ev.Summary.NoValidTag[model.SLT] = false
	return ev
}

func TestSerializeSequences(t *testing.T) {
	convey.Convey("Given a decorated event with two electrons and a muon", t, func() {
		ev := decorated()
		out := record.NewOutput()
		serialize.New().Serialize(ev, out)

		convey.Convey("Then flavour sequences have one entry per lepton", func() {
			pt, ok := out.Get("electron_pt")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(pt, convey.ShouldHaveLength, 2)
			mpt, _ := out.Get("muon_pt")
			convey.So(mpt, convey.ShouldHaveLength, 1)
			all, _ := out.Get("lep_Pt")
			convey.So(all, convey.ShouldHaveLength, 3)
		})

		convey.Convey("Then pT sequences are non-increasing", func() {
			for _, name := range []string{"electron_pt", "lep_Pt"} {
				v, _ := out.Get(name)
				pts := v.([]float32)
				for i := 1; i < len(pts); i++ {
					convey.So(pts[i], convey.ShouldBeLessThanOrEqualTo, pts[i-1])
				}
			}
		})

		convey.Convey("Then parallel sequences follow the same order", func() {
			eta, _ := out.Get("electron_eta")
			convey.So(eta, convey.ShouldResemble, []float32{2.3, 0.1})
			tight, _ := out.Get("electron_isTightSelected")
			convey.So(tight, convey.ShouldResemble, []int8{0, 1})
		})
	})

	convey.Convey("Given an eta sort key for electrons", t, func() {
		ev := decorated()
		ev.Leptons[2].Eta = 0.05
		out := record.NewOutput()
		keys := serialize.DefaultSortKeys()
		keys.Electron = lepsort.AbsEta
		serialize.New(serialize.WithSortKeys(keys)).Serialize(ev, out)

		convey.Convey("Then electrons are ordered by |eta|", func() {
			pt, _ := out.Get("electron_pt")
			convey.So(pt, convey.ShouldResemble, []float32{25, 40})
		})
	})
}

func TestSerializeSummary(t *testing.T) {
	convey.Convey("Given a decorated event", t, func() {
		out := record.NewOutput()
		serialize.New().Serialize(decorated(), out)

		convey.Convey("Then exactly one state flag is set", func() {
			set := 0
			for _, st := range model.AllTPStates() {
				v, ok := out.Get("is_" + st.String())
				convey.So(ok, convey.ShouldBeTrue)
				set += int(v.(int8))
			}
			convey.So(set, convey.ShouldEqual, 1)
			v, _ := out.Get("is_Tel_AntiTmu")
			convey.So(v, convey.ShouldEqual, int8(1))
		})

		convey.Convey("Then identifiers keep their integer types", func() {
			run, _ := out.Get("RunNumber")
			convey.So(run, convey.ShouldEqual, uint32(284500))
			evn, _ := out.Get("EventNumber")
			convey.So(evn, convey.ShouldEqual, uint64(77))
			bad, _ := out.Get("isBadTPEvent_SLT")
			convey.So(bad, convey.ShouldEqual, int8(0))
		})

		convey.Convey("Then per-slot scalars are written for every slot", func() {
			v, _ := out.Get("lep_isTrigMatch_SLT_0")
			convey.So(v, convey.ShouldEqual, int8(1))
			v, _ = out.Get("lep_isTightSelected_2")
			convey.So(v, convey.ShouldEqual, int8(0))
		})
	})
}

func TestSerializeTagProbe(t *testing.T) {
	convey.Convey("Given an event with an assigned tag and probe", t, func() {
		out := record.NewOutput()
		serialize.New().Serialize(decorated(), out)

		convey.Convey("Then each role is written as scalar and single-element sequence", func() {
			pt, _ := out.Get("lep_Tag_SLT_Pt")
			convey.So(pt, convey.ShouldEqual, float32(25))
			vec, _ := out.Get("lep_Tag_SLT_Pt_VEC")
			convey.So(vec, convey.ShouldResemble, []float32{25})
			id, _ := out.Get("lep_Probe_SLT_ID")
			convey.So(id, convey.ShouldEqual, int32(13))
			m, _ := out.Get("lep_Tag_SLT_isTrigMatch")
			convey.So(m, convey.ShouldEqual, int8(1))
		})
	})

	convey.Convey("Given an event without roles", t, func() {
		ev := decorated()
		for _, l := range ev.Leptons {
			l.Tag[model.SLT], l.Probe[model.SLT] = false, false
		}
		out := record.NewOutput()
		serialize.New().Serialize(ev, out)

		convey.Convey("Then scalars carry sentinels and sequences are empty", func() {
			pt, _ := out.Get("lep_Tag_SLT_Pt")
			convey.So(pt, convey.ShouldEqual, float32(model.UndefinedPt))
			vec, _ := out.Get("lep_Probe_SLT_Pt_VEC")
			convey.So(vec, convey.ShouldHaveLength, 0)
		})
	})
}

func TestSerializeJets(t *testing.T) {
	convey.Convey("Given jets with and without a truth match", t, func() {
		out := record.NewOutput()
		serialize.New().Serialize(decorated(), out)

		convey.Convey("Then jet sequences keep the input order", func() {
			pt, _ := out.Get("jet_OR_Pt")
			convey.So(pt, convey.ShouldResemble, []float32{30, 20})
			b, _ := out.Get("jet_OR_truthMatch_isBJet")
			convey.So(b, convey.ShouldResemble, []int8{1, 0})
			tpt, _ := out.Get("jet_OR_truthMatch_Pt")
			convey.So(tpt, convey.ShouldResemble, []float32{29, -1})
		})
	})
}

func TestSerializeResets(t *testing.T) {
	convey.Convey("Given an output record reused across events", t, func() {
		s := serialize.New()
		out := record.NewOutput()
		s.Serialize(decorated(), out)
		n := out.Len()

		convey.Convey("When a smaller event is written", func() {
			ev := &model.Event{Leptons: []*model.LeptonRecord{lep(0, model.Muon, 10, 0)}, Summary: model.NewEventSummary()}
			s.Serialize(ev, out)

			convey.Convey("Then nothing of the previous event remains", func() {
				convey.So(out.Len(), convey.ShouldEqual, n)
				pt, _ := out.Get("electron_pt")
				convey.So(pt, convey.ShouldHaveLength, 0)
				jets, _ := out.Get("jet_OR_Pt")
				convey.So(jets, convey.ShouldHaveLength, 0)
				tag, _ := out.Get("lep_Tag_SLT_Pt_VEC")
				convey.So(tag, convey.ShouldHaveLength, 0)
			})
		})
	})
}
