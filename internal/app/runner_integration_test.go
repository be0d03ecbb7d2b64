package app_test

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/minintup/internal/app"
	"github.com/okian/minintup/internal/config"
	"github.com/okian/minintup/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"github.com/tidwall/gjson"
)

// pairEvent has a tight trigger-matched muon leading an anti-tight
// electron.
const pairEvent = `{"RunNumber":284500,"EventNumber":%d,"RunYear":2016,"mc_channel_number":410000,"mcWeightOrg":1.5,` +
	`"lep_ID_0":13,"lep_Index_0":0,"lep_Pt_0":40.0,"lep_Eta_0":0.5,"lep_Phi_0":0.1,"lep_sigd0PV_0":1.0,"lep_Z0SinTheta_0":0.1,` +
	`"lep_isMedium_0":1,"lep_isolationFixedCutLoose_0":1,` +
	`"lep_ID_1":-11,"lep_Index_1":0,"lep_Pt_1":25.0,"lep_Eta_1":-1.0,"lep_Phi_1":2.0,"lep_sigd0PV_1":0.5,"lep_Z0SinTheta_1":0.05,` +
	`"lep_isTightLH_1":1,` +
	`"muon_passOR":[true],"muon_match_HLT_mu26_ivarmedium":[true],` +
	`"electron_passOR":[true],"electron_match_HLT_e26_lhtight_nod0_ivarloose":[false]}`

// tightPair has two tight trigger-matched muons.
const tightPair = `{"RunNumber":284500,"EventNumber":5,"RunYear":2016,"mc_channel_number":410000,"mcWeightOrg":1.0,` +
	`"lep_ID_0":13,"lep_Index_0":0,"lep_Pt_0":40.0,"lep_Eta_0":0.5,"lep_Phi_0":0.1,"lep_sigd0PV_0":1.0,"lep_Z0SinTheta_0":0.1,` +
	`"lep_isMedium_0":1,"lep_isolationFixedCutLoose_0":1,` +
	`"lep_ID_1":-13,"lep_Index_1":1,"lep_Pt_1":30.0,"lep_Eta_1":-1.0,"lep_Phi_1":2.0,"lep_sigd0PV_1":0.5,"lep_Z0SinTheta_1":0.05,` +
	`"lep_isMedium_1":1,"lep_isolationFixedCutLoose_1":1,` +
	`"muon_passOR":[true,true],"muon_match_HLT_mu26_ivarmedium":[true,true]}`

func writeInput(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "in.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readOutput(t *testing.T, path string) []gjson.Result {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var out []gjson.Result
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for sc.Scan() {
		out = append(out, gjson.Parse(sc.Text()))
	}
	return out
}

func TestRunnerFromConfig(t *testing.T) {
	convey.Convey("Given a configuration over JSON lines files", t, func() {
		dir := t.TempDir()
		cfg := config.New()
		cfg.InputPath = writeInput(t, dir,
			strings.Replace(pairEvent, "%d", "1", 1),
			"{not json",
			strings.Replace(pairEvent, "%d", "2", 1),
			strings.Replace(pairEvent, "%d", "1", 1),
		)
		cfg.OutputPath = filepath.Join(dir, "out.jsonl.zst")
		cfg.AddStreamEventsHist = true
		cfg.TPTiers = []string{"SLT"}

		convey.Convey("When the run completes", func() {
			runner, err := app.NewFromConfig(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			sum, err := runner.Run(context.Background())

			convey.Convey("Then the counters match the input", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sum.Read, convey.ShouldEqual, 3)
				convey.So(sum.Malformed, convey.ShouldEqual, 1)
				convey.So(sum.Duplicates, convey.ShouldEqual, 1)
				convey.So(sum.Decorated, convey.ShouldEqual, 2)
				convey.So(sum.NoValidTag["SLT"], convey.ShouldEqual, 0)
				convey.So(sum.Generated.Weighted, convey.ShouldAlmostEqual, 3.0)
			})

			convey.Convey("Then the histogram sits next to the output", func() {
				_, err := os.Stat(filepath.Join(dir, "output_TotalEvents.yoda"))
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the output is plain JSON lines", func() {
			cfg.OutputPath = filepath.Join(dir, "out.jsonl")
			runner, err := app.NewFromConfig(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			_, err = runner.Run(context.Background())
			convey.So(err, convey.ShouldBeNil)
			recs := readOutput(t, cfg.OutputPath)

			convey.Convey("Then the muon is Tag and the electron Probe", func() {
				convey.So(len(recs), convey.ShouldEqual, 2)
				first := recs[0]
				convey.So(first.Get("EventNumber").Uint(), convey.ShouldEqual, 1)
				convey.So(first.Get("isBadTPEvent_SLT").Int(), convey.ShouldEqual, 0)
				convey.So(first.Get("is_Tmu_AntiTel").Int(), convey.ShouldEqual, 1)
				convey.So(first.Get("lep_Tag_SLT_ID").Int(), convey.ShouldEqual, 13)
				convey.So(first.Get("lep_Probe_SLT_ID").Int(), convey.ShouldEqual, -11)
				convey.So(first.Get("lep_Tag_SLT_ID_VEC").Array(), convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			cfg.AmbiguityCriterion = "Random"
			_, err := app.NewFromConfig(cfg, logger.Get())

			convey.Convey("Then no runner is built", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the output format is unknown", func() {
			cfg.OutputPath = filepath.Join(dir, "out.root")
			_, err := app.NewFromConfig(cfg, logger.Get())

			convey.Convey("Then no runner is built", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestRunnerSameSignDefinition(t *testing.T) {
	convey.Convey("Given an event with two tight trigger-matched muons", t, func() {
		dir := t.TempDir()
		cfg := config.New()
		cfg.InputPath = writeInput(t, dir, tightPair)
		cfg.OutputPath = filepath.Join(dir, "out.jsonl")
		cfg.TPTiers = []string{"SLT"}

		run := func() gjson.Result {
			runner, err := app.NewFromConfig(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			_, err = runner.Run(context.Background())
			convey.So(err, convey.ShouldBeNil)
			recs := readOutput(t, cfg.OutputPath)
			convey.So(recs, convey.ShouldHaveLength, 1)
			return recs[0]
		}

		convey.Convey("When the same-sign definition is enabled", func() {
			cfg.UseSUSYSSTP = true
			rec := run()

			convey.Convey("Then both muons appear as Tag and as Probe", func() {
				convey.So(rec.Get("is_T_T").Int(), convey.ShouldEqual, 1)
				convey.So(rec.Get("isBadTPEvent_SLT").Int(), convey.ShouldEqual, 0)
				convey.So(rec.Get("lep_Tag_SLT_ID").Int(), convey.ShouldEqual, 13)
				convey.So(rec.Get("lep_Probe_SLT_ID").Int(), convey.ShouldEqual, -13)
				convey.So(rec.Get("lep_Tag_SLT_ID_VEC").Array(), convey.ShouldHaveLength, 2)
				convey.So(rec.Get("lep_Probe_SLT_ID_VEC").Array(), convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When it is disabled", func() {
			rec := run()

			convey.Convey("Then a single Tag and Probe are written", func() {
				convey.So(rec.Get("lep_Tag_SLT_ID").Int(), convey.ShouldEqual, 13)
				convey.So(rec.Get("lep_Tag_SLT_ID_VEC").Array(), convey.ShouldHaveLength, 1)
				convey.So(rec.Get("lep_Probe_SLT_ID_VEC").Array(), convey.ShouldHaveLength, 1)
			})
		})
	})
}
