package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When empty values are passed", func() {
			m := &Manager{namespace: "a", subsystem: "b", histogramBuckets: []float64{1}}
			WithNamespace("")(m)
			WithSubsystem("")(m)
			WithHistogramBuckets(nil)(m)
			WithConstLabels(nil)(m)
			WithPrometheusRegistry(nil)(m)

			Convey("Then the defaults are kept", func() {
				So(m.namespace, ShouldEqual, "a")
				So(m.subsystem, ShouldEqual, "b")
				So(m.histogramBuckets, ShouldResemble, []float64{1})
				So(m.constLabels, ShouldBeNil)
				So(m.registry, ShouldBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{0.1, 1}),
			WithConstLabels(map[string]string{"run_id": "r1"}),
			WithPrometheusRegistry(registry),
		)

		Convey("When counters are touched", func() {
			m.eventsRead.Inc()
			m.eventsRead.Inc()
			m.tagProbeStates.WithLabelValues("T_T").Inc()

			Convey("Then the values are exposed under the configured names", func() {
				So(testutil.ToFloat64(m.eventsRead), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.tagProbeStates.WithLabelValues("T_T")), ShouldEqual, 1.0)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make(map[string]bool)
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_events_read_total"], ShouldBeTrue)
				So(names["test_unit_tag_probe_states_total"], ShouldBeTrue)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		before := testutil.ToFloat64(globalManager.eventsDecorated)

		Convey("When recorders are called", func() {
			RecordEventDecorated()
			RecordMissingField("lep_Pt_0")
			RecordIndexMisses("jet", 0)
			RecordIndexMisses("jet", 3)
			UpdateGeneratedEvents(10, 12.5)
			UpdateQueueCapacity(64)

			Convey("Then the global registry reflects them", func() {
				So(testutil.ToFloat64(globalManager.eventsDecorated), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.missingFields.WithLabelValues("lep_Pt_0")), ShouldBeGreaterThanOrEqualTo, 1.0)
				So(testutil.ToFloat64(globalManager.indexMisses.WithLabelValues("jet")), ShouldBeGreaterThanOrEqualTo, 3.0)
				So(testutil.ToFloat64(globalManager.generatedEvents.WithLabelValues("weighted")), ShouldEqual, 12.5)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64.0)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics handler", t, func() {
		RecordEventRead()
		srv := httptest.NewServer(Handler())
		defer srv.Close()

		Convey("When scraped", func() {
			resp, err := http.Get(srv.URL)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)

			Convey("Then pipeline metrics are served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(strings.Contains(string(body), "minintup_decorator_events_read_total"), ShouldBeTrue)
			})
		})
	})
}
