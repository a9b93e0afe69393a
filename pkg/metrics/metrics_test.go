package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every sample of the named counter family in reg.
func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func familyNames(reg *prometheus.Registry) map[string]bool {
	families, _ := reg.Gather()
	out := make(map[string]bool, len(families))
	for _, mf := range families {
		out[mf.GetName()] = true
	}
	return out
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager is created with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPointBuckets([]float64{0, 10, 20}),
				WithPrometheusRegistry(reg),
			)
			m.entriesScored.Inc()

			Convey("Then collectors use the configured names", func() {
				So(counterValue(reg, "test_unit_entries_scored_total"), ShouldEqual, 1)
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(reg))

			Convey("Then registration conflicts panic", func() {
				So(func() { NewManager(WithPrometheusRegistry(reg)) }, ShouldPanic)
			})
		})
	})
}

func TestRecordingHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		before := counterValue(GetRegistry(), "matchscout_scouting_entries_scored_total")

		Convey("When entry pipeline metrics are recorded", func() {
			So(func() {
				RecordEntryReceived("bulk")
				RecordEntryDuplicate()
				RecordEntryRejected("invalid_entry")
				RecordEntryScored(4, 2, 20, 26)
				RecordExclusivityViolation("endgame", "climb")
				RecordEvaluationLatency(0.2)
			}, ShouldNotPanic)

			Convey("Then the scored counter moved", func() {
				So(counterValue(GetRegistry(), "matchscout_scouting_entries_scored_total"), ShouldEqual, before+1)
			})
		})

		Convey("When operational metrics are recorded", func() {
			So(func() {
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("full")
				UpdateWorkerCount(4)
				AddWorkerActive(1)
				AddWorkerActive(-1)
				RecordWorkerError()
				RecordWorkerProcessingLatency(1.5)
				UpdateStoreRecords(10)
				RecordStoreWriteLatency("memory", 0.1)
				RecordStoreQueryLatency("sqlite", 0.4)
				RecordHTTPRequest("/entries", "POST", "202")
				RecordHTTPRequestDuration("/entries", "POST", "202", 3)
				RecordErrorByComponent("worker", "store")
			}, ShouldNotPanic)

			Convey("Then the families are exposed", func() {
				names := familyNames(GetRegistry())
				So(names["matchscout_scouting_queue_size"], ShouldBeTrue)
				So(names["matchscout_scouting_entry_points"], ShouldBeTrue)
				So(names["matchscout_scouting_store_write_latency_milliseconds"], ShouldBeTrue)
				So(names["matchscout_scouting_http_requests_total"], ShouldBeTrue)
			})
		})
	})
}
