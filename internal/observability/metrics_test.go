package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestSimCollectorRecordsTicks(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	collector.ObserveTick(25, 3*time.Millisecond)
	collector.ObserveTick(24, 2*time.Millisecond)
	collector.AddActorsExcluded(1)
	collector.AddMeetingsFormed(2)
	collector.AddReadings(40)
	collector.AddPairsSkipped(0)

	if got := testutil.ToFloat64(collector.LiveActors); got != 24 {
		t.Errorf("sim_live_actors = %v, want 24", got)
	}
	if got := testutil.ToFloat64(collector.TicksTotal); got != 2 {
		t.Errorf("sim_ticks_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.ActorsExcluded); got != 1 {
		t.Errorf("sim_actors_excluded_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.MeetingsFormed); got != 2 {
		t.Errorf("sim_meetings_formed_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Readings); got != 40 {
		t.Errorf("sim_readings_total = %v, want 40", got)
	}
	if got := testutil.ToFloat64(collector.PairsSkipped); got != 0 {
		t.Errorf("sim_pairs_skipped_total = %v, want 0", got)
	}

	if count := histogramSampleCount(t, reg, "sim_tick_duration_seconds"); count != 2 {
		t.Errorf("sim_tick_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestNewSimCollectorIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	second, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector (second): %v", err)
	}

	first.AddReadings(3)
	second.AddReadings(4)
	// Both collectors share the registered counter.
	if got := testutil.ToFloat64(second.Readings); got != 7 {
		t.Errorf("sim_readings_total = %v, want 7", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	collector.ObserveTick(10, time.Millisecond)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "sim_live_actors 10") {
		t.Errorf("metrics output missing sim_live_actors gauge:\n%s", body)
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var mf *dto.MetricFamily
	for _, fam := range families {
		if fam.GetName() == name {
			mf = fam
			break
		}
	}
	if mf == nil {
		t.Fatalf("metric %s not found", name)
	}
	for _, m := range mf.GetMetric() {
		if h := m.GetHistogram(); h != nil {
			return h.GetSampleCount()
		}
	}
	t.Fatalf("metric %s has no histogram samples", name)
	return 0
}
