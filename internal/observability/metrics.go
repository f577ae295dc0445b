package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for a simulation run and
// implements the engine's MetricsRecorder interface, so the core stays
// free of any Prometheus dependency.
type SimCollector struct {
	gatherer prometheus.Gatherer

	LiveActors    prometheus.Gauge
	TickDurations prometheus.Histogram

	TicksTotal     prometheus.Counter
	ActorsExcluded prometheus.Counter
	MeetingsFormed prometheus.Counter
	Readings       prometheus.Counter
	PairsSkipped   prometheus.Counter
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry
// when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	liveActors, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_live_actors",
		Help: "Current number of live (included) actors in the simulation.",
	}), "sim_live_actors")
	if err != nil {
		return nil, err
	}

	tickDurations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall-clock duration of one simulation tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}), "sim_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Total number of simulation ticks advanced.",
	}), "sim_ticks_total")
	if err != nil {
		return nil, err
	}
	excluded, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_actors_excluded_total",
		Help: "Total number of actors permanently excluded for leaving the bounds.",
	}), "sim_actors_excluded_total")
	if err != nil {
		return nil, err
	}
	meetings, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_meetings_formed_total",
		Help: "Total number of meetings formed.",
	}), "sim_meetings_formed_total")
	if err != nil {
		return nil, err
	}
	readings, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_readings_total",
		Help: "Total number of signal readings captured.",
	}), "sim_readings_total")
	if err != nil {
		return nil, err
	}
	skipped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_pairs_skipped_total",
		Help: "Total number of actor pairs skipped because of a non-positive distance.",
	}), "sim_pairs_skipped_total")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:       gatherer,
		LiveActors:     liveActors,
		TickDurations:  tickDurations,
		TicksTotal:     ticks,
		ActorsExcluded: excluded,
		MeetingsFormed: meetings,
		Readings:       readings,
		PairsSkipped:   skipped,
	}, nil
}

// ObserveTick records one completed tick: live-actor gauge, tick
// counter, and wall-clock duration.
func (c *SimCollector) ObserveTick(liveActors int, d time.Duration) {
	if c == nil {
		return
	}
	c.LiveActors.Set(float64(liveActors))
	c.TicksTotal.Inc()
	c.TickDurations.Observe(d.Seconds())
}

// AddActorsExcluded counts actors dropped for leaving the bounds.
func (c *SimCollector) AddActorsExcluded(n int) {
	if c == nil || n == 0 {
		return
	}
	c.ActorsExcluded.Add(float64(n))
}

// AddMeetingsFormed counts newly formed meetings.
func (c *SimCollector) AddMeetingsFormed(n int) {
	if c == nil || n == 0 {
		return
	}
	c.MeetingsFormed.Add(float64(n))
}

// AddReadings counts captured signal readings.
func (c *SimCollector) AddReadings(n int) {
	if c == nil || n == 0 {
		return
	}
	c.Readings.Add(float64(n))
}

// AddPairsSkipped counts pairs skipped by the non-positive-distance
// guard.
func (c *SimCollector) AddPairsSkipped(n int) {
	if c == nil || n == 0 {
		return
	}
	c.PairsSkipped.Add(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
