// Command simulator runs a seeded contact-tracing simulation: actors
// wander a bounded plane, radios take pairwise signal readings, and
// close encounters may form meetings. Results land as CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/contact-simulator/core"
	"github.com/signalsfoundry/contact-simulator/internal/export"
	"github.com/signalsfoundry/contact-simulator/internal/logging"
	"github.com/signalsfoundry/contact-simulator/internal/observability"
	"github.com/signalsfoundry/contact-simulator/timectrl"

	xrand "golang.org/x/exp/rand"
)

// Defaults used when no scenario file is given. The carrier is the
// mean of the three BLE advertising channels.
const (
	defaultFrequencyHz  = (2402e6 + 2426e6 + 2480e6) / 3
	defaultMaxRangeM    = 15.0
	defaultMeanSpeedMps = 1.341
	defaultActorCount   = 30
	defaultInflow       = 2
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a JSON scenario file (optional)")
	duration := flag.Duration("duration", 120*time.Second, "total simulated duration")
	tick := flag.Duration("tick", 100*time.Millisecond, "simulated time per tick")
	seed := flag.Uint64("seed", 1, "random seed for deterministic runs")
	actorCount := flag.Int("actors", defaultActorCount, "initial population size")
	inflow := flag.Int("inflow", defaultInflow, "new actors generated per tick")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	metricsAddr := flag.String("metrics-addr", "", "listen address for /metrics (empty disables)")
	outDir := flag.String("out", ".", "directory for readings.csv and meetings.csv")

	flag.Parse()

	log := logging.NewFromEnv()
	runID := uuid.NewString()
	ctx := logging.ContextWithRunID(context.Background(), runID)
	log = log.With(logging.String("run_id", runID))
	ctx = logging.ContextWithLogger(ctx, log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	scenario, err := resolveScenario(*scenarioPath, *seed, *actorCount, *inflow, *duration, *tick)
	if err != nil {
		log.Error(ctx, "scenario load failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	rng := xrand.New(xrand.NewSource(scenario.Engine.Seed + 1))
	gen := core.NewGenerator(rng)
	initial := gen.Generate(scenario.Population)

	engine, err := core.NewEngine(scenario.Engine, initial)
	if err != nil {
		log.Error(ctx, "engine init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	engine.Log = log

	if *metricsAddr != "" {
		collector, err := observability.NewSimCollector(prometheus.NewRegistry())
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		engine.Metrics = collector
		go serveMetrics(ctx, log, *metricsAddr, collector)
	}

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tickDur := time.Duration(scenario.Run.StepSeconds * float64(time.Second))
	runDur := time.Duration(scenario.Run.DurationSeconds * float64(time.Second))
	tc := timectrl.NewTimeController(time.Now().UTC(), tickDur, mode)

	inflowSpec := scenario.Population
	inflowSpec.Count = scenario.Run.NewActorsPerStep

	tc.AddListener(func(time.Time) {
		if inflowSpec.Count > 0 {
			for _, a := range gen.Generate(inflowSpec) {
				engine.AddActor(a)
			}
		}
		if err := engine.Step(scenario.Run.StepSeconds); err != nil {
			log.Error(ctx, "tick failed", logging.String("error", err.Error()))
		}
	})

	log.Info(ctx, "starting simulation",
		logging.Any("seed", scenario.Engine.Seed),
		logging.Int("actors", len(initial)),
		logging.Any("tick", tickDur),
		logging.Any("duration", runDur),
	)

	tracer := otel.Tracer("contact-simulator")
	_, span := tracer.Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Float64("sim.frequency_hz", scenario.Engine.FrequencyHz),
		attribute.Int("sim.initial_actors", len(initial)),
		attribute.Float64("sim.duration_seconds", scenario.Run.DurationSeconds),
	))

	<-tc.Start(runDur)
	span.End()

	log.Info(ctx, "simulation complete",
		logging.Int("live_actors", liveCount(engine)),
		logging.Int("meetings", engine.Store().MeetingCount()),
		logging.Int("readings", engine.Store().ReadingCount()),
	)

	if err := exportResults(*outDir, engine); err != nil {
		log.Error(ctx, "export failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "results exported", logging.String("dir", *outDir))
}

// resolveScenario loads the scenario file when one was given, otherwise
// builds the flag-driven default scenario.
func resolveScenario(path string, seed uint64, actors, inflow int, duration, tick time.Duration) (*core.Scenario, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open scenario %q: %w", path, err)
		}
		defer f.Close()
		return core.LoadScenario(f)
	}

	sc := &core.Scenario{
		Engine: core.Config{
			FrequencyHz:        defaultFrequencyHz,
			MaxDetectionRangeM: defaultMaxRangeM,
			Seed:               seed,
			Bounds:             core.Bounds{MinX: -200, MaxX: 200, MinY: -200, MaxY: 200},
			Meetings: core.MeetingModel{
				DurationMeanSec: 300,
				DurationSDSec:   60,
				DistanceMeanM:   1.5,
				DistanceSDM:     0.3,
				Chance:          0.1,
			},
		},
		Population: core.DefaultPopulationSpec(actors, defaultMeanSpeedMps),
		Run: core.RunSpec{
			StepSeconds:      tick.Seconds(),
			DurationSeconds:  duration.Seconds(),
			NewActorsPerStep: inflow,
		},
	}
	return sc, nil
}

func serveMetrics(ctx context.Context, log logging.Logger, addr string, collector *observability.SimCollector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	log.Info(ctx, "serving metrics", logging.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
	}
}

func exportResults(dir string, engine *core.Engine) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	readingsPath := filepath.Join(dir, "readings.csv")
	rf, err := os.Create(readingsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", readingsPath, err)
	}
	defer rf.Close()
	if err := export.WriteReadings(rf, engine.Readings()); err != nil {
		return err
	}

	meetingsPath := filepath.Join(dir, "meetings.csv")
	mf, err := os.Create(meetingsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", meetingsPath, err)
	}
	defer mf.Close()
	return export.WriteMeetings(mf, engine.Meetings())
}

func liveCount(engine *core.Engine) int {
	n := 0
	for _, a := range engine.Actors() {
		if a.Included {
			n++
		}
	}
	return n
}
