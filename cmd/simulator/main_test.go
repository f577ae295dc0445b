package main

import (
	"strings"
	"testing"
	"time"

	xrand "golang.org/x/exp/rand"

	"github.com/signalsfoundry/contact-simulator/core"
	"github.com/signalsfoundry/contact-simulator/internal/export"
	"github.com/signalsfoundry/contact-simulator/timectrl"
)

// TestIntegration_SeededRunProducesResults drives a small accelerated
// run end to end: generated population, tick loop with inflow, and CSV
// export of the accumulated readings.
func TestIntegration_SeededRunProducesResults(t *testing.T) {
	scenario, err := resolveScenario("", 7, 20, 1, 30*time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}

	rng := xrand.New(xrand.NewSource(scenario.Engine.Seed + 1))
	gen := core.NewGenerator(rng)
	initial := gen.Generate(scenario.Population)

	engine, err := core.NewEngine(scenario.Engine, initial)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	tickDur := time.Duration(scenario.Run.StepSeconds * float64(time.Second))
	tc := timectrl.NewTimeController(start, tickDur, timectrl.Accelerated)

	inflowSpec := scenario.Population
	inflowSpec.Count = scenario.Run.NewActorsPerStep

	ticks := 0
	tc.AddListener(func(time.Time) {
		for _, a := range gen.Generate(inflowSpec) {
			engine.AddActor(a)
		}
		if err := engine.Step(scenario.Run.StepSeconds); err != nil {
			t.Errorf("Step: %v", err)
		}
		ticks++
	})

	runDur := time.Duration(scenario.Run.DurationSeconds * float64(time.Second))
	<-tc.Start(runDur)

	if want := scenario.Run.Steps(); ticks != want {
		t.Fatalf("ran %d ticks, want %d", ticks, want)
	}
	if got := engine.Clock(); got != scenario.Run.DurationSeconds {
		t.Errorf("engine clock = %v, want %v", got, scenario.Run.DurationSeconds)
	}
	if len(engine.Actors()) <= 20 {
		t.Errorf("inflow did not grow the population: %d actors", len(engine.Actors()))
	}
	if engine.Store().ReadingCount() == 0 {
		t.Error("no signal readings captured over the whole run")
	}

	var buf strings.Builder
	if err := export.WriteReadings(&buf, engine.Readings()); err != nil {
		t.Fatalf("WriteReadings: %v", err)
	}
	lines := strings.Count(buf.String(), "\n")
	if lines != engine.Store().ReadingCount()+1 {
		t.Errorf("exported %d lines, want %d readings plus header", lines, engine.Store().ReadingCount())
	}
}

// TestResolveScenario_FromFile exercises the file path against the
// checked-in example scenario.
func TestResolveScenario_FromFile(t *testing.T) {
	scenario, err := resolveScenario("../../configs/scenario.json", 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if scenario.Engine.FrequencyHz != 2436e6 {
		t.Errorf("FrequencyHz = %v, want 2.436 GHz", scenario.Engine.FrequencyHz)
	}
	if scenario.Run.Steps() != 1200 {
		t.Errorf("Steps() = %d, want 1200", scenario.Run.Steps())
	}
	if scenario.Population.Count != 30 {
		t.Errorf("Population.Count = %d, want 30", scenario.Population.Count)
	}
}
