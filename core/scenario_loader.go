package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Scenario bundles everything a driver needs to run a simulation:
// engine configuration, the initial population, and the run shape.
type Scenario struct {
	Engine     Config
	Population PopulationSpec
	Run        RunSpec
}

// RunSpec describes how a driver should advance the engine.
type RunSpec struct {
	// StepSeconds is the elapsed time per tick.
	StepSeconds float64
	// DurationSeconds is the total simulated time.
	DurationSeconds float64
	// NewActorsPerStep is the population inflow added between ticks.
	NewActorsPerStep int
}

// Steps returns the whole number of ticks in the run.
func (r RunSpec) Steps() int {
	if r.StepSeconds <= 0 {
		return 0
	}
	return int(r.DurationSeconds / r.StepSeconds)
}

// internal JSON shapes - kept unexported so we are free to evolve them.
type scenarioJSON struct {
	FrequencyHz        float64           `json:"frequency_hz"`
	MaxDetectionRangeM float64           `json:"max_detection_range_m"`
	Seed               uint64            `json:"seed"`
	Bounds             boundsJSON        `json:"bounds"`
	Meetings           *meetingModelJSON `json:"meetings"`
	Population         *populationJSON   `json:"population"`
	Run                runJSON           `json:"run"`
}

type boundsJSON struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

type meetingModelJSON struct {
	DurationMeanSec float64 `json:"duration_mean_sec"`
	DurationSDSec   float64 `json:"duration_sd_sec"`
	DistanceMeanM   float64 `json:"distance_mean_m"`
	DistanceSDM     float64 `json:"distance_sd_m"`
	Chance          float64 `json:"chance"`
	MaxRangeM       float64 `json:"max_range_m"`
}

type populationJSON struct {
	Count            int        `json:"count"`
	MeanSpeedMps     float64    `json:"mean_speed_mps"`
	PlacementRadiusM float64    `json:"placement_radius_m"`
	TxPower          *paramJSON `json:"tx_power"`
	TxGain           *paramJSON `json:"tx_gain"`
	RxGain           *paramJSON `json:"rx_gain"`
	Namer            string     `json:"namer"` // "tx_power" | "tx_gain" | "none" | fixed label
}

type paramJSON struct {
	Mode string  `json:"mode"` // "fixed" | "gaussian"
	Mean float64 `json:"mean"`
}

type runJSON struct {
	StepSeconds      float64 `json:"step_seconds"`
	DurationSeconds  float64 `json:"duration_seconds"`
	NewActorsPerStep int     `json:"new_actors_per_step"`
}

// LoadScenario reads a JSON scenario from r and maps it onto engine,
// population, and run configuration. It fails only on JSON / structural
// errors; semantic validation happens in NewEngine.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}
	if payload.FrequencyHz <= 0 {
		return nil, fmt.Errorf("LoadScenario: frequency_hz must be positive")
	}

	sc := &Scenario{
		Engine: Config{
			FrequencyHz:        payload.FrequencyHz,
			MaxDetectionRangeM: payload.MaxDetectionRangeM,
			Seed:               payload.Seed,
			Bounds: Bounds{
				MinX: payload.Bounds.MinX,
				MaxX: payload.Bounds.MaxX,
				MinY: payload.Bounds.MinY,
				MaxY: payload.Bounds.MaxY,
			},
		},
		Run: RunSpec{
			StepSeconds:      payload.Run.StepSeconds,
			DurationSeconds:  payload.Run.DurationSeconds,
			NewActorsPerStep: payload.Run.NewActorsPerStep,
		},
	}

	if payload.Meetings != nil {
		sc.Engine.Meetings = MeetingModel{
			DurationMeanSec: payload.Meetings.DurationMeanSec,
			DurationSDSec:   payload.Meetings.DurationSDSec,
			DistanceMeanM:   payload.Meetings.DistanceMeanM,
			DistanceSDM:     payload.Meetings.DistanceSDM,
			Chance:          payload.Meetings.Chance,
			MaxRangeM:       payload.Meetings.MaxRangeM,
		}
	}

	pop := DefaultPopulationSpec(0, 0)
	if payload.Population != nil {
		pop.Count = payload.Population.Count
		pop.MeanSpeed = payload.Population.MeanSpeedMps
		if payload.Population.PlacementRadiusM > 0 {
			pop.PlacementRadiusM = payload.Population.PlacementRadiusM
		}
		applyParam(payload.Population.TxPower, &pop.TxPowerMode, &pop.TxPowerMean)
		applyParam(payload.Population.TxGain, &pop.TxGainMode, &pop.TxGainMean)
		applyParam(payload.Population.RxGain, &pop.RxGainMode, &pop.RxGainMean)
		pop.Namer = namerFromString(payload.Population.Namer)
	}
	sc.Population = pop

	return sc, nil
}

func applyParam(p *paramJSON, mode *SelectionMode, mean *float64) {
	if p == nil {
		return
	}
	*mode = selectionModeFromString(p.Mode)
	*mean = p.Mean
}

// selectionModeFromString maps the JSON "mode" string to our selection
// modes. Unknown / empty values default to fixed.
func selectionModeFromString(s string) SelectionMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gaussian", "normal":
		return SelectGaussian
	default:
		return SelectFixed
	}
}

// namerFromString maps the JSON "namer" value to a Namer. The special
// values "tx_power", "tx_gain", and "none" select the derived namers;
// anything else is treated as a fixed label, and empty keeps the
// tx-power default.
func namerFromString(s string) Namer {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tx_power", "txpower":
		return TxPowerNamer{}
	case "tx_gain", "txgain":
		return TxGainNamer{}
	case "none":
		return NoopNamer{}
	default:
		return FixedNamer{Label: s}
	}
}
