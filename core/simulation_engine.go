package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"github.com/signalsfoundry/contact-simulator/internal/logging"
	"github.com/signalsfoundry/contact-simulator/kb"
	"github.com/signalsfoundry/contact-simulator/model"
)

// Config carries the construction parameters of a simulation run.
type Config struct {
	// FrequencyHz is the carrier frequency used for the wavelength
	// conversion.
	FrequencyHz float64

	// MaxDetectionRangeM caps the range at which signal readings are
	// recorded. It does not affect meeting formation.
	MaxDetectionRangeM float64

	// Bounds is the simulation box actors must stay inside.
	Bounds Bounds

	// Meetings parameterises the stochastic meeting model. The zero
	// value disables meetings.
	Meetings MeetingModel

	// Seed initialises the engine-owned pseudorandom source. Two runs
	// with the same seed, actors, and tick sequence produce identical
	// readings and meetings.
	Seed uint64
}

// MetricsRecorder receives per-tick counts from the engine. The
// observability package provides a Prometheus-backed implementation;
// the engine itself stays free of any metrics dependency.
type MetricsRecorder interface {
	ObserveTick(liveActors int, d time.Duration)
	AddActorsExcluded(n int)
	AddMeetingsFormed(n int)
	AddReadings(n int)
	AddPairsSkipped(n int)
}

// Engine advances the contact simulation in caller-sized ticks. For
// each tick it moves every actor that is not frozen inside a meeting,
// excludes actors that left the bounds, and then runs the pairwise
// interaction scan: a stochastic meeting-formation test and a Friis
// received-power reading for each unordered pair in range.
//
// The engine is single-threaded; Step calls must be issued
// sequentially.
type Engine struct {
	// Log and Metrics may be replaced after construction. Both default
	// to no-ops so the engine is quiet as a library.
	Log     logging.Logger
	Metrics MetricsRecorder

	cfg        Config
	wavelength float64
	clock      float64

	actors  []*model.Actor
	store   *kb.EncounterStore
	sampler *meetingSampler
	rng     *rand.Rand
}

// NewEngine constructs an engine over the initial actor collection.
// The actor slice is owned by the engine afterwards; its order is the
// iteration order of the pairwise scan and therefore decides which end
// of each pair acts as the receiver.
func NewEngine(cfg Config, actors []*model.Actor) (*Engine, error) {
	if cfg.FrequencyHz <= 0 {
		return nil, fmt.Errorf("engine config: frequency must be positive, got %v", cfg.FrequencyHz)
	}
	if cfg.Bounds.MinX >= cfg.Bounds.MaxX || cfg.Bounds.MinY >= cfg.Bounds.MaxY {
		return nil, fmt.Errorf("engine config: degenerate bounds %+v", cfg.Bounds)
	}
	if cfg.Meetings.Enabled() && cfg.Meetings.MaxRangeM == 0 {
		cfg.Meetings.MaxRangeM = DefaultMeetingMaxRangeM
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	e := &Engine{
		Log:        logging.Noop(),
		cfg:        cfg,
		wavelength: Wavelength(cfg.FrequencyHz),
		actors:     actors,
		store:      kb.NewEncounterStore(),
		rng:        rng,
	}
	if cfg.Meetings.Enabled() {
		e.sampler = newMeetingSampler(cfg.Meetings, rng)
	}
	return e, nil
}

// AddActor appends an actor to the live set between ticks. No bounds
// validation happens at insertion time.
func (e *Engine) AddActor(a *model.Actor) {
	e.actors = append(e.actors, a)
}

// Clock returns the current simulation time in seconds.
func (e *Engine) Clock() float64 {
	return e.clock
}

// Wavelength returns the detection wavelength in metres.
func (e *Engine) Wavelength() float64 {
	return e.wavelength
}

// Actors returns a snapshot of the live actor collection in iteration
// order.
func (e *Engine) Actors() []*model.Actor {
	res := make([]*model.Actor, len(e.actors))
	copy(res, e.actors)
	return res
}

// Store exposes the encounter store holding the accumulated meetings
// and readings.
func (e *Engine) Store() *kb.EncounterStore {
	return e.store
}

// Readings returns the reading log in capture order.
func (e *Engine) Readings() []model.Reading {
	return e.store.Readings()
}

// Meetings returns all formed meetings in formation order.
func (e *Engine) Meetings() []model.Meeting {
	return e.store.Meetings()
}

// Step advances the simulation by dt seconds: clock, movement pass,
// then the pairwise interaction pass. Results accumulate in the store;
// Step itself only fails on an invalid elapsed time.
//
// Pairs at non-positive distance cannot be evaluated (the Friis term
// divides by distance); they are skipped uniformly, counted, and
// logged rather than failing the tick.
func (e *Engine) Step(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("step: elapsed seconds must be positive, got %v", dt)
	}
	start := time.Now()
	e.clock += dt

	excluded := e.movementPass(dt)
	formed, captured, skipped := e.interactionPass()

	if e.Metrics != nil {
		e.Metrics.ObserveTick(len(e.actors), time.Since(start))
		e.Metrics.AddActorsExcluded(excluded)
		e.Metrics.AddMeetingsFormed(formed)
		e.Metrics.AddReadings(captured)
		e.Metrics.AddPairsSkipped(skipped)
	}
	return nil
}

// movementPass advances every live actor that is not frozen inside an
// active meeting, drops actors that left the bounds, and replaces the
// live collection with the retained set. It returns the number of
// actors excluded this tick.
func (e *Engine) movementPass(dt float64) int {
	retained := e.actors[:0]
	excluded := 0

	for _, a := range e.actors {
		if !a.Included {
			continue
		}
		if e.store.InMeeting(a.ID, e.clock) {
			// Meeting participants hold their position.
			retained = append(retained, a)
			continue
		}
		a.UpdatePosition(dt)
		if !e.cfg.Bounds.Contains(a.X, a.Y) {
			a.Included = false
			excluded++
			e.Log.Debug(context.Background(), "actor left simulation bounds",
				logging.String("actor_id", a.ID),
				logging.Any("x", a.X),
				logging.Any("y", a.Y),
			)
			continue
		}
		retained = append(retained, a)
	}

	e.actors = retained
	return excluded
}

// interactionPass visits every unordered pair of live actors exactly
// once, in slice order. The first actor of a pair is the receiver and
// the second the transmitter; only that direction is tested and logged.
func (e *Engine) interactionPass() (formed, captured, skipped int) {
	for i := 0; i < len(e.actors); i++ {
		rx := e.actors[i]
		for j := i + 1; j < len(e.actors); j++ {
			tx := e.actors[j]
			if rx.ID == tx.ID {
				continue
			}

			dist := Vec2{X: rx.X, Y: rx.Y}.DistanceTo(Vec2{X: tx.X, Y: tx.Y})
			if dist <= 0 {
				skipped++
				e.Log.Warn(context.Background(), "skipping pair at non-positive distance",
					logging.String("receiver_id", rx.ID),
					logging.String("transmitter_id", tx.ID),
					logging.Any("distance_m", dist),
				)
				continue
			}

			if e.sampler != nil && dist <= e.cfg.Meetings.MaxRangeM &&
				!e.store.HavePairMet(rx.ID, tx.ID) && e.sampler.shouldForm(dist) {
				end := e.sampler.sampleEnd(e.clock)
				m := model.NewMeeting(e.clock, end, rx.ID, tx.ID)
				if err := e.store.AddMeeting(m); err != nil {
					// Cannot happen after the HavePairMet check; keep
					// the store authoritative anyway.
					e.Log.Warn(context.Background(), "meeting rejected by store", logging.String("error", err.Error()))
				} else {
					formed++
					e.Log.Info(context.Background(), "meeting formed",
						logging.String("participant_a", rx.ID),
						logging.String("participant_b", tx.ID),
						logging.Any("start", m.Start),
						logging.Any("end", m.End),
						logging.Any("distance_m", dist),
					)
				}
			}

			// Friis is only valid from one wavelength outwards.
			if dist <= e.cfg.MaxDetectionRangeM && dist >= e.wavelength {
				power := rx.ReceivedPowerDBm(e.wavelength, dist, tx.TxPowerDBm, tx.TxGainDBm)
				e.store.AppendReading(model.Reading{
					Time:             e.clock,
					ReceiverID:       rx.ID,
					TransmitterID:    tx.ID,
					PowerDBm:         power,
					ReceiverModel:    rx.DeviceModel,
					TransmitterModel: tx.DeviceModel,
				})
				captured++
			}
		}
	}
	return formed, captured, skipped
}
