package core

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/signalsfoundry/contact-simulator/model"
)

// Namer assigns a device-model label to a freshly generated actor based
// on its current parameters.
type Namer interface {
	Name(a *model.Actor)
}

// NoopNamer leaves the default device model untouched.
type NoopNamer struct{}

func (NoopNamer) Name(*model.Actor) {}

// FixedNamer labels every actor with the same device model.
type FixedNamer struct {
	Label string
}

func (n FixedNamer) Name(a *model.Actor) {
	a.SetModel(n.Label)
}

// TxPowerNamer derives the device model from the actor's transmit
// power, so analysis can group devices of equal power.
type TxPowerNamer struct{}

func (TxPowerNamer) Name(a *model.Actor) {
	a.SetModel(fmt.Sprintf("model%03d", int(a.TxPowerDBm)))
}

// TxGainNamer derives the device model from the actor's transmitter
// gain, rounded to the 0.5 dB steps the generator produces.
type TxGainNamer struct{}

func (TxGainNamer) Name(a *model.Actor) {
	a.SetModel(fmt.Sprintf("model-g%04.1f", a.TxGainDBm))
}

// SelectionMode chooses how a radio parameter is sampled per actor.
type SelectionMode string

const (
	SelectFixed    SelectionMode = "fixed"
	SelectGaussian SelectionMode = "gaussian"
)

// PopulationSpec describes one batch of generated actors.
type PopulationSpec struct {
	Count     int
	MeanSpeed float64 // m/s, applied to every actor

	// PlacementRadiusM is the radius of the circle actors are scattered
	// on. Zero selects the default 200 m.
	PlacementRadiusM float64

	TxPowerMode SelectionMode
	TxPowerMean float64
	TxGainMode  SelectionMode
	TxGainMean  float64
	RxGainMode  SelectionMode
	RxGainMean  float64

	// Namer relabels each generated actor. Nil selects TxPowerNamer.
	Namer Namer
}

// Gaussian spreads used by SelectGaussian, in dB.
const (
	txPowerSD = 4.0
	gainSD    = 2.0
)

// DefaultPopulationSpec returns a spec with the conventional defaults:
// fixed 13 dBm transmit power, 1.5 dB gains, 200 m placement radius,
// transmit-power-derived device models.
func DefaultPopulationSpec(count int, meanSpeed float64) PopulationSpec {
	return PopulationSpec{
		Count:            count,
		MeanSpeed:        meanSpeed,
		PlacementRadiusM: 200,
		TxPowerMode:      SelectFixed,
		TxPowerMean:      13,
		TxGainMode:       SelectFixed,
		TxGainMean:       1.5,
		RxGainMode:       SelectFixed,
		RxGainMean:       1.5,
		Namer:            TxPowerNamer{},
	}
}

// Generator produces actor batches with sequential IDs unique across
// calls, from its own seedable pseudorandom source. It is independent
// of the engine's source so population layout and simulation outcomes
// can be varied separately.
type Generator struct {
	rng    *rand.Rand
	nextID int
}

// NewGenerator constructs a generator over the given source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, nextID: 1}
}

// Generate samples one batch of actors: positions uniformly on the
// placement circle, headings offset uniformly from the inward-facing
// direction, radio parameters per the PopulationSpec selection modes,
// each actor relabeled by its namer.
func (g *Generator) Generate(spec PopulationSpec) []*model.Actor {
	radius := spec.PlacementRadiusM
	if radius <= 0 {
		radius = 200
	}
	namer := spec.Namer
	if namer == nil {
		namer = TxPowerNamer{}
	}

	actors := make([]*model.Actor, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		faceAngle := g.rng.Float64() * 2 * math.Pi
		headingOffset := g.rng.Float64() * math.Pi

		x := radius * math.Sin(faceAngle)
		y := radius * math.Cos(faceAngle)
		// Head roughly back across the circle: opposite of the facing
		// angle plus a quarter turn, minus the sampled offset.
		angle := faceAngle + 1.5*math.Pi - headingOffset

		txPower := spec.TxPowerMean
		if spec.TxPowerMode == SelectGaussian {
			txPower = g.rng.NormFloat64()*txPowerSD + spec.TxPowerMean
			if txPower < 0 {
				txPower = 0
			}
			txPower = math.Floor(txPower)
		}

		txGain := spec.TxGainMean
		if spec.TxGainMode == SelectGaussian {
			txGain = clampToHalfDB(g.rng.NormFloat64()*gainSD + spec.TxGainMean)
		}

		rxGain := spec.RxGainMean
		if spec.RxGainMode == SelectGaussian {
			rxGain = clampToHalfDB(g.rng.NormFloat64()*gainSD + spec.RxGainMean)
		}

		a := model.NewActor(fmt.Sprintf("actor-%04d", g.nextID), txPower, txGain, rxGain)
		g.nextID++
		a.SetPosition(x, y)
		a.SetVelocity(angle, spec.MeanSpeed)
		namer.Name(a)
		actors = append(actors, a)
	}
	return actors
}

// clampToHalfDB floors a sampled gain to the nearest 0.5 dB, never
// below zero.
func clampToHalfDB(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Floor(v*2) / 2
}
