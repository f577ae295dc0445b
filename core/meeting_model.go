package core

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// MeetingModel holds the stochastic parameters for meeting formation.
// The zero value disables meetings entirely (DurationMeanSec == 0).
type MeetingModel struct {
	// DurationMeanSec / DurationSDSec parameterise the Normal
	// distribution meeting durations are sampled from, in seconds.
	// A mean of 0 disables meeting formation.
	DurationMeanSec float64
	DurationSDSec   float64

	// DistanceMeanM / DistanceSDM parameterise the Normal distribution
	// the proximity test evaluates, in metres.
	DistanceMeanM float64
	DistanceSDM   float64

	// Chance scales the per-tick formation probability, in [0,1].
	Chance float64

	// MaxRangeM is the maximum range at which a human-to-human meeting
	// can occur. It is independent of the detection range.
	MaxRangeM float64
}

// DefaultMeetingMaxRangeM is applied when a meeting model is enabled
// without an explicit maximum range.
const DefaultMeetingMaxRangeM = 3.0

// Enabled reports whether meeting formation is active.
func (m MeetingModel) Enabled() bool {
	return m.DurationMeanSec > 0
}

// meetingSampler owns the two Normal distributions of the meeting model
// plus the uniform draw used by the formation test. All randomness
// flows through the single source handed in by the engine, so draws are
// consumed in one fixed sequence and a seeded run is reproducible.
type meetingSampler struct {
	model MeetingModel
	rng   *rand.Rand

	distance distuv.Normal
	duration distuv.Normal
}

func newMeetingSampler(model MeetingModel, rng *rand.Rand) *meetingSampler {
	return &meetingSampler{
		model:    model,
		rng:      rng,
		distance: distuv.Normal{Mu: model.DistanceMeanM, Sigma: model.DistanceSDM, Src: rng},
		duration: distuv.Normal{Mu: model.DurationMeanSec, Sigma: model.DurationSDSec, Src: rng},
	}
}

// shouldForm runs the formation test for a pair observed at the given
// distance. Pairs beyond mean + 2·SD are pruned without consuming
// randomness. Otherwise a uniform draw r is compared against the
// distance CDF: the pair meets iff r·chance > cdf, so closer pairs
// (smaller CDF) form meetings more often. The inequality is the
// authoritative behavior; it is not equivalent to comparing against
// 1 - cdf.
func (s *meetingSampler) shouldForm(distance float64) bool {
	if distance > s.model.DistanceMeanM+2*s.model.DistanceSDM {
		return false
	}
	r := s.rng.Float64()
	cdf := s.distanceCDF(distance)
	return r*s.model.Chance > cdf
}

// distanceCDF evaluates the Normal CDF of the meeting-distance
// distribution. A non-positive SD degenerates to a step function at the
// mean rather than being fed into the distribution evaluation.
func (s *meetingSampler) distanceCDF(distance float64) float64 {
	if s.model.DistanceSDM <= 0 {
		if distance < s.model.DistanceMeanM {
			return 0
		}
		return 1
	}
	return s.distance.CDF(distance)
}

// sampleEnd draws a meeting duration and returns the absolute end time
// for a meeting starting now. The sampled end is floored to a whole
// clock unit and clamped so every meeting lasts at least one unit.
func (s *meetingSampler) sampleEnd(now float64) float64 {
	var sample float64
	if s.model.DurationSDSec <= 0 {
		sample = s.model.DurationMeanSec
	} else {
		sample = s.duration.Rand()
	}

	end := math.Floor(now + sample)
	if end < now+1 {
		end = now + 1
	}
	return end
}
