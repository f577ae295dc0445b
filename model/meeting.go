package model

// Meeting is a pairwise proximity encounter over a closed interval of
// simulation time. Both participants are frozen in place while the
// meeting is active. A Meeting is immutable once created.
type Meeting struct {
	// Start and End are absolute simulation clock values, End >= Start.
	Start float64
	End   float64

	// ParticipantA and ParticipantB are the two actor IDs. Order has
	// no meaning; a pair meets at most once per simulation run.
	ParticipantA string
	ParticipantB string
}

// NewMeeting constructs a meeting spanning [start, end] for the two
// given participants.
func NewMeeting(start, end float64, participantA, participantB string) Meeting {
	return Meeting{
		Start:        start,
		End:          end,
		ParticipantA: participantA,
		ParticipantB: participantB,
	}
}

// ActiveAt reports whether the meeting is in progress at time t,
// inclusive on both boundaries.
func (m Meeting) ActiveAt(t float64) bool {
	return t >= m.Start && t <= m.End
}

// HasParticipant reports whether the given actor ID takes part in this
// meeting, regardless of time.
func (m Meeting) HasParticipant(id string) bool {
	return id == m.ParticipantA || id == m.ParticipantB
}

// Duration returns End - Start in simulation clock units.
func (m Meeting) Duration() float64 {
	return m.End - m.Start
}
