package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/contact-simulator/model"
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventMeetingFormed EventType = iota
)

// Event is emitted to subscribers when a meeting forms.
type Event struct {
	Type    EventType
	Meeting model.Meeting
}

// EncounterStore is an in-memory, thread-safe store for the simulation's
// accumulated meetings and signal readings. Both collections are
// append-only and kept in insertion order so a seeded run replays to
// identical output.
//
// Meetings are additionally indexed by unordered participant pair (to
// enforce meet-once semantics) and by participant (so the per-tick
// "is this actor in a meeting" query does not scan the full list).
type EncounterStore struct {
	mu sync.RWMutex

	meetings []model.Meeting
	readings []model.Reading

	byPair        map[pairKey]struct{}
	byParticipant map[string][]int // actor ID -> indices into meetings

	subs []func(Event)
}

type pairKey struct {
	a, b string
}

// newPairKey normalises an unordered participant pair.
func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// NewEncounterStore constructs an empty store.
func NewEncounterStore() *EncounterStore {
	return &EncounterStore{
		byPair:        make(map[pairKey]struct{}),
		byParticipant: make(map[string][]int),
	}
}

// AddMeeting appends a meeting and notifies subscribers. It returns an
// error if the unordered participant pair has already met: a pair meets
// at most once for the lifetime of a run.
func (s *EncounterStore) AddMeeting(m model.Meeting) error {
	s.mu.Lock()

	key := newPairKey(m.ParticipantA, m.ParticipantB)
	if _, exists := s.byPair[key]; exists {
		s.mu.Unlock()
		return fmt.Errorf("participants %q and %q have already met", m.ParticipantA, m.ParticipantB)
	}

	idx := len(s.meetings)
	s.meetings = append(s.meetings, m)
	s.byPair[key] = struct{}{}
	s.byParticipant[m.ParticipantA] = append(s.byParticipant[m.ParticipantA], idx)
	s.byParticipant[m.ParticipantB] = append(s.byParticipant[m.ParticipantB], idx)

	event := Event{Type: EventMeetingFormed, Meeting: m}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// HavePairMet reports whether the unordered pair has a meeting on
// record, active or expired.
func (s *EncounterStore) HavePairMet(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byPair[newPairKey(a, b)]
	return ok
}

// InMeeting reports whether the given actor is inside an active meeting
// at time t. Only that actor's own meetings are consulted.
func (s *EncounterStore) InMeeting(id string, t float64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, idx := range s.byParticipant[id] {
		if s.meetings[idx].ActiveAt(t) {
			return true
		}
	}
	return false
}

// AppendReading records one signal observation.
func (s *EncounterStore) AppendReading(r model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
}

// Meetings returns a snapshot of all meetings in formation order.
func (s *EncounterStore) Meetings() []model.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Meeting, len(s.meetings))
	copy(res, s.meetings)
	return res
}

// Readings returns a snapshot of the reading log in capture order.
func (s *EncounterStore) Readings() []model.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Reading, len(s.readings))
	copy(res, s.readings)
	return res
}

// MeetingCount returns the number of recorded meetings.
func (s *EncounterStore) MeetingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meetings)
}

// ReadingCount returns the number of recorded readings.
func (s *EncounterStore) ReadingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function.
func (s *EncounterStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}
