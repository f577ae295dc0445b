package kb

import (
	"testing"

	"github.com/signalsfoundry/contact-simulator/model"
)

func TestAddMeeting_RejectsSecondMeetingForPair(t *testing.T) {
	s := NewEncounterStore()

	if err := s.AddMeeting(model.NewMeeting(0, 10, "a1", "a2")); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}
	// Same pair in reversed order must be rejected too.
	if err := s.AddMeeting(model.NewMeeting(20, 30, "a2", "a1")); err == nil {
		t.Fatalf("expected meet-once violation for reversed pair, got nil")
	}
	if got := s.MeetingCount(); got != 1 {
		t.Errorf("MeetingCount = %d, want 1", got)
	}
}

func TestHavePairMet_IsUnordered(t *testing.T) {
	s := NewEncounterStore()
	if err := s.AddMeeting(model.NewMeeting(0, 10, "a1", "a2")); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}

	if !s.HavePairMet("a1", "a2") || !s.HavePairMet("a2", "a1") {
		t.Errorf("expected pair to be recorded in both orders")
	}
	if s.HavePairMet("a1", "a3") {
		t.Errorf("unexpected meeting for pair that never met")
	}
}

func TestInMeeting_UsesParticipantIndex(t *testing.T) {
	s := NewEncounterStore()
	if err := s.AddMeeting(model.NewMeeting(5, 15, "a1", "a2")); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}
	// An expired meeting must not block a later one with a different
	// partner.
	if err := s.AddMeeting(model.NewMeeting(20, 30, "a1", "a3")); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}

	cases := []struct {
		id   string
		t    float64
		want bool
	}{
		{id: "a1", t: 5, want: true},
		{id: "a1", t: 15, want: true},
		{id: "a1", t: 17, want: false},
		{id: "a1", t: 25, want: true},
		{id: "a2", t: 25, want: false},
		{id: "a3", t: 25, want: true},
		{id: "a4", t: 10, want: false},
	}
	for _, tc := range cases {
		if got := s.InMeeting(tc.id, tc.t); got != tc.want {
			t.Errorf("InMeeting(%q, %v) = %v, want %v", tc.id, tc.t, got, tc.want)
		}
	}
}

func TestSubscribe_NotifiesAndUnsubscribes(t *testing.T) {
	s := NewEncounterStore()

	var events []Event
	unsub := s.Subscribe(func(e Event) { events = append(events, e) })

	if err := s.AddMeeting(model.NewMeeting(0, 1, "a1", "a2")); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventMeetingFormed {
		t.Fatalf("expected one EventMeetingFormed, got %v", events)
	}
	if events[0].Meeting.ParticipantA != "a1" {
		t.Errorf("event meeting participant = %q, want a1", events[0].Meeting.ParticipantA)
	}

	unsub()
	if err := s.AddMeeting(model.NewMeeting(0, 1, "a3", "a4")); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("received event after unsubscribe")
	}
}

func TestReadings_SnapshotPreservesOrder(t *testing.T) {
	s := NewEncounterStore()
	s.AppendReading(model.Reading{Time: 1, ReceiverID: "a1", TransmitterID: "a2"})
	s.AppendReading(model.Reading{Time: 2, ReceiverID: "a2", TransmitterID: "a3"})

	got := s.Readings()
	if len(got) != 2 {
		t.Fatalf("len(Readings) = %d, want 2", len(got))
	}
	if got[0].Time != 1 || got[1].Time != 2 {
		t.Errorf("readings out of order: %+v", got)
	}

	// Mutating the snapshot must not affect the store.
	got[0].Time = 99
	if s.Readings()[0].Time != 1 {
		t.Errorf("snapshot aliases internal storage")
	}
}
