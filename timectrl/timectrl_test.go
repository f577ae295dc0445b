package timectrl

import (
	"testing"
	"time"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerStartUpdatesNow(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 5*time.Millisecond, Accelerated)

	done := tc.Start(15 * time.Millisecond)
	<-done

	expected := start.Add(15 * time.Millisecond)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestTimeControllerNotifiesListeners(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 100*time.Millisecond, Accelerated)

	var ticks []time.Time
	tc.AddListener(func(now time.Time) {
		ticks = append(ticks, now)
	})

	done := tc.Start(300 * time.Millisecond)
	<-done

	if len(ticks) != 3 {
		t.Fatalf("listener fired %d times, want 3", len(ticks))
	}
	for i, got := range ticks {
		want := start.Add(time.Duration(i+1) * 100 * time.Millisecond)
		if !got.Equal(want) {
			t.Errorf("tick %d = %v, want %v", i, got, want)
		}
	}
}

func TestTimeControllerZeroDurationFinishesImmediately(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, Accelerated)

	fired := false
	tc.AddListener(func(time.Time) { fired = true })

	select {
	case <-tc.Start(0):
	case <-time.After(time.Second):
		t.Fatal("Start(0) did not finish")
	}
	if fired {
		t.Error("listener fired for a zero-duration run")
	}
	if got := tc.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want start time %v", got, start)
	}
}
