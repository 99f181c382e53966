package recognition

import (
	"testing"
	"time"
)

func TestTrackerFirstSightingEligible(t *testing.T) {
	tr := NewTracker(time.Minute)
	if !tr.Observe(1, time.Now()) {
		t.Error("first sighting should be eligible")
	}
}

func TestTrackerDebouncesInsideCooldown(t *testing.T) {
	tr := NewTracker(time.Minute)
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	eligible := 0
	for i := 0; i < 10; i++ {
		if tr.Observe(1, t0.Add(time.Duration(i)*5*time.Second)) {
			eligible++
		}
	}
	if eligible != 1 {
		t.Errorf("got %d eligible sightings inside the window, want 1", eligible)
	}
}

func TestTrackerCooldownBoundary(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		gap  time.Duration
		want bool
	}{
		{"just inside window", 59 * time.Second, false},
		{"exactly at window", time.Minute, true},
		{"past window", 61 * time.Second, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker(time.Minute)
			tr.Observe(1, t0)
			if got := tr.Observe(1, t0.Add(tc.gap)); got != tc.want {
				t.Errorf("Observe after %s = %v, want %v", tc.gap, got, tc.want)
			}
		})
	}
}

func TestTrackerUpdatesLastSeenOnEveryObservation(t *testing.T) {
	tr := NewTracker(time.Minute)
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	tr.Observe(1, t0)
	tr.Observe(1, t0.Add(10*time.Second)) // suppressed, but still refreshes

	last, ok := tr.LastSeen(1)
	if !ok || !last.Equal(t0.Add(10*time.Second)) {
		t.Errorf("last seen = %v (%v), want %v", last, ok, t0.Add(10*time.Second))
	}
}

func TestTrackerIdentitiesIndependent(t *testing.T) {
	tr := NewTracker(time.Minute)
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	tr.Observe(1, t0)
	if !tr.Observe(2, t0.Add(time.Second)) {
		t.Error("a different identity must not be debounced by user 1's sighting")
	}
}
