package recognition

import (
	"time"
)

// Tracker debounces repeated sightings of the same identity. A face that
// stays in frame produces one eligible sighting per cooldown window instead
// of one per frame.
type Tracker struct {
	cooldown time.Duration
	lastSeen map[int64]time.Time
}

// NewTracker creates a tracker with the given cooldown window.
func NewTracker(cooldown time.Duration) *Tracker {
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Tracker{
		cooldown: cooldown,
		lastSeen: make(map[int64]time.Time),
	}
}

// Observe records a sighting of a user and reports whether it is eligible to
// become a ledger event. A sighting is eligible when the user was never seen
// before, or when at least the cooldown has elapsed since the last sighting.
// The last-seen timestamp is updated on every call regardless of eligibility.
func (t *Tracker) Observe(userID int64, now time.Time) bool {
	last, seen := t.lastSeen[userID]
	t.lastSeen[userID] = now
	return !seen || now.Sub(last) >= t.cooldown
}

// LastSeen returns the most recent sighting time for a user.
func (t *Tracker) LastSeen(userID int64) (time.Time, bool) {
	last, ok := t.lastSeen[userID]
	return last, ok
}
