package recognition

import (
	"context"
	"errors"
	"testing"
	"time"

	"faceattend/internal/attendance"
)

func newTestSession(cooldown time.Duration) (*Session, *attendance.MemoryStore) {
	store := attendance.NewMemoryStore()
	gallery := NewGallery([]Entry{
		{UserID: 1, Name: "alice", Embedding: vec(0, 0)},
	}, 0.6)
	s := NewSession(gallery, NewTracker(cooldown), attendance.NewService(store, attendance.ReopenNever))
	return s, store
}

func TestSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(time.Minute)
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	probe := [][]float32{vec(0.1, 0)}

	// First sighting logs in.
	res := s.ProcessFrame(ctx, probe, t0)
	if len(res) != 1 || res[0].Event != attendance.EventLogin {
		t.Fatalf("first sighting: %+v, want login", res)
	}

	// Resight inside the cooldown is suppressed.
	res = s.ProcessFrame(ctx, probe, t0.Add(10*time.Second))
	if res[0].Event != attendance.EventNone || res[0].Err != nil {
		t.Fatalf("sighting inside cooldown: event=%v err=%v, want none", res[0].Event, res[0].Err)
	}

	// Resight after the window logs out.
	res = s.ProcessFrame(ctx, probe, t0.Add(70*time.Second))
	if res[0].Event != attendance.EventLogout {
		t.Fatalf("sighting after cooldown: %v, want logout", res[0].Event)
	}

	recs := store.All()
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if !rec.Login.Equal(t0) {
		t.Errorf("login = %v, want %v", rec.Login, t0)
	}
	if rec.Duration == nil || *rec.Duration != 70*time.Second {
		t.Errorf("duration = %v, want 70s", rec.Duration)
	}
}

func TestSessionUnknownFaceCreatesNoRecord(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(time.Minute)

	res := s.ProcessFrame(ctx, [][]float32{vec(5, 5)}, time.Now())
	if res[0].Matched {
		t.Errorf("distant probe matched user %d", res[0].Match.UserID)
	}
	if len(store.All()) != 0 {
		t.Error("unknown face must not create an attendance record")
	}
}

func TestSessionEmptyGallery(t *testing.T) {
	ctx := context.Background()
	store := attendance.NewMemoryStore()
	s := NewSession(NewGallery(nil, 0.6), NewTracker(time.Minute), attendance.NewService(store, attendance.ReopenNever))

	for i := 0; i < 3; i++ {
		res := s.ProcessFrame(ctx, [][]float32{vec(0, 0)}, time.Now())
		if res[0].Matched {
			t.Fatal("empty gallery resolved a face")
		}
	}
	if len(store.All()) != 0 {
		t.Error("no records should exist with an empty gallery")
	}
}

type failingLedger struct{}

func (failingLedger) Apply(context.Context, int64, time.Time) (attendance.Event, error) {
	return attendance.EventNone, errors.New("storage down")
}

func TestSessionFaceFailureDoesNotAbortFrame(t *testing.T) {
	ctx := context.Background()
	gallery := NewGallery([]Entry{
		{UserID: 1, Name: "alice", Embedding: vec(0, 0)},
	}, 0.6)
	s := NewSession(gallery, NewTracker(time.Minute), failingLedger{})

	// Two copies of the same face: the first hits the failing ledger, the
	// second is debounced. Both produce results, neither panics.
	res := s.ProcessFrame(ctx, [][]float32{vec(0, 0), vec(0, 0)}, time.Now())
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].Err == nil {
		t.Error("first face should surface the ledger error")
	}
	if res[1].Err != nil {
		t.Errorf("second face should be suppressed, not failed: %v", res[1].Err)
	}
}
