package attendance

import (
	"context"
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func TestApplyFirstSightingLogsIn(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), ReopenNever)

	evt, err := svc.Apply(ctx, 1, t0)
	if err != nil {
		t.Fatal(err)
	}
	if evt != EventLogin {
		t.Errorf("event = %v, want login", evt)
	}
}

func TestApplyLoginIdempotentPerDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, ReopenNever)

	if _, err := svc.Apply(ctx, 1, t0); err != nil {
		t.Fatal(err)
	}
	// Direct duplicate login against the store keeps the first login time.
	if err := store.SaveLogin(ctx, 1, DayOf(t0), t0.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Fetch(ctx, 1, DayOf(t0))
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || !rec.Login.Equal(t0) {
		t.Errorf("login time = %v, want first login %v retained", rec, t0)
	}
}

func TestApplySecondSightingLogsOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, ReopenNever)

	_, _ = svc.Apply(ctx, 1, t0)
	evt, err := svc.Apply(ctx, 1, t0.Add(4*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if evt != EventLogout {
		t.Fatalf("event = %v, want logout", evt)
	}

	rec, _ := store.Fetch(ctx, 1, DayOf(t0))
	if rec.Duration == nil || *rec.Duration != 4*time.Hour+30*time.Minute {
		t.Errorf("duration = %v, want 4h30m", rec.Duration)
	}
}

func TestApplyAfterLogout(t *testing.T) {
	tests := []struct {
		name      string
		policy    ReopenPolicy
		wantEvent Event
		wantDur   time.Duration
	}{
		{"never reopens by default", ReopenNever, EventNone, time.Hour},
		{"extend pushes logout forward", ReopenExtend, EventLogout, 2 * time.Hour},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			svc := NewService(store, tc.policy)

			_, _ = svc.Apply(ctx, 1, t0)                // login
			_, _ = svc.Apply(ctx, 1, t0.Add(time.Hour)) // logout
			evt, err := svc.Apply(ctx, 1, t0.Add(2*time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			if evt != tc.wantEvent {
				t.Errorf("event = %v, want %v", evt, tc.wantEvent)
			}

			rec, _ := store.Fetch(ctx, 1, DayOf(t0))
			if rec.Duration == nil || *rec.Duration != tc.wantDur {
				t.Errorf("duration = %v, want %v", rec.Duration, tc.wantDur)
			}
		})
	}
}

func TestApplySeparateDaysSeparateRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, ReopenNever)

	_, _ = svc.Apply(ctx, 1, t0)
	evt, err := svc.Apply(ctx, 1, t0.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if evt != EventLogin {
		t.Errorf("next-day sighting = %v, want a fresh login", evt)
	}
	if len(store.All()) != 2 {
		t.Errorf("got %d records, want 2", len(store.All()))
	}
}

type brokenStore struct{ MemoryStore }

func (b *brokenStore) Fetch(context.Context, int64, string) (*Record, error) {
	return nil, errors.New("connection reset")
}

func TestApplyPropagatesStorageErrors(t *testing.T) {
	svc := NewService(&brokenStore{}, ReopenNever)
	if _, err := svc.Apply(context.Background(), 1, t0); err == nil {
		t.Error("storage failure must propagate")
	}
}

func TestApplyRejectsInvalidUser(t *testing.T) {
	svc := NewService(NewMemoryStore(), ReopenNever)
	if _, err := svc.Apply(context.Background(), 0, t0); err == nil {
		t.Error("zero user id must be rejected")
	}
}
