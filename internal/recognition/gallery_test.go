package recognition

import (
	"math"
	"testing"
)

func vec(vals ...float32) []float32 {
	return vals
}

func TestResolveClosestEntryWins(t *testing.T) {
	g := NewGallery([]Entry{
		{UserID: 1, Name: "alice", Embedding: vec(0, 0, 0)},
		{UserID: 2, Name: "bob", Embedding: vec(1, 0, 0)},
	}, 0.6)

	match, ok := g.Resolve(vec(0.9, 0, 0))
	if !ok {
		t.Fatalf("expected a match, got none (distance %.3f)", match.Distance)
	}
	if match.UserID != 2 {
		t.Errorf("resolved user %d, want 2", match.UserID)
	}
}

func TestResolveDeterministic(t *testing.T) {
	g := NewGallery([]Entry{
		{UserID: 1, Name: "alice", Embedding: vec(0, 0)},
		{UserID: 2, Name: "bob", Embedding: vec(3, 4)},
	}, 10)

	probe := vec(1, 1)
	first, ok1 := g.Resolve(probe)
	for i := 0; i < 5; i++ {
		again, ok2 := g.Resolve(probe)
		if ok1 != ok2 || again.UserID != first.UserID || again.Distance != first.Distance {
			t.Fatalf("call %d: got (%d, %v, %v), want (%d, %v, %v)",
				i, again.UserID, again.Distance, ok2, first.UserID, first.Distance, ok1)
		}
	}
}

func TestResolveTieBreaksOnGalleryOrder(t *testing.T) {
	// Two entries at identical distance from the probe; the earlier one wins.
	g := NewGallery([]Entry{
		{UserID: 5, Name: "first", Embedding: vec(1, 0)},
		{UserID: 6, Name: "second", Embedding: vec(-1, 0)},
	}, 2)

	match, ok := g.Resolve(vec(0, 0))
	if !ok {
		t.Fatal("expected a match")
	}
	if match.UserID != 5 {
		t.Errorf("tie resolved to user %d, want first entry (5)", match.UserID)
	}
}

func TestResolveThresholdBoundary(t *testing.T) {
	// Single entry at distance exactly 0.6 from probes built below.
	g := NewGallery([]Entry{
		{UserID: 1, Name: "alice", Embedding: vec(0, 0)},
	}, 0.6)

	tests := []struct {
		name  string
		probe []float32
		want  bool
	}{
		{"just inside", vec(0.59, 0), true},
		{"exactly at threshold", vec(0.6, 0), true},
		{"just outside", vec(0.61, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			match, ok := g.Resolve(tc.probe)
			if ok != tc.want {
				t.Errorf("Resolve(%v) matched=%v (distance %.4f), want %v", tc.probe, ok, match.Distance, tc.want)
			}
			if !ok && match.UserID != 0 {
				t.Errorf("rejected match leaked identity %d", match.UserID)
			}
		})
	}
}

func TestResolveEmptyGallery(t *testing.T) {
	g := NewGallery(nil, 0.6)

	match, ok := g.Resolve(vec(1, 2, 3))
	if ok {
		t.Fatalf("empty gallery resolved user %d", match.UserID)
	}
	if !math.IsInf(match.Distance, 1) {
		t.Errorf("distance = %v, want +Inf", match.Distance)
	}
}

func TestNewGallerySkipsEmptyEmbeddings(t *testing.T) {
	g := NewGallery([]Entry{
		{UserID: 1, Name: "alice"},
		{UserID: 2, Name: "bob", Embedding: vec(1, 2)},
	}, 0.6)

	if g.Size() != 1 {
		t.Errorf("gallery size = %d, want 1", g.Size())
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", vec(1, 2, 3), vec(1, 2, 3), 0},
		{"pythagorean", vec(0, 0), vec(3, 4), 5},
		{"mismatched lengths", vec(1), vec(1, 2), math.Inf(1)},
		{"empty", nil, nil, math.Inf(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := euclideanDistance(tc.a, tc.b)
			if got != tc.want {
				t.Errorf("euclideanDistance = %v, want %v", got, tc.want)
			}
		})
	}
}
