package recognition

import (
	"math"
)

// Entry is one enrolled (identity, embedding) pair.
type Entry struct {
	UserID    int64
	Name      string
	Embedding []float32
}

// Match is a resolved identity with its distance to the probe embedding.
type Match struct {
	UserID   int64
	Name     string
	Distance float64
}

// Gallery is the enrolled reference set for one recognition session.
// It is built once at session start and never mutated afterwards.
type Gallery struct {
	entries   []Entry
	threshold float64
}

// NewGallery builds a gallery from enrolled entries. Entries with empty
// embeddings are skipped so a bad enrollment can never poison matching.
// Entry order is preserved; it breaks distance ties.
func NewGallery(entries []Entry, threshold float64) *Gallery {
	if threshold <= 0 {
		threshold = 0.6
	}
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			continue
		}
		kept = append(kept, e)
	}
	return &Gallery{entries: kept, threshold: threshold}
}

// Size returns the number of reference embeddings.
func (g *Gallery) Size() int {
	return len(g.entries)
}

// Resolve matches a probe embedding against every gallery entry and returns
// the closest one. The match is accepted only when the minimum distance is
// within the threshold (inclusive); otherwise ok is false and the returned
// Match still carries the observed minimum distance for diagnostics.
// An empty gallery resolves nothing and reports an infinite distance.
func (g *Gallery) Resolve(embedding []float32) (Match, bool) {
	best := Match{Distance: math.Inf(1)}
	for _, e := range g.entries {
		d := euclideanDistance(embedding, e.Embedding)
		if d < best.Distance {
			best = Match{UserID: e.UserID, Name: e.Name, Distance: d}
		}
	}
	if best.UserID == 0 || best.Distance > g.threshold {
		return Match{Distance: best.Distance}, false
	}
	return best, true
}

// euclideanDistance computes the L2 distance between two vectors.
// Mismatched or empty vectors are infinitely far apart rather than an error.
func euclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
