package recognition

import (
	"context"
	"time"

	"faceattend/internal/attendance"
)

// Ledger is the attendance side of the pipeline.
type Ledger interface {
	Apply(ctx context.Context, userID int64, now time.Time) (attendance.Event, error)
}

// FrameResult is the outcome of processing one detected face.
type FrameResult struct {
	Match   Match
	Matched bool
	Event   attendance.Event
	Err     error
}

// Session drives one recognition run: a fixed gallery, per-identity debounce
// state and the attendance ledger. Not safe for concurrent use; the pipeline
// processes one frame at a time.
type Session struct {
	gallery *Gallery
	tracker *Tracker
	ledger  Ledger
}

// NewSession creates a recognition session.
func NewSession(gallery *Gallery, tracker *Tracker, ledger Ledger) *Session {
	return &Session{gallery: gallery, tracker: tracker, ledger: ledger}
}

// ProcessFrame resolves every detected embedding of one frame and applies
// eligible sightings to the ledger. A failure on one face is carried in its
// result and never aborts the remaining faces.
func (s *Session) ProcessFrame(ctx context.Context, embeddings [][]float32, now time.Time) []FrameResult {
	framesProcessed.Inc()

	results := make([]FrameResult, 0, len(embeddings))
	for _, emb := range embeddings {
		results = append(results, s.processFace(ctx, emb, now))
	}
	return results
}

func (s *Session) processFace(ctx context.Context, embedding []float32, now time.Time) FrameResult {
	match, ok := s.gallery.Resolve(embedding)
	if !ok {
		facesUnknown.Inc()
		return FrameResult{Match: match}
	}
	facesMatched.Inc()
	matchDistance.Observe(match.Distance)

	res := FrameResult{Match: match, Matched: true}
	if !s.tracker.Observe(match.UserID, now) {
		return res
	}

	evt, err := s.ledger.Apply(ctx, match.UserID, now)
	if err != nil {
		res.Err = err
		return res
	}
	res.Event = evt
	if evt != attendance.EventNone {
		eventsRecorded.WithLabelValues(evt.String()).Inc()
	}
	return res
}
