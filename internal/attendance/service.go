package attendance

import (
	"context"
	"errors"
	"time"
)

// Store is the persistence contract behind the ledger. Each call is atomic;
// the service never retries, storage errors surface to the caller.
type Store interface {
	// Fetch returns the record for (user, day), or nil when absent.
	Fetch(ctx context.Context, userID int64, day string) (*Record, error)
	// SaveLogin creates the day's record with the given login time.
	SaveLogin(ctx context.Context, userID int64, day string, t time.Time) error
	// SaveLogout closes (or re-closes) the day's record.
	SaveLogout(ctx context.Context, userID int64, day string, t time.Time, d time.Duration) error
}

// ReopenPolicy decides what happens when a user is sighted again after the
// day's record is already closed. The source behavior is to ignore it; the
// policy is the single place that may touch a closed record.
type ReopenPolicy int

const (
	// ReopenNever ignores sightings after logout; one session per day.
	ReopenNever ReopenPolicy = iota
	// ReopenExtend pushes logout_time forward to the latest sighting and
	// recomputes the duration.
	ReopenExtend
)

// Service is the attendance ledger. It turns eligible sightings into login
// and logout events against the day's record.
type Service struct {
	store  Store
	policy ReopenPolicy
}

// NewService creates a ledger backed by a store.
func NewService(store Store, policy ReopenPolicy) *Service {
	return &Service{store: store, policy: policy}
}

// Apply records one eligible sighting of a user at time now. The first
// sighting of the day logs in, the next one logs out; anything after that is
// routed through the reopen policy.
func (s *Service) Apply(ctx context.Context, userID int64, now time.Time) (Event, error) {
	if userID <= 0 {
		return EventNone, errors.New("user id required")
	}
	day := DayOf(now)

	rec, err := s.store.Fetch(ctx, userID, day)
	if err != nil {
		return EventNone, err
	}

	if rec == nil {
		if err := s.store.SaveLogin(ctx, userID, day, now); err != nil {
			return EventNone, err
		}
		return EventLogin, nil
	}

	if rec.Logout == nil {
		d := now.Sub(rec.Login)
		if err := s.store.SaveLogout(ctx, userID, day, now, d); err != nil {
			return EventNone, err
		}
		return EventLogout, nil
	}

	return s.applyAfterLogout(ctx, rec, now)
}

// applyAfterLogout handles a sighting against an already closed record.
func (s *Service) applyAfterLogout(ctx context.Context, rec *Record, now time.Time) (Event, error) {
	switch s.policy {
	case ReopenExtend:
		d := now.Sub(rec.Login)
		if err := s.store.SaveLogout(ctx, rec.UserID, rec.Day, now, d); err != nil {
			return EventNone, err
		}
		return EventLogout, nil
	default:
		return EventNone, nil
	}
}
