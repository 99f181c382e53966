package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a map-backed Store for dev runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func key(userID int64, day string) string {
	return fmt.Sprintf("%d|%s", userID, day)
}

// Fetch returns a copy of the stored record, or nil when absent.
func (m *MemoryStore) Fetch(_ context.Context, userID int64, day string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key(userID, day)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// SaveLogin creates the day's record. An existing record is left untouched.
func (m *MemoryStore) SaveLogin(_ context.Context, userID int64, day string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userID, day)
	if _, ok := m.records[k]; ok {
		return nil
	}
	m.records[k] = &Record{UserID: userID, Day: day, Login: t}
	return nil
}

// SaveLogout closes the day's record.
func (m *MemoryStore) SaveLogout(_ context.Context, userID int64, day string, t time.Time, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key(userID, day)]
	if !ok {
		return fmt.Errorf("no record for user %d on %s", userID, day)
	}
	logout := t
	dur := d
	rec.Logout = &logout
	rec.Duration = &dur
	return nil
}

// All returns the stored records, ordered by nothing in particular.
func (m *MemoryStore) All() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out
}
