package memory

import (
	"context"
	"sync"
	"time"

	"github.com/smartlock/gateway/internal/smartlock/store"
)

// AttemptStore is an in-memory append-only audit log.  It is intended
// for tests and dev environments.
type AttemptStore struct {
	mu     sync.Mutex
	nextID int64
	recs   []store.AttemptRecord
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{nextID: 1}
}

func (s *AttemptStore) Append(_ context.Context, rec store.AttemptRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.recs = append(s.recs, rec)
	return rec.ID, nil
}

func (s *AttemptStore) CountSince(_ context.Context, userID int64, after time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.recs {
		if rec.UserID == userID && rec.OccurredAt.After(after) {
			n++
		}
	}
	return n, nil
}

func (s *AttemptStore) QueryRange(_ context.Context, f store.AttemptFilter) ([]store.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AttemptRecord
	for _, rec := range s.recs {
		if rec.OccurredAt.Before(f.Start) || rec.OccurredAt.After(f.End) {
			continue
		}
		if f.UserID != nil && rec.UserID != *f.UserID {
			continue
		}
		if f.CardID != nil && rec.CardID != *f.CardID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *AttemptStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.recs[:0]
	var deleted int64
	for _, rec := range s.recs {
		if rec.OccurredAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.recs = kept
	return deleted, nil
}

// Records returns a copy of all stored records.  Test-only helper.
func (s *AttemptStore) Records() []store.AttemptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.AttemptRecord, len(s.recs))
	copy(out, s.recs)
	return out
}
