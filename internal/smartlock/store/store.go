package store

import (
	"context"
	"errors"
	"time"
)

// Attempt status values.  An attempt is written exactly once, with its
// terminal status.
const (
	StatusGranted = "GRANTED"
	StatusDenied  = "DENIED"
)

// ErrUnknownCard is returned when a card identifier resolves to no user.
var ErrUnknownCard = errors.New("unknown card")

// User is a directory entry mapping a badge card to a person.  Read-only
// from the decision engine's perspective.
type User struct {
	ID     int64
	Name   string
	CardID string
}

// AttemptRecord captures a single access decision for the audit log.
// AttemptCount is the hourly count observed before this attempt, plus
// one for the attempt itself; Overtime and Excessive reflect the state
// at evaluation time regardless of the final status.
type AttemptRecord struct {
	ID           int64
	UserID       int64
	CardID       string
	OccurredAt   time.Time
	Location     string
	Status       string
	AttemptCount int
	Overtime     bool
	Excessive    bool
}

// AttemptFilter selects audit records.  Both bounds are inclusive.
// UserID and CardID are optional; when both are set they AND together.
type AttemptFilter struct {
	UserID *int64
	CardID *string
	Start  time.Time
	End    time.Time
}

// UserStore resolves badge cards to users.
type UserStore interface {
	ResolveByCard(ctx context.Context, cardID string) (User, error)
}

// AttemptStore persists access decisions as an append-only audit log.
type AttemptStore interface {
	// Append stores one terminal record and returns its assigned ID.
	Append(ctx context.Context, rec AttemptRecord) (int64, error)

	// CountSince counts attempts by one user strictly after the given
	// instant (exclusive lower bound of a rolling window).
	CountSince(ctx context.Context, userID int64, after time.Time) (int, error)

	// QueryRange returns matching records in insertion order.
	QueryRange(ctx context.Context, f AttemptFilter) ([]AttemptRecord, error)

	// PruneOlderThan deletes records that occurred before the cutoff and
	// returns the number deleted.  Retention policy lives outside the
	// decision engine.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
