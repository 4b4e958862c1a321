package service

import (
	"context"
	"time"

	"github.com/smartlock/gateway/internal/smartlock/store"
	"github.com/smartlock/gateway/internal/smartlock/types"
)

// LogQuery filters the audit log.  Nil bounds widen to the epoch and the
// current clock reading respectively; identity filters AND together when
// both are present.
type LogQuery struct {
	UserID *int64
	CardID *string
	Start  *time.Time
	End    *time.Time
}

// AuditService serves read-only views over the audit log: filtered
// listings and range summaries.
type AuditService struct {
	attempts store.AttemptStore
	now      func() time.Time
}

func NewAuditService(attempts store.AttemptStore, now func() time.Time) *AuditService {
	if now == nil {
		now = time.Now
	}
	return &AuditService{attempts: attempts, now: now}
}

// Logs returns matching audit records in insertion order.
func (s *AuditService) Logs(ctx context.Context, q LogQuery) ([]store.AttemptRecord, error) {
	start, end := s.bounds(q.Start, q.End)
	return s.attempts.QueryRange(ctx, store.AttemptFilter{
		UserID: q.UserID,
		CardID: q.CardID,
		Start:  start,
		End:    end,
	})
}

// Summarize tallies the records in [start, end], inclusive.
func (s *AuditService) Summarize(ctx context.Context, startPtr, endPtr *time.Time) (types.AccessStats, error) {
	start, end := s.bounds(startPtr, endPtr)
	recs, err := s.attempts.QueryRange(ctx, store.AttemptFilter{Start: start, End: end})
	if err != nil {
		return types.AccessStats{}, err
	}

	var stats types.AccessStats
	for _, rec := range recs {
		stats.Total++
		switch rec.Status {
		case store.StatusGranted:
			stats.Granted++
		case store.StatusDenied:
			stats.Denied++
		}
		if rec.Overtime {
			stats.Overtime++
		}
		if rec.Excessive {
			stats.Excessive++
		}
	}
	return stats, nil
}

func (s *AuditService) bounds(start, end *time.Time) (time.Time, time.Time) {
	lo := time.Unix(0, 0).UTC()
	if start != nil {
		lo = *start
	}
	hi := s.now().UTC()
	if end != nil {
		hi = *end
	}
	return lo, hi
}
