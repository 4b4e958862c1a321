package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartlock/gateway/internal/smartlock/store"
	sqlitestore "github.com/smartlock/gateway/internal/smartlock/store/sqlite"
)

// ═══════════════════════════════════════════════════════════════════════════
// Append
// ═══════════════════════════════════════════════════════════════════════════

func TestAttemptStore_Append_InsertsRow(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	userID := seedUser(t, conn, "Alice Kim", "CARD-0001")
	as := sqlitestore.NewAttemptStore(conn, w)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	id, err := as.Append(context.Background(), store.AttemptRecord{
		UserID:       userID,
		CardID:       "CARD-0001",
		OccurredAt:   now,
		Location:     "front-door",
		Status:       store.StatusGranted,
		AttemptCount: 1,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero assigned ID")
	}

	var count int
	err = conn.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM access_attempts WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestAttemptStore_Append_ColumnsCorrect(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	userID := seedUser(t, conn, "Alice Kim", "CARD-0001")
	as := sqlitestore.NewAttemptStore(conn, w)

	now := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC)

	_, err := as.Append(context.Background(), store.AttemptRecord{
		UserID:       userID,
		CardID:       "CARD-0001",
		OccurredAt:   now,
		Location:     "server-room",
		Status:       store.StatusDenied,
		AttemptCount: 6,
		Overtime:     true,
		Excessive:    true,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	var (
		cardID       string
		occurredMs   int64
		location     string
		status       string
		attemptCount int
		overtime     int
		excessive    int
	)
	err = conn.QueryRowContext(context.Background(), `
SELECT card_id, occurred_at_ms, location, status, attempt_count, is_overtime, is_excessive
FROM access_attempts WHERE user_id = ?`, userID,
	).Scan(&cardID, &occurredMs, &location, &status, &attemptCount, &overtime, &excessive)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if cardID != "CARD-0001" {
		t.Errorf("expected card_id=CARD-0001, got %q", cardID)
	}
	if occurredMs != now.UnixMilli() {
		t.Errorf("expected occurred_at_ms=%d, got %d", now.UnixMilli(), occurredMs)
	}
	if location != "server-room" {
		t.Errorf("expected location=server-room, got %q", location)
	}
	if status != store.StatusDenied {
		t.Errorf("expected status=DENIED, got %q", status)
	}
	if attemptCount != 6 {
		t.Errorf("expected attempt_count=6, got %d", attemptCount)
	}
	if overtime != 1 || excessive != 1 {
		t.Errorf("expected both flags 1, got overtime=%d excessive=%d", overtime, excessive)
	}
}

func TestAttemptStore_Append_AppendOnly(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	userID := seedUser(t, conn, "Alice Kim", "CARD-0001")
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := as.Append(ctx, store.AttemptRecord{
			UserID:       userID,
			CardID:       "CARD-0001",
			OccurredAt:   now.Add(time.Duration(i) * time.Second),
			Status:       store.StatusGranted,
			AttemptCount: i + 1,
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	var count int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_attempts WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows (append-only), got %d", count)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// CountSince: exclusive lower bound
// ═══════════════════════════════════════════════════════════════════════════

func TestAttemptStore_CountSince_ExclusiveLowerBound(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	userID := seedUser(t, conn, "Alice Kim", "CARD-0001")
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// One row exactly on the bound, one inside, one well outside.
	for _, at := range []time.Time{
		now.Add(-time.Hour),
		now.Add(-30 * time.Minute),
		now.Add(-2 * time.Hour),
	} {
		_, err := as.Append(ctx, store.AttemptRecord{
			UserID:       userID,
			CardID:       "CARD-0001",
			OccurredAt:   at,
			Status:       store.StatusDenied,
			AttemptCount: 1,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, err := as.CountSince(ctx, userID, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 (bound is exclusive), got %d", n)
	}
}

func TestAttemptStore_CountSince_ScopedToUser(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	alice := seedUser(t, conn, "Alice Kim", "CARD-0001")
	bob := seedUser(t, conn, "Bob Park", "CARD-0002")
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, userID := range []int64{alice, alice, bob} {
		_, err := as.Append(ctx, store.AttemptRecord{
			UserID:       userID,
			CardID:       "CARD-000x",
			OccurredAt:   now.Add(-time.Duration(i) * time.Minute),
			Status:       store.StatusDenied,
			AttemptCount: 1,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, err := as.CountSince(ctx, alice, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 attempts for alice, got %d", n)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// QueryRange: filters and ordering
// ═══════════════════════════════════════════════════════════════════════════

func TestAttemptStore_QueryRange_FiltersAndOrder(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	alice := seedUser(t, conn, "Alice Kim", "CARD-0001")
	bob := seedUser(t, conn, "Bob Park", "CARD-0002")
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	seeds := []store.AttemptRecord{
		{UserID: alice, CardID: "CARD-0001", OccurredAt: base, Status: store.StatusGranted, AttemptCount: 1},
		{UserID: bob, CardID: "CARD-0002", OccurredAt: base.Add(time.Minute), Status: store.StatusDenied, AttemptCount: 1},
		{UserID: alice, CardID: "CARD-0001", OccurredAt: base.Add(2 * time.Minute), Status: store.StatusDenied, AttemptCount: 2},
	}
	for i, rec := range seeds {
		if _, err := as.Append(ctx, rec); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	// No identity filters: everything in range, insertion order.
	all, err := as.QueryRange(ctx, store.AttemptFilter{
		Start: base, End: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("QueryRange: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Error("expected insertion order by attempt_id")
		}
	}

	// User filter.
	byUser, err := as.QueryRange(ctx, store.AttemptFilter{
		UserID: &alice, Start: base, End: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("QueryRange user: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("expected 2 records for alice, got %d", len(byUser))
	}

	// Card filter.
	card := "CARD-0002"
	byCard, err := as.QueryRange(ctx, store.AttemptFilter{
		CardID: &card, Start: base, End: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("QueryRange card: %v", err)
	}
	if len(byCard) != 1 {
		t.Errorf("expected 1 record for CARD-0002, got %d", len(byCard))
	}

	// Both filters AND together.
	both, err := as.QueryRange(ctx, store.AttemptFilter{
		UserID: &alice, CardID: &card, Start: base, End: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("QueryRange both: %v", err)
	}
	if len(both) != 0 {
		t.Errorf("expected 0 records for alice with bob's card, got %d", len(both))
	}

	// Inclusive end bound.
	narrowed, err := as.QueryRange(ctx, store.AttemptFilter{
		Start: base, End: base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("QueryRange narrowed: %v", err)
	}
	if len(narrowed) != 2 {
		t.Errorf("expected 2 records with inclusive end, got %d", len(narrowed))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// PruneOlderThan
// ═══════════════════════════════════════════════════════════════════════════

func TestAttemptStore_PruneOlderThan_DeletesAndCounts(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	userID := seedUser(t, conn, "Alice Kim", "CARD-0001")
	as := sqlitestore.NewAttemptStore(conn, w)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{
		now.AddDate(0, 0, -40),
		now.AddDate(0, 0, -35),
		now.AddDate(0, 0, -1),
	} {
		_, err := as.Append(ctx, store.AttemptRecord{
			UserID:       userID,
			CardID:       "CARD-0001",
			OccurredAt:   at,
			Status:       store.StatusDenied,
			AttemptCount: 1,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	deleted, err := as.PruneOlderThan(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_attempts`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 surviving row, got %d", count)
	}
}
