package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/smartlock/gateway/internal/db"
	"github.com/smartlock/gateway/internal/smartlock/store"
)

type AttemptStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
}

func NewAttemptStore(conn *sql.DB, writer *dbpkg.Worker) *AttemptStore {
	return &AttemptStore{conn: conn, writer: writer}
}

func (s *AttemptStore) Append(ctx context.Context, rec store.AttemptRecord) (int64, error) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO access_attempts(
  user_id, card_id, occurred_at_ms, location,
  status, attempt_count, is_overtime, is_excessive
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.UserID, rec.CardID, rec.OccurredAt.UTC().UnixMilli(), rec.Location,
			rec.Status, rec.AttemptCount, boolToInt(rec.Overtime), boolToInt(rec.Excessive),
		)
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *AttemptStore) CountSince(ctx context.Context, userID int64, after time.Time) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `
SELECT COUNT(*) FROM access_attempts
WHERE user_id = ? AND occurred_at_ms > ?;
`, userID, after.UTC().UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountSince: %w", err)
	}
	return n, nil
}

func (s *AttemptStore) QueryRange(ctx context.Context, f store.AttemptFilter) ([]store.AttemptRecord, error) {
	conds := []string{"occurred_at_ms >= ?", "occurred_at_ms <= ?"}
	args := []any{f.Start.UTC().UnixMilli(), f.End.UTC().UnixMilli()}

	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.CardID != nil {
		conds = append(conds, "card_id = ?")
		args = append(args, *f.CardID)
	}

	rows, err := s.conn.QueryContext(ctx, `
SELECT attempt_id, user_id, card_id, occurred_at_ms, location,
       status, attempt_count, is_overtime, is_excessive
FROM access_attempts
WHERE `+strings.Join(conds, " AND ")+`
ORDER BY attempt_id;
`, args...)
	if err != nil {
		return nil, fmt.Errorf("QueryRange: %w", err)
	}
	defer rows.Close()

	var out []store.AttemptRecord
	for rows.Next() {
		var (
			rec        store.AttemptRecord
			occurredMs int64
			overtime   int
			excessive  int
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.CardID, &occurredMs, &rec.Location,
			&rec.Status, &rec.AttemptCount, &overtime, &excessive,
		); err != nil {
			return nil, fmt.Errorf("QueryRange scan: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(occurredMs).UTC()
		rec.Overtime = overtime != 0
		rec.Excessive = excessive != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *AttemptStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM access_attempts WHERE occurred_at_ms < ?;
`, cutoff.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
