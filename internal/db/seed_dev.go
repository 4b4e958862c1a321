package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a couple of badge holders so a fresh dev database can
// serve verify requests immediately.  Idempotent on card_id.
func SeedDev(ctx context.Context, conn *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	seed := []struct {
		name string
		card string
	}{
		{"Alice Kim", "CARD-0001"},
		{"Bob Park", "CARD-0002"},
	}

	for _, u := range seed {
		if _, err := conn.ExecContext(ctx, `
INSERT INTO users(name, card_id, created_at_ms)
VALUES (?, ?, ?)
ON CONFLICT(card_id) DO UPDATE SET name = excluded.name;
`, u.name, u.card, now); err != nil {
			return fmt.Errorf("seed user %s: %w", u.card, err)
		}
	}

	return nil
}
