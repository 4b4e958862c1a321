package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smartlock/gateway/internal/smartlock/store"
)

type UserStore struct {
	conn *sql.DB
}

func NewUserStore(conn *sql.DB) *UserStore {
	return &UserStore{conn: conn}
}

func (s *UserStore) ResolveByCard(ctx context.Context, cardID string) (store.User, error) {
	var u store.User
	err := s.conn.QueryRowContext(ctx, `
SELECT user_id, name, card_id FROM users WHERE card_id = ?;
`, cardID).Scan(&u.ID, &u.Name, &u.CardID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrUnknownCard
	}
	if err != nil {
		return store.User{}, fmt.Errorf("ResolveByCard: %w", err)
	}
	return u, nil
}
