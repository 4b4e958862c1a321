package service

import (
	"context"
	"strings"

	"github.com/smartlock/gateway/internal/smartlock/store"
)

// Directory resolves badge cards to users.  It owns input hygiene so
// stores only ever see trimmed, non-empty card identifiers.
type Directory struct {
	store store.UserStore
}

func NewDirectory(st store.UserStore) *Directory {
	return &Directory{store: st}
}

func (d *Directory) ResolveByCard(ctx context.Context, cardID string) (store.User, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return store.User{}, ErrInvalidCardID
	}
	return d.store.ResolveByCard(ctx, cardID)
}
