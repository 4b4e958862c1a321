package memory

import (
	"context"
	"sync"

	"github.com/smartlock/gateway/internal/smartlock/store"
)

// UserStore is an in-memory card directory for tests and dev.
type UserStore struct {
	mu     sync.RWMutex
	byCard map[string]store.User
}

func NewUserStore(users []store.User) *UserStore {
	byCard := make(map[string]store.User, len(users))
	for _, u := range users {
		byCard[u.CardID] = u
	}
	return &UserStore{byCard: byCard}
}

func (s *UserStore) ResolveByCard(_ context.Context, cardID string) (store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byCard[cardID]
	if !ok {
		return store.User{}, store.ErrUnknownCard
	}
	return u, nil
}

// Add registers a user, overwriting any existing card mapping.
func (s *UserStore) Add(u store.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCard[u.CardID] = u
}
