// Package store persists directory identities.
package store

import (
	"context"
	"sync"

	"rollcall/internal/directory/models"
	"rollcall/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[string]models.Identity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{identities: make(map[string]models.Identity)}
}

func (s *InMemoryStore) Find(_ context.Context, userID string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[userID]
	if !ok {
		return models.Identity{}, sentinel.ErrNotFound
	}
	return identity, nil
}

// Save inserts identity or replaces the name of an existing one.
func (s *InMemoryStore) Save(_ context.Context, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.UserID] = identity
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}
