package pairing

import (
	"context"
	"sync"

	"rollcall/internal/attendance/models"
)

// InMemoryStore is an append-only list of flagged pairings.
type InMemoryStore struct {
	mu       sync.RWMutex
	pairings []models.FlaggedPairing
	nextID   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(ctx context.Context, p models.FlaggedPairing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.pairings = append(s.pairings, p)
	return nil
}

// List returns pairings newest first.
func (s *InMemoryStore) List(ctx context.Context) ([]models.FlaggedPairing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FlaggedPairing, 0, len(s.pairings))
	for i := len(s.pairings) - 1; i >= 0; i-- {
		out = append(out, s.pairings[i])
	}
	return out, nil
}
