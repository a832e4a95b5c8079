package attendance

import (
	"context"
	"sync"

	"rollcall/internal/attendance/models"
	"rollcall/internal/attendance/store"
	"rollcall/pkg/platform/sentinel"
)

type userDate struct {
	userID string
	date   string
}

// InMemoryStore enforces both uniqueness invariants under one mutex that is
// held only for the map check-and-insert.
type InMemoryStore struct {
	mu         sync.Mutex
	byUserDate map[userDate]struct{}
	byOrigin   map[string]models.Record
	records    []models.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byUserDate: make(map[userDate]struct{}),
		byOrigin:   make(map[string]models.Record),
	}
}

// Insert adds rec or reports the violated constraint. The per-day check wins
// when both would fire, matching the SQL engines' conflict arbiter.
func (s *InMemoryStore) Insert(ctx context.Context, rec models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userDate{userID: rec.UserID, date: rec.Date}
	if _, ok := s.byUserDate[key]; ok {
		return &store.ConstraintError{Constraint: store.ConstraintUserDate}
	}
	if _, ok := s.byOrigin[rec.OriginAddress]; ok {
		return &store.ConstraintError{Constraint: store.ConstraintOrigin}
	}
	s.byUserDate[key] = struct{}{}
	s.byOrigin[rec.OriginAddress] = rec
	s.records = append(s.records, rec)
	return nil
}

// FindByOrigin returns the record holding origin.
func (s *InMemoryStore) FindByOrigin(ctx context.Context, origin string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byOrigin[origin]
	if !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	return rec, nil
}

// List returns all records in insertion order.
func (s *InMemoryStore) List(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Record(nil), s.records...), nil
}
