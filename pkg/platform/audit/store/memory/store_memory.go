package memory

import (
	"context"
	"slices"
	"sync"

	audit "rollcall/pkg/platform/audit"
)

// InMemoryStore keeps events sorted oldest first by (Timestamp, Seq).
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
	seq    int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func compare(a, b audit.Event) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	}
	return 0
}

func (s *InMemoryStore) Append(ctx context.Context, e audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e.Seq = s.seq
	idx, _ := slices.BinarySearchFunc(s.events, e, compare)
	s.events = slices.Insert(s.events, idx, e)
	return nil
}

func (s *InMemoryStore) Page(ctx context.Context, after *audit.Cursor, limit int) ([]audit.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := len(s.events)
	if after != nil {
		end, _ = slices.BinarySearchFunc(s.events, audit.Event{Timestamp: after.Timestamp, Seq: after.Seq}, compare)
	}

	out := make([]audit.Event, 0, min(limit, end))
	for i := end - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Len returns the number of stored events.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

var _ audit.Store = (*InMemoryStore)(nil)
