package audit

import (
	"context"
	"iter"
)

// Store is the append-only persistence behind the audit log.
type Store interface {
	// Append persists e and assigns its Seq.
	Append(ctx context.Context, e Event) error
	// Page returns up to limit events older than after, newest first.
	// A nil cursor starts from the newest event.
	Page(ctx context.Context, after *Cursor, limit int) ([]Event, error)
}

// Sink receives events after they are persisted. Sink failures never affect
// the persisted log.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// Events lazily enumerates the store newest first, one page at a time.
// Each range over the returned sequence restarts from the newest event.
// Iteration stops after yielding the first error.
func Events(ctx context.Context, store Store, pageSize int) iter.Seq2[Event, error] {
	if pageSize <= 0 {
		pageSize = 100
	}
	return func(yield func(Event, error) bool) {
		var cursor *Cursor
		for {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			page, err := store.Page(ctx, cursor, pageSize)
			if err != nil {
				yield(Event{}, err)
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			cursor = CursorOf(page[len(page)-1])
		}
	}
}
