package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rollcall/internal/directory/models"
	"rollcall/internal/platform/database"
	"rollcall/pkg/platform/sentinel"
)

// SQLStore reads the identities table.
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Find(ctx context.Context, userID string) (models.Identity, error) {
	query := s.db.Dialect.Rebind(`SELECT name, user_id FROM identities WHERE user_id = ?`)
	var identity models.Identity
	err := s.db.Q(ctx).QueryRowContext(ctx, query, userID).Scan(&identity.Name, &identity.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("find identity: %w", err)
	}
	return identity, nil
}

// Save inserts identity or replaces the name of an existing one.
func (s *SQLStore) Save(ctx context.Context, identity models.Identity) error {
	query := s.db.Dialect.Rebind(`
		INSERT INTO identities (user_id, name) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET name = excluded.name
	`)
	if _, err := s.db.Q(ctx).ExecContext(ctx, query, identity.UserID, identity.Name); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return n, nil
}
