package pairing

import (
	"context"
	"fmt"
	"time"

	"rollcall/internal/attendance/models"
	"rollcall/internal/platform/database"
)

// SQLStore keeps pairings in the flagged_pairings table.
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Insert(ctx context.Context, p models.FlaggedPairing) error {
	query := s.db.Dialect.Rebind(`
		INSERT INTO flagged_pairings (
			t_name, t_user_id, t_email, t_date, t_time, t_token,
			s_name, s_user_id, s_email, origin_address, flagged_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Q(ctx).ExecContext(ctx, query,
		p.TName, p.TUserID, p.TEmail, p.TDate, p.TTime, p.TToken,
		p.SName, p.SUserID, p.SEmail, p.OriginAddress, p.FlaggedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert flagged pairing: %w", err)
	}
	return nil
}

// List returns pairings newest first.
func (s *SQLStore) List(ctx context.Context) ([]models.FlaggedPairing, error) {
	rows, err := s.db.Q(ctx).QueryContext(ctx, `
		SELECT id, t_name, t_user_id, t_email, t_date, t_time, t_token,
		       s_name, s_user_id, s_email, origin_address, flagged_at
		FROM flagged_pairings
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list flagged pairings: %w", err)
	}
	defer rows.Close()

	var out []models.FlaggedPairing
	for rows.Next() {
		var (
			p         models.FlaggedPairing
			flaggedAt int64
		)
		if err := rows.Scan(
			&p.ID, &p.TName, &p.TUserID, &p.TEmail, &p.TDate, &p.TTime, &p.TToken,
			&p.SName, &p.SUserID, &p.SEmail, &p.OriginAddress, &flaggedAt,
		); err != nil {
			return nil, fmt.Errorf("scan flagged pairing: %w", err)
		}
		p.FlaggedAt = time.UnixMilli(flaggedAt).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flagged pairings: %w", err)
	}
	return out, nil
}
