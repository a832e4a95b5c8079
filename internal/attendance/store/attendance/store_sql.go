package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rollcall/internal/attendance/models"
	"rollcall/internal/attendance/store"
	"rollcall/internal/platform/database"
	"rollcall/pkg/platform/sentinel"
	"rollcall/pkg/requestcontext"
)

// SQLStore keeps records in the attendance table. Both invariants are
// enforced by the single INSERT below; there is no read-before-write.
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Insert writes rec. A (user_id, attendance_date) conflict is absorbed by the
// ON CONFLICT arbiter and surfaces as zero rows affected; an origin conflict
// fails the statement with a unique violation.
func (s *SQLStore) Insert(ctx context.Context, rec models.Record) error {
	query := s.db.Dialect.Rebind(`
		INSERT INTO attendance (name, user_id, email, attendance_date, attendance_time, token, origin_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, attendance_date) DO NOTHING
	`)
	res, err := s.db.Q(ctx).ExecContext(ctx, query,
		rec.Name,
		rec.UserID,
		rec.Email,
		rec.Date,
		rec.Time,
		rec.Token,
		rec.OriginAddress,
		requestcontext.Now(ctx).UnixMilli(),
	)
	if err != nil {
		if name, ok := database.UniqueViolation(err); ok {
			if c, known := classify(name); known {
				return &store.ConstraintError{Constraint: c, Err: err}
			}
		}
		return fmt.Errorf("insert attendance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert attendance rows affected: %w", err)
	}
	if n == 0 {
		return &store.ConstraintError{Constraint: store.ConstraintUserDate}
	}
	return nil
}

// classify maps a driver-reported constraint name onto the attendance
// invariants. SQLite reports no name; with the per-day conflict absorbed by
// the arbiter, the origin index is the only unique constraint left to fire.
func classify(name string) (store.Constraint, bool) {
	switch store.Constraint(name) {
	case "", store.ConstraintOrigin:
		return store.ConstraintOrigin, true
	case store.ConstraintUserDate:
		return store.ConstraintUserDate, true
	default:
		return "", false
	}
}

// FindByOrigin returns the record holding origin.
func (s *SQLStore) FindByOrigin(ctx context.Context, origin string) (models.Record, error) {
	query := s.db.Dialect.Rebind(`
		SELECT name, user_id, email, attendance_date, attendance_time, token, origin_address
		FROM attendance
		WHERE origin_address = ?
	`)
	var rec models.Record
	err := s.db.Q(ctx).QueryRowContext(ctx, query, origin).Scan(
		&rec.Name, &rec.UserID, &rec.Email, &rec.Date, &rec.Time, &rec.Token, &rec.OriginAddress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("find attendance by origin: %w", err)
	}
	return rec, nil
}

// List returns all records in insertion order.
func (s *SQLStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.Q(ctx).QueryContext(ctx, `
		SELECT name, user_id, email, attendance_date, attendance_time, token, origin_address
		FROM attendance
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.Name, &rec.UserID, &rec.Email, &rec.Date, &rec.Time, &rec.Token, &rec.OriginAddress); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return out, nil
}
