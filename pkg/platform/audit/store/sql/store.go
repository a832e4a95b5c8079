// Package sqlstore persists audit events in the audit_events table of either
// SQL dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rollcall/internal/platform/database"
	audit "rollcall/pkg/platform/audit"
)

// Store implements audit.Store on a migrated database handle.
type Store struct {
	db *database.DB
}

// New creates an audit store.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Append inserts the event; the table assigns seq.
func (s *Store) Append(ctx context.Context, e audit.Event) error {
	detail := string(e.Detail)
	if detail == "" {
		detail = "null"
	}
	query := s.db.Dialect.Rebind(`
		INSERT INTO audit_events (id, event_name, detail, origin_address, severity, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Q(ctx).ExecContext(ctx, query,
		e.ID,
		string(e.Name),
		detail,
		e.OriginAddress,
		string(e.Severity),
		e.Timestamp.UTC().UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Page returns one keyset page, newest first.
func (s *Store) Page(ctx context.Context, after *audit.Cursor, limit int) ([]audit.Event, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after == nil {
		rows, err = s.db.Q(ctx).QueryContext(ctx, s.db.Dialect.Rebind(`
			SELECT seq, id, event_name, detail, origin_address, severity, occurred_at
			FROM audit_events
			ORDER BY occurred_at DESC, seq DESC
			LIMIT ?
		`), limit)
	} else {
		ts := after.Timestamp.UTC().UnixMicro()
		rows, err = s.db.Q(ctx).QueryContext(ctx, s.db.Dialect.Rebind(`
			SELECT seq, id, event_name, detail, origin_address, severity, occurred_at
			FROM audit_events
			WHERE occurred_at < ? OR (occurred_at = ? AND seq < ?)
			ORDER BY occurred_at DESC, seq DESC
			LIMIT ?
		`), ts, ts, after.Seq, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]audit.Event, 0, limit)
	for rows.Next() {
		var (
			e          audit.Event
			name       string
			detail     string
			severity   string
			occurredAt int64
		)
		if err := rows.Scan(&e.Seq, &e.ID, &name, &detail, &e.OriginAddress, &severity, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Name = audit.EventName(name)
		e.Detail = []byte(detail)
		e.Severity = audit.Severity(severity)
		e.Timestamp = time.UnixMicro(occurredAt).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

var _ audit.Store = (*Store)(nil)
