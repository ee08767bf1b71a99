package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "faucetgate/pkg/platform/audit"
)

// Schema creates the audit_events table. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id              UUID PRIMARY KEY,
	category        TEXT NOT NULL,
	timestamp       TIMESTAMPTZ NOT NULL,
	subject         TEXT NOT NULL,
	action          TEXT NOT NULL,
	decision        TEXT NOT NULL DEFAULT '',
	reason          TEXT NOT NULL DEFAULT '',
	destination     TEXT NOT NULL DEFAULT '',
	transaction_ref TEXT NOT NULL DEFAULT '',
	request_id      TEXT NOT NULL DEFAULT '',
	client_ip       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_subject ON audit_events (subject, timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events (timestamp DESC);
`

// Store implements audit.Store on Postgres.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit_events: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	// category is derived from the action so callers cannot mislabel events
	category := audit.AuditEvent(event.Action).Category()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, timestamp, subject, action, decision, reason,
			destination, transaction_ref, request_id, client_ip
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.New(), string(category), event.Timestamp, event.Subject, event.Action,
		event.Decision, event.Reason, event.Destination, event.TransactionRef,
		event.RequestID, event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.query(ctx, `
		SELECT category, timestamp, subject, action, decision, reason,
		       destination, transaction_ref, request_id, client_ip
		FROM audit_events WHERE subject = $1 ORDER BY timestamp ASC`, subject)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		return []audit.Event{}, nil
	}
	return s.query(ctx, `
		SELECT category, timestamp, subject, action, decision, reason,
		       destination, transaction_ref, request_id, client_ip
		FROM audit_events ORDER BY timestamp DESC LIMIT $1`, limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Timestamp, &e.Subject, &e.Action, &e.Decision,
			&e.Reason, &e.Destination, &e.TransactionRef, &e.RequestID, &e.ClientIP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
