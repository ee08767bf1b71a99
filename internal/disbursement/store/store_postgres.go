package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"faucetgate/internal/disbursement/models"
)

// PostgresSchema creates the disbursements table. Safe to run repeatedly.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS disbursements (
	id              UUID PRIMARY KEY,
	identity        TEXT NOT NULL,
	destination     TEXT NOT NULL,
	justification   TEXT NOT NULL,
	amount          NUMERIC(38, 18) NOT NULL CHECK (amount > 0),
	transaction_ref TEXT NOT NULL DEFAULT '',
	proof_url       TEXT NOT NULL DEFAULT '',
	timestamp       TIMESTAMPTZ NOT NULL,
	outcome         TEXT NOT NULL CHECK (outcome IN ('succeeded', 'failed'))
);
CREATE INDEX IF NOT EXISTS idx_disbursements_identity_ts ON disbursements (identity, timestamp);
CREATE INDEX IF NOT EXISTS idx_disbursements_outcome_ts ON disbursements (outcome, timestamp DESC);
`

// PostgresStore keeps the log in a single Postgres database. Timestamps are
// stored with microsecond precision.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects through the pgx stdlib driver and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := NewPostgres(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing handle. The caller owns migrations.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// DB exposes the handle so other Postgres-backed stores can share the pool.
func (s *PostgresStore) DB() *sql.DB { return s.db }

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, record models.Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disbursements (
			id, identity, destination, justification, amount,
			transaction_ref, proof_url, timestamp, outcome
		) VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8, $9)`,
		record.ID, record.Identity, record.Destination, record.Justification,
		record.Amount.String(), record.TransactionRef, record.ProofURL,
		record.Timestamp, string(record.Outcome),
	)
	if err != nil {
		return unavailable("append disbursement", err)
	}
	return nil
}

func (s *PostgresStore) HasSuccessfulRequestSince(ctx context.Context, identity string, threshold time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM disbursements
			WHERE identity = $1 AND outcome = 'succeeded' AND timestamp > $2
		)`, identity, threshold).Scan(&exists)
	if err != nil {
		return false, unavailable("query cooldown", err)
	}
	return exists, nil
}

func (s *PostgresStore) LastSuccessfulRequestTime(ctx context.Context, identity string) (time.Time, bool, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM disbursements
		WHERE identity = $1 AND outcome = 'succeeded'`, identity).Scan(&last)
	if err != nil {
		return time.Time{}, false, unavailable("query last success", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return last.Time.UTC(), true, nil
}

func (s *PostgresStore) AggregateStats(ctx context.Context) (models.Stats, error) {
	var (
		stats models.Stats
		total string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'succeeded'),
			COUNT(DISTINCT identity),
			COALESCE(SUM(amount) FILTER (WHERE outcome = 'succeeded'), 0)::TEXT
		FROM disbursements`).Scan(&stats.Count, &stats.SucceededCount, &stats.UniqueIdentities, &total)
	if err != nil {
		return models.Stats{}, unavailable("aggregate stats", err)
	}
	stats.FailedCount = stats.Count - stats.SucceededCount
	if stats.TotalAmountSucceeded, err = decimal.NewFromString(total); err != nil {
		return models.Stats{}, fmt.Errorf("parse total amount %q: %w", total, err)
	}
	return stats, nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	out := []models.Record{}
	if limit <= 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity, destination, justification, amount::TEXT,
		       transaction_ref, proof_url, timestamp, outcome
		FROM disbursements
		WHERE outcome = 'succeeded'
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, unavailable("query recent", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r          models.Record
			amount, oc string
		)
		if err := rows.Scan(&r.ID, &r.Identity, &r.Destination, &r.Justification, &amount,
			&r.TransactionRef, &r.ProofURL, &r.Timestamp, &oc); err != nil {
			return nil, unavailable("scan recent", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		r.Timestamp = r.Timestamp.UTC()
		r.Outcome = models.Outcome(oc)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query recent", err)
	}
	return out, nil
}

func (s *PostgresStore) SucceededJustifications(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, s.db, `SELECT justification FROM disbursements WHERE outcome = 'succeeded'`)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping postgres", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
