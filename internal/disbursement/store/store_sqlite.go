package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"faucetgate/internal/disbursement/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS disbursements (
	id              TEXT PRIMARY KEY,
	identity        TEXT NOT NULL,
	destination     TEXT NOT NULL,
	justification   TEXT NOT NULL,
	amount          TEXT NOT NULL,
	transaction_ref TEXT NOT NULL DEFAULT '',
	proof_url       TEXT NOT NULL DEFAULT '',
	timestamp_ns    INTEGER NOT NULL,
	outcome         TEXT NOT NULL CHECK (outcome IN ('succeeded', 'failed'))
);
CREATE INDEX IF NOT EXISTS idx_disbursements_identity_ts ON disbursements (identity, timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_disbursements_outcome_ts ON disbursements (outcome, timestamp_ns DESC);
`

// SQLiteStore is the default durable log: one local file in WAL mode.
// Timestamps are Unix nanoseconds so the cooldown boundary compares exactly.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the log at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, record models.Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disbursements (
			id, identity, destination, justification, amount,
			transaction_ref, proof_url, timestamp_ns, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(), record.Identity, record.Destination, record.Justification,
		record.Amount.String(), record.TransactionRef, record.ProofURL,
		record.Timestamp.UnixNano(), string(record.Outcome),
	)
	if err != nil {
		return unavailable("append disbursement", err)
	}
	return nil
}

func (s *SQLiteStore) HasSuccessfulRequestSince(ctx context.Context, identity string, threshold time.Time) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM disbursements
			WHERE identity = ? AND outcome = 'succeeded' AND timestamp_ns > ?
		)`, identity, threshold.UnixNano()).Scan(&exists)
	if err != nil {
		return false, unavailable("query cooldown", err)
	}
	return exists == 1, nil
}

func (s *SQLiteStore) LastSuccessfulRequestTime(ctx context.Context, identity string) (time.Time, bool, error) {
	var ns sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp_ns) FROM disbursements
		WHERE identity = ? AND outcome = 'succeeded'`, identity).Scan(&ns)
	if err != nil {
		return time.Time{}, false, unavailable("query last success", err)
	}
	if !ns.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(0, ns.Int64).UTC(), true, nil
}

func (s *SQLiteStore) AggregateStats(ctx context.Context) (models.Stats, error) {
	stats := models.Stats{TotalAmountSucceeded: decimal.Zero}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'succeeded' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT identity)
		FROM disbursements`).Scan(&stats.Count, &stats.SucceededCount, &stats.UniqueIdentities)
	if err != nil {
		return models.Stats{}, unavailable("aggregate stats", err)
	}
	stats.FailedCount = stats.Count - stats.SucceededCount

	// amounts are TEXT; summing in Go keeps decimal precision
	rows, err := s.db.QueryContext(ctx, `SELECT amount FROM disbursements WHERE outcome = 'succeeded'`)
	if err != nil {
		return models.Stats{}, unavailable("sum amounts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return models.Stats{}, unavailable("scan amount", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Stats{}, fmt.Errorf("corrupt amount %q: %w", raw, err)
		}
		stats.TotalAmountSucceeded = stats.TotalAmountSucceeded.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return models.Stats{}, unavailable("sum amounts", err)
	}
	return stats, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	out := []models.Record{}
	if limit <= 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity, destination, justification, amount,
		       transaction_ref, proof_url, timestamp_ns, outcome
		FROM disbursements
		WHERE outcome = 'succeeded'
		ORDER BY timestamp_ns DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, unavailable("query recent", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r              models.Record
			id, amount, oc string
			ns             int64
		)
		if err := rows.Scan(&id, &r.Identity, &r.Destination, &r.Justification, &amount,
			&r.TransactionRef, &r.ProofURL, &ns, &oc); err != nil {
			return nil, unavailable("scan recent", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt record id %q: %w", id, err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		r.Timestamp = time.Unix(0, ns).UTC()
		r.Outcome = models.Outcome(oc)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query recent", err)
	}
	return out, nil
}

func (s *SQLiteStore) SucceededJustifications(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, s.db, `SELECT justification FROM disbursements WHERE outcome = 'succeeded'`)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping sqlite", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func queryStrings(ctx context.Context, db *sql.DB, q string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query strings", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, unavailable("scan string", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query strings", err)
	}
	return out, nil
}
