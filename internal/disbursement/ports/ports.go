// Package ports declares the collaborators the disbursement coordinator depends on.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Store,Ledger,Verifier,AuditPublisher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"faucetgate/internal/disbursement/models"
	audit "faucetgate/pkg/platform/audit"
)

// Store is the append-only disbursement log.
//
// Implementations must make an appended record visible to every read issued
// after Append returns, and must fail with a sentinel.ErrUnavailable-wrapped
// error when the medium cannot be reached.
type Store interface {
	Append(ctx context.Context, record models.Record) error
	// HasSuccessfulRequestSince matches identity exactly and threshold strictly (timestamp > threshold).
	HasSuccessfulRequestSince(ctx context.Context, identity string, threshold time.Time) (bool, error)
	LastSuccessfulRequestTime(ctx context.Context, identity string) (time.Time, bool, error)
	AggregateStats(ctx context.Context) (models.Stats, error)
	// Recent returns succeeded records, newest first.
	Recent(ctx context.Context, limit int) ([]models.Record, error)
	// SucceededJustifications returns the justification of every succeeded record.
	SucceededJustifications(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Ledger performs transfers. Signing, fees and confirmation are its concern.
type Ledger interface {
	Transfer(ctx context.Context, destination string, amount decimal.Decimal) (string, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
	IsValidAddress(address string) bool
}

// Verifier decides whether an identity is a registered participant.
// It never returns an error; unreachable sources count as "not verified".
type Verifier interface {
	Verify(ctx context.Context, identity, proofURL string) models.Verification
}

// AuditPublisher receives admission and transfer events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
