// Package store implements the append-only disbursement log on memory,
// SQLite and Postgres.
package store

import (
	"errors"
	"fmt"

	"faucetgate/internal/disbursement/models"
	"faucetgate/pkg/platform/sentinel"
)

// ErrInvalidRecord marks records that would break log invariants.
var ErrInvalidRecord = errors.New("invalid disbursement record")

func validateRecord(r models.Record) error {
	switch {
	case r.Identity == "":
		return fmt.Errorf("%w: identity is empty", ErrInvalidRecord)
	case !r.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRecord)
	case !r.Outcome.IsValid():
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidRecord, r.Outcome)
	case r.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is unset", ErrInvalidRecord)
	}
	return nil
}

// unavailable tags a driver failure so services can tell an unreachable
// medium apart from a bad record.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
