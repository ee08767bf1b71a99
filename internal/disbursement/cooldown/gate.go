// Package cooldown decides whether an identity may receive another grant.
package cooldown

import (
	"context"
	"errors"
	"time"

	"faucetgate/internal/disbursement/ports"
	"faucetgate/pkg/requestcontext"
)

// Reader is the slice of ports.Store the gate needs.
type Reader interface {
	HasSuccessfulRequestSince(ctx context.Context, identity string, threshold time.Time) (bool, error)
	LastSuccessfulRequestTime(ctx context.Context, identity string) (time.Time, bool, error)
}

var _ Reader = (ports.Store)(nil)

// Gate answers eligibility straight from the log on every call; results are
// never cached, so a grant appended elsewhere is seen immediately.
type Gate struct {
	store Reader
}

func New(store Reader) (*Gate, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	return &Gate{store: store}, nil
}

// IsEligible reports whether identity has no successful grant in
// (now - window, now]. A grant exactly window ago no longer blocks.
func (g *Gate) IsEligible(ctx context.Context, identity string, window time.Duration) (bool, error) {
	threshold := requestcontext.Now(ctx).Add(-window)
	blocked, err := g.store.HasSuccessfulRequestSince(ctx, identity, threshold)
	if err != nil {
		return false, err
	}
	return !blocked, nil
}

// RetryAt returns when identity next becomes eligible, based on its latest
// successful grant. ok is false when the identity has never been paid.
func (g *Gate) RetryAt(ctx context.Context, identity string, window time.Duration) (last, retryAt time.Time, ok bool, err error) {
	last, ok, err = g.store.LastSuccessfulRequestTime(ctx, identity)
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	return last, last.Add(window), true, nil
}
