// Package verifier decides whether a caller identity belongs to a registered
// participant. The registry oracle is consulted first; a proof page on the
// trusted domain is the fallback.
package verifier

import (
	"context"
	"log/slog"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/ports"
	"faucetgate/internal/identity/oracle"
	"faucetgate/pkg/platform/audit"
	"faucetgate/pkg/platform/circuit"
)

// Oracle looks an identity up in the participant registry.
type Oracle interface {
	Lookup(ctx context.Context, identity string) (*oracle.Profile, error)
}

// ProofChecker fetches a proof page and looks for the identity in it.
type ProofChecker interface {
	Check(ctx context.Context, proofURL, identity string) (bool, error)
}

// Verifier is safe for concurrent use.
type Verifier struct {
	oracle         Oracle
	proof          ProofChecker
	breaker        *circuit.Breaker
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
}

type Option func(*Verifier)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// WithProofChecker enables the proof-page fallback.
func WithProofChecker(p ProofChecker) Option {
	return func(v *Verifier) { v.proof = p }
}

// WithBreaker overrides the default oracle circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(v *Verifier) { v.breaker = b }
}

func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(v *Verifier) { v.auditPublisher = p }
}

// New builds a verifier over the registry oracle. oracle may be nil when only
// proof pages are accepted.
func New(o Oracle, opts ...Option) *Verifier {
	v := &Verifier{
		oracle:  o,
		breaker: circuit.New("identity-oracle"),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify never fails: unreachable sources count as "not verified".
func (v *Verifier) Verify(ctx context.Context, identity, proofURL string) models.Verification {
	if v.lookup(ctx, identity) {
		return models.Verification{Verified: true, Method: models.VerifiedByOracle}
	}
	if proofURL == "" || v.proof == nil {
		return models.Verification{Method: models.NotVerified}
	}

	ok, err := v.proof.Check(ctx, proofURL, identity)
	if err != nil {
		v.logger.InfoContext(ctx, "proof check failed", "identity", identity, "error", err)
		return models.Verification{Method: models.NotVerified}
	}
	if !ok {
		return models.Verification{Method: models.NotVerified}
	}
	return models.Verification{Verified: true, Method: models.VerifiedByProof}
}

func (v *Verifier) lookup(ctx context.Context, identity string) bool {
	if v.oracle == nil {
		return false
	}
	if !v.breaker.Allow() {
		v.logger.DebugContext(ctx, "identity oracle circuit open, skipping lookup", "identity", identity)
		return false
	}

	_, err := v.oracle.Lookup(ctx, identity)
	switch {
	case err == nil:
		v.recordSuccess(ctx)
		return true
	case oracle.IsNotFound(err):
		// a definitive answer means the oracle is healthy
		v.recordSuccess(ctx)
		return false
	default:
		v.logger.WarnContext(ctx, "identity oracle lookup failed",
			"identity", identity,
			"category", string(oracle.GetCategory(err)),
			"error", err,
		)
		v.recordFailure(ctx)
		return false
	}
}

func (v *Verifier) recordSuccess(ctx context.Context) {
	if _, change := v.breaker.RecordSuccess(); change.Closed {
		v.logger.InfoContext(ctx, "identity oracle circuit closed")
	}
}

func (v *Verifier) recordFailure(ctx context.Context) {
	if _, change := v.breaker.RecordFailure(); change.Opened {
		ports.LogAudit(ctx, v.logger, v.auditPublisher, audit.EventOracleCircuitOpen, audit.Event{
			Subject:  v.breaker.Name(),
			Decision: "open",
			Reason:   "consecutive oracle failures",
		})
	}
}

// Mock admits every identity.
type Mock struct{}

func (Mock) Verify(context.Context, string, string) models.Verification {
	return models.Verification{Verified: true, Method: models.VerifiedByMock}
}
