package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is the terminal result of an attempt that reached the ledger.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

func (o Outcome) IsValid() bool {
	return o == OutcomeSucceeded || o == OutcomeFailed
}

// Record is one immutable row of the disbursement log. Once appended it is
// never updated or deleted.
type Record struct {
	ID             uuid.UUID
	Identity       string
	Destination    string
	Justification  string
	Amount         decimal.Decimal
	TransactionRef string
	ProofURL       string
	Timestamp      time.Time
	Outcome        Outcome
}

// NewRecord builds a record for an attempt that reached the ledger.
func NewRecord(req Request, amount decimal.Decimal, txRef string, outcome Outcome, at time.Time) Record {
	return Record{
		ID:             uuid.New(),
		Identity:       req.Identity,
		Destination:    req.Destination,
		Justification:  req.Justification,
		Amount:         amount,
		TransactionRef: txRef,
		ProofURL:       req.ProofURL,
		Timestamp:      at,
		Outcome:        outcome,
	}
}

func (r Record) Succeeded() bool { return r.Outcome == OutcomeSucceeded }

// Request is a caller's ask for a grant.
type Request struct {
	Identity      string
	Destination   string
	Justification string
	ProofURL      string
}

// Normalize trims surrounding whitespace. Identity matching stays case-sensitive.
func (r *Request) Normalize() {
	r.Identity = strings.TrimSpace(r.Identity)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Justification = strings.TrimSpace(r.Justification)
	r.ProofURL = strings.TrimSpace(r.ProofURL)
}

// Status is the terminal state reported to the caller.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusRejected  Status = "rejected"
	StatusErrored   Status = "errored"
)

// Result is returned for every request alongside any error.
type Result struct {
	Status         Status
	TransactionRef string
	Amount         decimal.Decimal
	// RetryAt is set for cooldown rejections.
	RetryAt time.Time
}

// Stats aggregates the whole log.
type Stats struct {
	Count                int
	SucceededCount       int
	FailedCount          int
	TotalAmountSucceeded decimal.Decimal
	UniqueIdentities     int
}

// SuccessRate is the succeeded share in percent, one decimal place.
func (s Stats) SuccessRate() decimal.Decimal {
	if s.Count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.SucceededCount)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(s.Count))).
		Round(1)
}

// VerificationMethod names the check that admitted an identity.
type VerificationMethod string

const (
	VerifiedByOracle VerificationMethod = "oracle"
	VerifiedByProof  VerificationMethod = "proof"
	VerifiedByMock   VerificationMethod = "mock"
	NotVerified      VerificationMethod = "none"
)

// Verification is the transient outcome of an identity check. It is logged
// and counted, never persisted.
type Verification struct {
	Verified bool
	Method   VerificationMethod
}

