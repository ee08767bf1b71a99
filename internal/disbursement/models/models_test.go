package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	dErrors "faucetgate/pkg/domain-errors"
)

func TestStats_SuccessRate(t *testing.T) {
	assert.True(t, Stats{}.SuccessRate().IsZero())
	assert.Equal(t, "66.7", Stats{Count: 3, SucceededCount: 2}.SuccessRate().String())
	assert.Equal(t, "100", Stats{Count: 4, SucceededCount: 4}.SuccessRate().String())
}

func TestRequest_Normalize(t *testing.T) {
	req := Request{Identity: "  Agent-X ", Destination: " 0xabc ", Justification: "\ttesting\n"}
	req.Normalize()
	assert.Equal(t, "Agent-X", req.Identity, "case is preserved")
	assert.Equal(t, "0xabc", req.Destination)
	assert.Equal(t, "testing", req.Justification)
}

func TestNewRecord(t *testing.T) {
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rec := NewRecord(Request{Identity: "a", Destination: "d", Justification: "j", ProofURL: "p"},
		decimal.NewFromInt(10), "0xtx", OutcomeSucceeded, at)

	assert.NotEqual(t, [16]byte{}, [16]byte(rec.ID))
	assert.True(t, rec.Succeeded())
	assert.Equal(t, at, rec.Timestamp)
	assert.Equal(t, "p", rec.ProofURL)
}

func TestCooldownActiveError(t *testing.T) {
	retry := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	var err error = &CooldownActiveError{Identity: "a", RetryAt: retry}

	assert.True(t, dErrors.HasCode(err, dErrors.CodeCooldownActive))
	assert.Contains(t, dErrors.MessageOf(errors.Unwrap(err)), "2025-02-02T00:00:00Z")
}
