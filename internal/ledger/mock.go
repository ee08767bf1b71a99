package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

var mockBalance = decimal.NewFromInt(10_000)

// Mock never moves funds. Each transfer gets a unique fake hash.
type Mock struct {
	logger *slog.Logger
	now    func() time.Time
	seq    atomic.Uint64
}

func NewMock(logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mock{logger: logger, now: time.Now}
}

func (m *Mock) Transfer(ctx context.Context, destination string, amount decimal.Decimal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	seed := fmt.Sprintf("%s%s%d/%d", destination, amount.String(), m.now().UnixNano(), m.seq.Add(1))
	sum := sha256.Sum256([]byte(seed))
	txRef := "0x" + hex.EncodeToString(sum[:])
	m.logger.InfoContext(ctx, "mock transfer", "destination", destination, "amount", amount.String(), "transaction_ref", txRef)
	return txRef, nil
}

func (m *Mock) Balance(context.Context) (decimal.Decimal, error) {
	return mockBalance, nil
}

func (m *Mock) IsValidAddress(address string) bool {
	return IsValidAddress(address)
}
