package ledger

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestMock(t *testing.T) {
	m := NewMock(nil)
	ctx := context.Background()
	dest := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	t.Run("transfers yield unique hashes", func(t *testing.T) {
		first, err := m.Transfer(ctx, dest, decimal.NewFromInt(10))
		require.NoError(t, err)
		second, err := m.Transfer(ctx, dest, decimal.NewFromInt(10))
		require.NoError(t, err)

		assert.Regexp(t, txHashPattern, first)
		assert.NotEqual(t, first, second)
	})

	t.Run("fixed balance", func(t *testing.T) {
		balance, err := m.Balance(ctx)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := m.Transfer(cctx, dest, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("address validation", func(t *testing.T) {
		assert.True(t, m.IsValidAddress(dest))
		assert.False(t, m.IsValidAddress("not-an-address"))
	})
}
