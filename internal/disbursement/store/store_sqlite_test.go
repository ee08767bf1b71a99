package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/ports"
	"faucetgate/internal/disbursement/store"
)

type SQLiteStoreSuite struct {
	LogStoreSuite
}

func TestSQLiteStoreSuite(t *testing.T) {
	s := new(SQLiteStoreSuite)
	s.newStore = func() ports.Store {
		st, err := store.OpenSQLite(context.Background(), filepath.Join(s.T().TempDir(), "faucet.db"))
		require.NoError(s.T(), err)
		return st
	}
	suite.Run(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "faucet.db")
	at := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)

	st, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	rec := models.NewRecord(models.Request{Identity: "agent-a", Destination: "0xabc", Justification: "j"},
		decimal.RequireFromString("10.000000000000000001"), "0xtx", models.OutcomeSucceeded, at)
	require.NoError(t, st.Append(ctx, rec))
	require.NoError(t, st.Close())

	st, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	last, found, err := st.LastSuccessfulRequestTime(ctx, "agent-a")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, last.Equal(at), "nanosecond timestamps round-trip")

	recs, err := st.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, rec.ID, recs[0].ID)
	require.True(t, recs[0].Amount.Equal(rec.Amount), "amount keeps full precision")

	// the exact same instant is not "since" itself
	ok, err := st.HasSuccessfulRequestSince(ctx, "agent-a", at)
	require.NoError(t, err)
	require.False(t, ok)
}
