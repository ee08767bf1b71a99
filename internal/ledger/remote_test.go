package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RemoteSuite struct {
	suite.Suite
	srv    *httptest.Server
	remote *Remote
}

func TestRemoteSuite(t *testing.T) {
	suite.Run(t, new(RemoteSuite))
}

func (s *RemoteSuite) SetupTest() {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transfers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer relayer-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch req.To {
		case "0xdead000000000000000000000000000000000000":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"insufficient funds"}`))
		case "0xslow000000000000000000000000000000000000":
			<-r.Context().Done()
		default:
			_, _ = w.Write([]byte(`{"tx_hash":"0xabc` + req.Amount.String() + `"}`))
		}
	})
	mux.HandleFunc("GET /balance", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"balance":"9990.5"}`))
	})
	s.srv = httptest.NewServer(mux)

	var err error
	s.remote, err = NewRemote(s.srv.URL+"/", WithRemoteAPIKey("relayer-key"))
	s.Require().NoError(err)
}

func (s *RemoteSuite) TearDownTest() {
	s.srv.Close()
}

func (s *RemoteSuite) TestTransfer() {
	ref, err := s.remote.Transfer(context.Background(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", decimal.RequireFromString("10.25"))
	s.Require().NoError(err)
	s.Equal("0xabc10.25", ref)
}

func (s *RemoteSuite) TestTransferRejected() {
	_, err := s.remote.Transfer(context.Background(), "0xdead000000000000000000000000000000000000", decimal.NewFromInt(10))
	var relayerErr *RelayerError
	s.Require().True(errors.As(err, &relayerErr))
	s.Equal(http.StatusUnprocessableEntity, relayerErr.Status)
	s.Equal("insufficient funds", relayerErr.Message)
}

func (s *RemoteSuite) TestTransferHonoursDeadline() {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.remote.Transfer(ctx, "0xslow000000000000000000000000000000000000", decimal.NewFromInt(10))
	s.Require().Error(err)
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *RemoteSuite) TestBalance() {
	balance, err := s.remote.Balance(context.Background())
	s.Require().NoError(err)
	s.Equal("9990.5", balance.String())
}

func (s *RemoteSuite) TestMissingAPIKey() {
	r, err := NewRemote(s.srv.URL)
	s.Require().NoError(err)
	_, err = r.Transfer(context.Background(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", decimal.NewFromInt(1))
	var relayerErr *RelayerError
	s.Require().ErrorAs(err, &relayerErr)
	s.Equal(http.StatusUnauthorized, relayerErr.Status)
}

func TestNewRemote(t *testing.T) {
	_, err := NewRemote("")
	require.Error(t, err)
	_, err = NewRemote("relayer:8080")
	assert.Error(t, err)
}
