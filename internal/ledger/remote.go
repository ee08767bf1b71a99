package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const maxRelayerResponseBytes = 64 << 10

// Remote delegates transfers to a relayer service that owns the signing key,
// gas and broadcast. It blocks until the relayer reports confirmation.
//
//	POST {base}/transfers  {"to": "0x..", "amount": "10"} -> {"tx_hash": "0x.."}
//	GET  {base}/balance                                   -> {"balance": "9990"}
type Remote struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type RemoteOption func(*Remote)

func WithRemoteHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		if c != nil {
			r.httpClient = c
		}
	}
}

func WithRemoteAPIKey(key string) RemoteOption {
	return func(r *Remote) { r.apiKey = key }
}

// NewRemote returns a relayer client. Callers bound each call with ctx; the
// HTTP client carries no timeout of its own.
func NewRemote(baseURL string, opts ...RemoteOption) (*Remote, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("relayer URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid relayer URL: %w", err)
	}
	r := &Remote{baseURL: base, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RelayerError is a non-2xx relayer answer.
type RelayerError struct {
	Status  int
	Message string
}

func (e *RelayerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relayer returned status %d", e.Status)
	}
	return fmt.Sprintf("relayer returned status %d: %s", e.Status, e.Message)
}

type transferRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type transferResponse struct {
	TxHash string `json:"tx_hash"`
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r *Remote) Transfer(ctx context.Context, destination string, amount decimal.Decimal) (string, error) {
	var out transferResponse
	if err := r.do(ctx, http.MethodPost, "/transfers", transferRequest{To: destination, Amount: amount}, &out); err != nil {
		return "", err
	}
	return out.TxHash, nil
}

func (r *Remote) Balance(ctx context.Context) (decimal.Decimal, error) {
	var out balanceResponse
	if err := r.do(ctx, http.MethodGet, "/balance", nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

func (r *Remote) IsValidAddress(address string) bool {
	return IsValidAddress(address)
}

func (r *Remote) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode relayer request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build relayer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relayer %s %s after %s: %w", method, path, time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayerResponseBytes))
	if err != nil {
		return fmt.Errorf("read relayer response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		return &RelayerError{Status: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode relayer response: %w", err)
	}
	return nil
}
