// Package oracle looks identities up in the external participant registry.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// Profile is the subset of the registry's user document the faucet reads.
type Profile struct {
	ID   string
	Name string
}

// Client calls GET {base}/users/{identity}.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAPIKey sends the key as a bearer token.
func WithAPIKey(key string) Option {
	return func(cl *Client) { cl.apiKey = key }
}

// New returns a client for the registry rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("oracle base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid oracle base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup returns the profile registered under identity. The match is exact:
// identity is path-escaped, never case-folded.
func (c *Client) Lookup(ctx context.Context, identity string) (*Profile, error) {
	endpoint := c.baseURL + "/users/" + url.PathEscape(identity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newProviderError(ErrorInternal, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, newProviderError(ErrorTimeout, "lookup timed out", err)
		}
		return nil, newProviderError(ErrorOutage, "lookup failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newProviderError(ErrorOutage, "failed to read response", err)
	}
	return parseLookupResponse(resp.StatusCode, body)
}

func parseLookupResponse(status int, body []byte) (*Profile, error) {
	switch {
	case status == http.StatusNotFound:
		return nil, newProviderError(ErrorNotFound, "identity not registered", nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, newProviderError(ErrorAuthentication, fmt.Sprintf("status %d", status), nil)
	case status == http.StatusTooManyRequests:
		return nil, newProviderError(ErrorRateLimited, "rate limited", nil)
	case status >= http.StatusInternalServerError:
		return nil, newProviderError(ErrorOutage, fmt.Sprintf("status %d", status), nil)
	case status != http.StatusOK:
		return nil, newProviderError(ErrorBadData, fmt.Sprintf("unexpected status %d", status), nil)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, newProviderError(ErrorBadData, "malformed profile", err)
	}
	rawID, hasID := doc["id"]
	rawName, hasName := doc["name"]
	if !hasID && !hasName {
		return nil, newProviderError(ErrorNotFound, "profile carries neither id nor name", nil)
	}
	profile := &Profile{ID: scalarString(rawID)}
	_ = json.Unmarshal(rawName, &profile.Name)
	return profile, nil
}

// scalarString renders a JSON string or number without quotes. Registries
// disagree on whether ids are numeric.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
