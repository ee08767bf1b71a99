// Package proof checks a caller-supplied page on the trusted registry domain
// for a mention of the identity.
//
// The check is a case-insensitive substring match on the fetched body, so
// anyone able to publish content under the trusted domain can satisfy it.
package proof

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTrustedDomain = "moltbook.com"
	defaultMaxBodyBytes  = 512 << 10
	defaultTimeout       = 10 * time.Second
)

var ErrUntrustedHost = errors.New("proof URL is not on the trusted domain")

// Checker fetches proof pages from the trusted domain only.
type Checker struct {
	trustedDomain string
	maxBodyBytes  int64
	httpClient    *http.Client
}

type Option func(*Checker)

func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) {
		if c != nil {
			ch.httpClient = c
		}
	}
}

// WithMaxBodyBytes caps how much of the page is scanned.
func WithMaxBodyBytes(n int64) Option {
	return func(ch *Checker) {
		if n > 0 {
			ch.maxBodyBytes = n
		}
	}
}

// New returns a checker trusting trustedDomain and its subdomains.
func New(trustedDomain string, timeout time.Duration, opts ...Option) *Checker {
	domain := strings.ToLower(strings.Trim(strings.TrimSpace(trustedDomain), "."))
	if domain == "" {
		domain = DefaultTrustedDomain
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Checker{
		trustedDomain: domain,
		maxBodyBytes:  defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	// redirects must stay on the trusted domain
	base := c.httpClient
	client := *base
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("too many redirects")
		}
		if !c.Trusted(req.URL.Hostname()) {
			return ErrUntrustedHost
		}
		return nil
	}
	c.httpClient = &client
	return c
}

// TrustedDomain returns the normalized trusted domain.
func (c *Checker) TrustedDomain() string { return c.trustedDomain }

// Trusted reports whether host is the trusted domain or one of its subdomains.
func (c *Checker) Trusted(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == c.trustedDomain || strings.HasSuffix(host, "."+c.trustedDomain)
}

// Check fetches proofURL and reports whether its body mentions identity.
// A page that cannot be fetched is an error, never a match.
func (c *Checker) Check(ctx context.Context, proofURL, identity string) (bool, error) {
	if strings.TrimSpace(identity) == "" {
		return false, errors.New("identity is required")
	}
	u, err := url.Parse(strings.TrimSpace(proofURL))
	if err != nil {
		return false, fmt.Errorf("invalid proof URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false, fmt.Errorf("unsupported proof URL scheme %q", u.Scheme)
	}
	if !c.Trusted(u.Hostname()) {
		return false, ErrUntrustedHost
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build proof request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch proof: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch proof: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return false, fmt.Errorf("read proof: %w", err)
	}
	return strings.Contains(strings.ToLower(string(body)), strings.ToLower(identity)), nil
}
