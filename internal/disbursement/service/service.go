// Package service coordinates a disbursement request from validation through
// transfer and logging.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"faucetgate/internal/disbursement/cooldown"
	"faucetgate/internal/disbursement/metrics"
	"faucetgate/internal/disbursement/ports"
	"faucetgate/pkg/platform/keylock"
)

const (
	DefaultCooldown        = 24 * time.Hour
	DefaultVerifyTimeout   = 10 * time.Second
	DefaultTransferTimeout = 120 * time.Second
)

// Service is the disbursement coordinator. At most one request per identity
// runs past validation at a time, so the cooldown check and the log append
// cannot interleave with another request for the same identity.
type Service struct {
	store    ports.Store
	ledger   ports.Ledger
	verifier ports.Verifier
	gate     *cooldown.Gate
	locks    *keylock.Locker

	amount          decimal.Decimal
	window          time.Duration
	verifyTimeout   time.Duration
	transferTimeout time.Duration

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithAmount sets the fixed grant size.
func WithAmount(amount decimal.Decimal) Option {
	return func(s *Service) { s.amount = amount }
}

// WithCooldown sets the per-identity window.
func WithCooldown(window time.Duration) Option {
	return func(s *Service) { s.window = window }
}

func WithVerifyTimeout(d time.Duration) Option {
	return func(s *Service) { s.verifyTimeout = d }
}

func WithTransferTimeout(d time.Duration) Option {
	return func(s *Service) { s.transferTimeout = d }
}

func New(store ports.Store, ledger ports.Ledger, verifier ports.Verifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if verifier == nil {
		return nil, errors.New("identity verifier is required")
	}
	gate, err := cooldown.New(store)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:           store,
		ledger:          ledger,
		verifier:        verifier,
		gate:            gate,
		locks:           keylock.New(),
		amount:          decimal.NewFromInt(10),
		window:          DefaultCooldown,
		verifyTimeout:   DefaultVerifyTimeout,
		transferTimeout: DefaultTransferTimeout,
		logger:          slog.New(slog.DiscardHandler),
		tracer:          otel.Tracer("faucetgate/disbursement"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.amount.IsPositive() {
		return nil, fmt.Errorf("grant amount must be positive, got %s", s.amount)
	}
	if s.window <= 0 {
		return nil, fmt.Errorf("cooldown window must be positive, got %s", s.window)
	}
	if s.verifyTimeout <= 0 || s.transferTimeout <= 0 {
		return nil, errors.New("timeouts must be positive")
	}
	return s, nil
}

// Amount returns the configured grant size.
func (s *Service) Amount() decimal.Decimal { return s.amount }

// Cooldown returns the configured window.
func (s *Service) Cooldown() time.Duration { return s.window }
