package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"faucetgate/internal/ratelimit/metrics"
	"faucetgate/internal/ratelimit/models"
	"faucetgate/internal/ratelimit/observability"
	"faucetgate/internal/ratelimit/stats"
	"faucetgate/pkg/platform/audit"
	"faucetgate/pkg/platform/httputil"
	"faucetgate/pkg/requestcontext"
)

// Limiter takes a token for key.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// Middleware throttles requests per client IP ahead of the handlers.
type Middleware struct {
	limiter  Limiter
	logger   *slog.Logger
	stats    stats.Recorder
	metrics  *metrics.Metrics
	audit    observability.AuditPublisher
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns throttling off entirely.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

func WithStats(r stats.Recorder) Option {
	return func(m *Middleware) { m.stats = r }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) { m.metrics = mt }
}

func WithAuditPublisher(p observability.AuditPublisher) Option {
	return func(m *Middleware) { m.audit = p }
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.limiter == nil {
		m.disabled = true
	}
	if m.disabled {
		m.logger.Info("ingress rate limiting disabled")
	}
	return m
}

// RateLimit must run after metadata.ClientMetadata. Mounted on an inline
// router it sees the matched route pattern.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		key := models.IPKey(ip)
		allowed, retryAfter := m.limiter.Allow(key)

		decision := models.Decision{
			Key:        key,
			Allowed:    allowed,
			RetryAfter: retryAfter,
			Method:     r.Method,
			Route:      routePattern(r),
			At:         requestcontext.Now(ctx),
		}
		m.metrics.IncrementDecision(allowed)
		if m.stats != nil {
			if err := m.stats.Record(ctx, decision); err != nil {
				m.metrics.IncrementStatsErrors()
				m.logger.DebugContext(ctx, "failed to record throttle decision", "error", err)
			}
		}

		if !allowed {
			observability.LogAudit(ctx, m.logger, m.audit, audit.EventIngressThrottled, ip, "rate_limit_exceeded")
			writeRateLimitExceeded(w, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func writeRateLimitExceeded(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests from this IP address. Please try again later.",
		RetryAfter: secs,
	})
}
