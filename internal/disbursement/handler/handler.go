package handler

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/service"
	dErrors "faucetgate/pkg/domain-errors"
	"faucetgate/pkg/platform/audit"
	"faucetgate/pkg/platform/httputil"
	"faucetgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,AuditReader

const defaultRecentLimit = 50

// Service defines the disbursement operations exposed over HTTP.
type Service interface {
	RequestDisbursement(ctx context.Context, req models.Request) (models.Result, error)
	DetailedStats(ctx context.Context) (service.DetailedStats, error)
	RecentHistory(ctx context.Context, limit int) ([]models.Record, error)
	Health(ctx context.Context) service.Health
	Amount() decimal.Decimal
	Cooldown() time.Duration
}

// AuditReader lists recorded audit events, newest first.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler wires disbursement endpoints to the coordinator.
type Handler struct {
	service Service
	audit   AuditReader
	logger  *slog.Logger
}

// New constructs a handler. auditReader may be nil, in which case the audit
// route reports unavailable.
func New(svc Service, auditReader AuditReader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{service: svc, audit: auditReader, logger: logger}
}

// Register mounts disbursement endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/disbursements", h.HandleRequest)
	r.Post("/request", h.HandleRequest)
	r.Get("/v1/disbursements/recent", h.HandleRecent)
	r.Get("/v1/stats", h.HandleStats)
	r.Get("/v1/audit/recent", h.HandleAuditRecent)
	r.Get("/health", h.HandleHealth)
}

// HandleRequest handles POST /v1/disbursements.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[DisbursementRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.RequestDisbursement(ctx, req.toModel())
	resp := fromResult(result)
	status := http.StatusOK
	if err != nil {
		status = httputil.StatusFor(err)
		code := dErrors.CodeOf(err)
		resp.Error = string(code)
		if code != dErrors.CodeInternal {
			resp.Description = dErrors.MessageOf(err)
		}
		if code == dErrors.CodeCooldownActive && !result.RetryAt.IsZero() {
			w.Header().Set("Retry-After", retryAfterSeconds(requestcontext.Now(ctx), result.RetryAt))
		}
	}

	h.logger.InfoContext(ctx, "disbursement request handled",
		"request_id", requestID,
		"identity", req.AgentName,
		"status", resp.Status,
		"error", resp.Error,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, status, resp)
}

func retryAfterSeconds(now, retryAt time.Time) string {
	secs := math.Ceil(retryAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(int64(secs), 10)
}

// HandleStats handles GET /v1/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.DetailedStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load stats",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStats(stats))
}

// HandleRecent handles GET /v1/disbursements/recent?limit=N.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	recs, err := h.service.RecentHistory(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load recent disbursements",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecords(recs))
}

// HandleAuditRecent handles GET /v1/audit/recent?limit=N.
func (h *Handler) HandleAuditRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.audit == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit trail is not configured"))
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit = min(limit, service.MaxRecentLimit)
	events, err := h.audit.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeStorage, "audit trail unavailable"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEvents(events))
}

// HandleHealth handles GET /health. It answers 503 when either the log or
// the ledger is unreachable.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health(r.Context())
	resp := HealthResponse{
		Status:   componentState(health.OK()),
		Store:    componentState(health.StoreOK),
		Ledger:   componentState(health.LedgerOK),
		Amount:   h.service.Amount(),
		Cooldown: h.service.Cooldown().String(),
	}
	if health.LedgerOK {
		balance := health.Balance
		resp.Balance = &balance
	}
	status := http.StatusOK
	if !health.OK() {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultRecentLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "limit must be an integer")
	}
	return limit, nil
}
