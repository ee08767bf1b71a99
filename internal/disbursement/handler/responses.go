package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/reporting"
	"faucetgate/internal/disbursement/service"
	"faucetgate/pkg/platform/audit"
)

// DisbursementResponse is written for every outcome. Error fields follow
// the shared error envelope so clients can branch on "error".
type DisbursementResponse struct {
	Status         string          `json:"status"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	RetryAt        *time.Time      `json:"retry_at,omitempty"`
	Error          string          `json:"error,omitempty"`
	Description    string          `json:"error_description,omitempty"`
}

func fromResult(res models.Result) DisbursementResponse {
	out := DisbursementResponse{
		Status:         string(res.Status),
		TransactionRef: res.TransactionRef,
		Amount:         res.Amount,
	}
	if !res.RetryAt.IsZero() {
		t := res.RetryAt.UTC()
		out.RetryAt = &t
	}
	return out
}

// StatsResponse is the body for GET /v1/stats.
type StatsResponse struct {
	TotalRequests      int                 `json:"total_requests"`
	SuccessfulRequests int                 `json:"successful_requests"`
	FailedRequests     int                 `json:"failed_requests"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	SuccessRate        decimal.Decimal     `json:"success_rate"`
	UniqueIdentities   int                 `json:"unique_identities"`
	UseCases           []reporting.UseCase `json:"use_cases"`
}

func fromStats(st service.DetailedStats) StatsResponse {
	useCases := st.UseCases
	if useCases == nil {
		useCases = []reporting.UseCase{}
	}
	return StatsResponse{
		TotalRequests:      st.Count,
		SuccessfulRequests: st.SucceededCount,
		FailedRequests:     st.FailedCount,
		TotalAmount:        st.TotalAmountSucceeded,
		SuccessRate:        st.SuccessRate(),
		UniqueIdentities:   st.UniqueIdentities,
		UseCases:           useCases,
	}
}

// RecordResponse is one entry of GET /v1/disbursements/recent.
type RecordResponse struct {
	ID             string          `json:"id"`
	AgentName      string          `json:"agent_name"`
	WalletAddress  string          `json:"wallet_address"`
	Reason         string          `json:"reason"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionRef string          `json:"transaction_ref"`
	Timestamp      time.Time       `json:"timestamp"`
}

type RecentResponse struct {
	Requests []RecordResponse `json:"requests"`
}

func fromRecords(recs []models.Record) RecentResponse {
	out := RecentResponse{Requests: make([]RecordResponse, 0, len(recs))}
	for _, rec := range recs {
		out.Requests = append(out.Requests, RecordResponse{
			ID:             rec.ID.String(),
			AgentName:      rec.Identity,
			WalletAddress:  rec.Destination,
			Reason:         rec.Justification,
			Amount:         rec.Amount,
			TransactionRef: rec.TransactionRef,
			Timestamp:      rec.Timestamp.UTC(),
		})
	}
	return out
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status   string           `json:"status"`
	Store    string           `json:"store"`
	Ledger   string           `json:"ledger"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
	Amount   decimal.Decimal  `json:"grant_amount"`
	Cooldown string           `json:"cooldown"`
}

func componentState(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}

// AuditEventResponse is one entry of GET /v1/audit/recent.
type AuditEventResponse struct {
	Category       string    `json:"category"`
	Action         string    `json:"action"`
	Subject        string    `json:"subject"`
	Decision       string    `json:"decision,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	TransactionRef string    `json:"transaction_ref,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type AuditResponse struct {
	Events []AuditEventResponse `json:"events"`
}

func fromEvents(events []audit.Event) AuditResponse {
	out := AuditResponse{Events: make([]AuditEventResponse, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, AuditEventResponse{
			Category:       string(e.Category),
			Action:         e.Action,
			Subject:        e.Subject,
			Decision:       e.Decision,
			Reason:         e.Reason,
			Destination:    e.Destination,
			TransactionRef: e.TransactionRef,
			RequestID:      e.RequestID,
			Timestamp:      e.Timestamp.UTC(),
		})
	}
	return out
}
