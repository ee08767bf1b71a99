package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers outcomes that moved funds or tried to.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers admission refusals and abuse signals.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers faults operators need to act on.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the caller identity the event concerns.
	Subject        string
	Action         string
	Decision       string
	Reason         string
	Destination    string
	TransactionRef string
	RequestID      string
	ClientIP       string
}

type AuditEvent string

const (
	EventDisbursementSucceeded AuditEvent = "disbursement_succeeded"
	EventDisbursementFailed    AuditEvent = "disbursement_failed"

	EventCooldownRejected    AuditEvent = "cooldown_rejected"
	EventIdentityRejected    AuditEvent = "identity_rejected"
	EventDestinationRejected AuditEvent = "destination_rejected"
	EventIngressThrottled    AuditEvent = "ingress_throttled"

	EventLedgerWriteFailed AuditEvent = "ledger_write_failed"
	EventOracleCircuitOpen AuditEvent = "oracle_circuit_open"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDisbursementSucceeded: CategoryCompliance,
	EventDisbursementFailed:    CategoryCompliance,

	EventCooldownRejected:    CategorySecurity,
	EventIdentityRejected:    CategorySecurity,
	EventDestinationRejected: CategorySecurity,
	EventIngressThrottled:    CategorySecurity,

	EventLedgerWriteFailed: CategoryOperations,
	EventOracleCircuitOpen: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
