// Package observability provides audit logging helpers for the ratelimit module.
package observability

import (
	"context"
	"log/slog"

	"faucetgate/pkg/platform/audit"
	"faucetgate/pkg/requestcontext"
)

// AuditPublisher receives security events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs a throttle event and forwards it to publisher when set.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, name audit.AuditEvent, subject, reason string) {
	event := audit.Event{
		Category:  name.Category(),
		Timestamp: requestcontext.Now(ctx),
		Subject:   subject,
		Action:    string(name),
		Decision:  "denied",
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	}

	if logger != nil {
		logger.InfoContext(ctx, string(name),
			"log_type", "audit",
			"subject", subject,
			"reason", reason,
			"request_id", event.RequestID,
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(name), "error", err)
	}
}
