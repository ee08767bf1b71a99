package ports

import (
	"context"
	"log/slog"

	audit "faucetgate/pkg/platform/audit"
	"faucetgate/pkg/requestcontext"
)

// LogAudit writes the event to the structured log and, when a publisher is
// configured, to the audit trail. Request correlation fields are filled from ctx.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, name audit.AuditEvent, event audit.Event) {
	event.Action = string(name)
	event.Category = name.Category()
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	if logger != nil {
		logger.InfoContext(ctx, string(name),
			"log_type", "audit",
			"category", string(event.Category),
			"identity", event.Subject,
			"decision", event.Decision,
			"reason", event.Reason,
			"request_id", event.RequestID,
			"user_agent", requestcontext.UserAgent(ctx),
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(name), "error", err)
	}
}
