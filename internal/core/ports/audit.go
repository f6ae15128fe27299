package ports

import (
	"context"

	"github.com/inkwell/content-platform/internal/core/domain"
)

// AuditRecorder accepts events fire-and-forget. Implementations must never
// block the caller beyond a channel hand-off and must swallow their own
// failures.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository appends events to the durable audit log.
type AuditRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) error
}
