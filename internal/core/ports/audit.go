package ports

import (
	"context"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

// AuditRepository persists auth events to the audit collection.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts auth events for asynchronous persistence. Record
// must not block the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
