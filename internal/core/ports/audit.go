package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// AuditRepository stores the activity trail of user-directory mutations.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	// ListByUser returns up to limit events for userID, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEvent, error)
}

// AuditPublisher hands audit events off for asynchronous persistence.
// Publish never blocks the caller.
type AuditPublisher interface {
	Publish(event domain.AuditEvent)
}
