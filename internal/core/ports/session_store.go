package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// SessionStore persists sessions and indexes them by user. Get returns
// domain.ErrSessionNotFound for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	DeleteByUser(ctx context.Context, userID string) error
}
