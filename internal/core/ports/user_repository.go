package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// UserRepository is the user directory. Lookups of unknown users return
// domain.ErrUserNotFound; inserting a taken email returns domain.ErrUserExists.
type UserRepository interface {
	// List returns every user ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// Transactor runs fn inside a single transactional boundary when the
// backing store supports one. Implementations without transactions run fn
// directly.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
