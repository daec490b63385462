package ports

import (
	"context"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// CreateUserInput carries an admin's request to create an account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserSummary is the public projection of a user. It never carries
// credential fields.
type UserSummary struct {
	ID        string
	Name      string
	Email     string
	Image     string
	Role      domain.Role
	CreatedAt time.Time
}

// DeleteUserResult reports a completed deletion.
type DeleteUserResult struct {
	Success       bool
	Message       string
	DeletedUserID string
}

// UserService gates and performs user-directory operations on behalf of the
// session caller. A nil caller is anonymous.
type UserService interface {
	List(ctx context.Context, caller *domain.Session) ([]UserSummary, error)
	Create(ctx context.Context, caller *domain.Session, in CreateUserInput) (*UserSummary, error)
	Delete(ctx context.Context, caller *domain.Session, id string) (*DeleteUserResult, error)
	UpdateRole(ctx context.Context, caller *domain.Session, id, role string) (*domain.User, error)
	Activity(ctx context.Context, caller *domain.Session, id string) ([]domain.AuditEvent, error)
}
