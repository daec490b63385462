package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// SignUpInput carries the fields needed to register an email credential.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignInResult is returned after a successful sign-in.
type SignInResult struct {
	Token   string
	Session *domain.Session
}

// SessionProvider issues and resolves sessions and owns the credential
// registration path.
type SessionProvider interface {
	SignUpEmail(ctx context.Context, in SignUpInput) (*domain.User, error)
	// Register signs up an email credential and issues a session for the
	// new account in one step.
	Register(ctx context.Context, in SignUpInput) (*SignInResult, error)
	SignInEmail(ctx context.Context, email, password string) (*SignInResult, error)
	// GetSession resolves a token into a session. Missing, malformed, expired
	// or revoked tokens yield (nil, nil): the caller is anonymous.
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	// UpdateUserRole rewrites the role held by every live session of userID.
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) error
	RevokeUserSessions(ctx context.Context, userID string) error
}
