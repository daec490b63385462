package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// BootstrapAdmin makes sure an ADMIN account exists for email. A missing
// account is registered through provider; an existing one is promoted.
func BootstrapAdmin(ctx context.Context, repo ports.UserRepository, provider ports.SessionProvider, in ports.SignUpInput, log zerolog.Logger) error {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil
	}

	user, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsAdmin() {
			log.Debug().Str("user_id", user.ID).Msg("bootstrap admin already present")
			return nil
		}
	case errors.Is(err, domain.ErrUserNotFound):
		in.Email = email
		user, err = provider.SignUpEmail(ctx, in)
		if err != nil {
			return fmt.Errorf("register bootstrap admin: %w", err)
		}
	default:
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	if _, err := repo.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		return fmt.Errorf("promote bootstrap admin: %w", err)
	}
	if err := provider.UpdateUserRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("bootstrap admin promoted but sessions not refreshed")
	}

	log.Info().Str("user_id", user.ID).Str("email", email).Msg("bootstrap admin ready")
	return nil
}
