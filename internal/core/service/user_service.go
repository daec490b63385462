package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/metrics"
)

const activityLimit = 100

// UserServiceOptions configures a UserService. Tx and Audit are optional.
type UserServiceOptions struct {
	Repo     ports.UserRepository
	Sessions ports.SessionProvider
	Tx       ports.Transactor
	Audit    ports.AuditPublisher
	AuditLog ports.AuditRepository
	Logger   zerolog.Logger
}

// UserService implements the user-directory operations. Every operation
// authorizes the caller before touching the directory.
type UserService struct {
	repo     ports.UserRepository
	sessions ports.SessionProvider
	tx       ports.Transactor
	audit    ports.AuditPublisher
	auditLog ports.AuditRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(opts UserServiceOptions) *UserService {
	s := &UserService{
		repo:     opts.Repo,
		sessions: opts.Sessions,
		tx:       opts.Tx,
		audit:    opts.Audit,
		auditLog: opts.AuditLog,
		log:      opts.Logger,
		now:      time.Now,
	}
	if s.tx == nil {
		s.tx = directTx{}
	}
	if s.audit == nil {
		s.audit = discardAudit{}
	}
	return s
}

// List returns every user, newest first, to any authenticated caller.
func (s *UserService) List(ctx context.Context, caller *domain.Session) ([]ports.UserSummary, error) {
	if err := authorize(caller, ActionListUsers); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]ports.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, toSummary(u))
	}
	return out, nil
}

// Create registers the credential through the session provider and then
// assigns the requested role. Both writes share one transactional boundary;
// without transaction support a failure between them leaves the account
// registered with the USER role.
func (s *UserService) Create(ctx context.Context, caller *domain.Session, in ports.CreateUserInput) (*ports.UserSummary, error) {
	if err := authorize(caller, ActionCreateUser); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		recordMutation("create", "invalid")
		return nil, domain.Invalid("name, email, and password are required")
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		recordMutation("create", "invalid")
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		recordMutation("create", "duplicate_email")
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	var created *domain.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		registered, err := s.sessions.SignUpEmail(ctx, ports.SignUpInput{
			Name:     name,
			Email:    email,
			Password: in.Password,
		})
		if err != nil {
			if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrValidation) {
				return err
			}
			return fmt.Errorf("%w: %w", domain.ErrCredentialCreation, err)
		}
		if registered == nil || registered.ID == "" {
			return domain.ErrCredentialCreation
		}

		updated, err := s.repo.UpdateRole(ctx, registered.ID, role)
		if err != nil {
			return fmt.Errorf("assign role: %w", err)
		}
		created = updated
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			recordMutation("create", "duplicate_email")
		case errors.Is(err, domain.ErrValidation):
			recordMutation("create", "invalid")
		default:
			recordMutation("create", "error")
			s.log.Error().Err(err).Str("email", email).Msg("failed to create user")
		}
		return nil, err
	}

	recordMutation("create", "ok")
	s.publish(caller, created.ID, domain.AuditUserCreated, created.Role)
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Str("actor_id", caller.UserID()).Msg("user created")

	summary := toSummary(created)
	return &summary, nil
}

// Delete removes a user and revokes its sessions. Admins cannot delete
// their own account.
func (s *UserService) Delete(ctx context.Context, caller *domain.Session, id string) (*ports.DeleteUserResult, error) {
	if err := authorize(caller, ActionDeleteUser); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		recordMutation("delete", "invalid")
		return nil, domain.Invalid("user ID is required")
	}
	if id == caller.UserID() {
		recordMutation("delete", "invalid")
		return nil, domain.Invalid("cannot delete your own account")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			recordMutation("delete", "not_found")
		}
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		recordMutation("delete", "error")
		return nil, err
	}

	if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("failed to revoke sessions of deleted user")
	}

	recordMutation("delete", "ok")
	s.publish(caller, id, domain.AuditUserDeleted, "")
	s.log.Info().Str("user_id", id).Str("actor_id", caller.UserID()).Msg("user deleted")

	return &ports.DeleteUserResult{
		Success:       true,
		Message:       "User deleted successfully",
		DeletedUserID: id,
	}, nil
}

// UpdateRole persists a new role and then propagates it to the user's live
// sessions. Propagation is best-effort: the directory write stands even if
// it fails.
func (s *UserService) UpdateRole(ctx context.Context, caller *domain.Session, id, rawRole string) (*domain.User, error) {
	if err := authorize(caller, ActionUpdateRole); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		recordMutation("update_role", "invalid")
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		recordMutation("update_role", "invalid")
		return nil, domain.Invalid("user ID is required")
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			recordMutation("update_role", "not_found")
		} else {
			recordMutation("update_role", "error")
		}
		return nil, err
	}

	if err := s.sessions.UpdateUserRole(ctx, id, role); err != nil {
		metrics.SessionPropagationFailuresTotal.Inc()
		s.log.Warn().Err(err).Str("user_id", id).Str("role", string(role)).Msg("role persisted but not propagated to sessions")
	}

	recordMutation("update_role", "ok")
	s.publish(caller, id, domain.AuditRoleChanged, role)
	s.log.Info().
		Str("user_id", id).
		Str("role", string(role)).
		Str("actor_id", caller.UserID()).
		Bool("self", id == caller.UserID()).
		Msg("role updated")

	return publicUser(user), nil
}

// Activity returns the most recent audit events recorded for a user.
func (s *UserService) Activity(ctx context.Context, caller *domain.Session, id string) ([]domain.AuditEvent, error) {
	if err := authorize(caller, ActionViewActivity); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Invalid("user ID is required")
	}
	if s.auditLog == nil {
		return []domain.AuditEvent{}, nil
	}

	events, err := s.auditLog.ListByUser(ctx, id, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return events, nil
}

func (s *UserService) publish(caller *domain.Session, userID string, action domain.AuditAction, role domain.Role) {
	s.audit.Publish(domain.AuditEvent{
		UserID:    userID,
		ActorID:   caller.UserID(),
		Action:    action,
		Role:      role,
		Timestamp: s.now().UTC(),
	})
}

func toSummary(u *domain.User) ports.UserSummary {
	return ports.UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func recordMutation(operation, result string) {
	metrics.UserMutationsTotal.WithLabelValues(operation, result).Inc()
}

type directTx struct{}

func (directTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type discardAudit struct{}

func (discardAudit) Publish(domain.AuditEvent) {}
