package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/metrics"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	minPasswordLength = 8
)

// AuthService is the session provider: it registers email credentials,
// issues signed session tokens backed by the session store, and resolves
// tokens back into sessions.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	jwtSecret  string
	sessionTTL time.Duration
	throttle   ports.LoginThrottle
	log        zerolog.Logger
	now        func() time.Time
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithLoginThrottle limits failed sign-in attempts per email.
func WithLoginThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, jwtSecret string, sessionTTL time.Duration, log zerolog.Logger, opts ...AuthOption) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	s := &AuthService{
		users:      users,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUpEmail registers a new account with the USER role.
func (s *AuthService) SignUpEmail(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.Invalid("name, email, and password are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("credential registered")
	return publicUser(created), nil
}

// Register signs up a new account and issues its first session. The
// sign-in throttle does not apply.
func (s *AuthService) Register(ctx context.Context, in ports.SignUpInput) (*ports.SignInResult, error) {
	user, err := s.SignUpEmail(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// SignInEmail verifies an email/password pair and issues a new session.
// With a throttle configured, an email that has exhausted its failed
// attempts is refused before the password is checked.
func (s *AuthService) SignInEmail(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			return nil, err
		}
		if blocked {
			metrics.SignInThrottledTotal.Inc()
			s.log.Warn().Str("email", email).Msg("sign-in throttled")
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset sign-in throttle")
		}
	}
	return s.issue(ctx, user)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to record sign-in failure")
	}
}

// GetSession resolves token into its live session. Anything short of a
// valid, stored session is anonymous; only store failures are errors.
func (s *AuthService) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	sid, ok := s.parseToken(token)
	if !ok {
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Expired(s.now()) || !sess.Authenticated() {
		return nil, nil
	}
	return &sess, nil
}

// SignOut revokes the session behind token. Unknown tokens are a no-op.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	sid, ok := s.parseToken(token)
	if !ok {
		return nil
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UpdateUserRole rewrites the role snapshot held by every live session of
// userID so that the next session read reflects it without re-login.
func (s *AuthService) UpdateUserRole(ctx context.Context, userID string, role domain.Role) error {
	list, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	now := s.now()
	var errs []error
	for _, sess := range list {
		if sess.Expired(now) || !sess.Authenticated() {
			continue
		}
		user := *sess.User
		user.Role = role
		user.UpdatedAt = now.UTC()
		sess.User = &user
		if err := s.sessions.Save(ctx, sess); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	return errors.Join(errs...)
}

// RevokeUserSessions deletes every session of userID.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*ports.SignInResult, error) {
	now := s.now().UTC()
	sess := domain.Session{
		ID:        uuid.NewString(),
		User:      publicUser(user),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.generateToken(sess)
	if err != nil {
		return nil, err
	}

	metrics.SessionsIssuedTotal.Inc()
	s.log.Info().Str("user_id", user.ID).Str("session_id", sess.ID).Msg("session issued")
	return &ports.SignInResult{Token: token, Session: &sess}, nil
}

func (s *AuthService) generateToken(sess domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": sess.ID,
		"sub": sess.User.ID,
		"iat": sess.CreatedAt.Unix(),
		"exp": sess.ExpiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// parseToken returns the session ID carried by a valid token.
func (s *AuthService) parseToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return "", false
	}

	sid, _ := claims["sid"].(string)
	return sid, sid != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// publicUser returns a copy of u without credential fields.
func publicUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
