// Package guard decides navigation outcomes from a path and the caller's
// session: protected paths send anonymous callers to the login page, and
// auth-only pages send signed-in callers home.
//
// The default protected prefix set contains "/", so every path is
// protected unless it is one of the auth-only routes.
package guard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
)

const (
	DefaultLoginPath   = "/login"
	DefaultHomePath    = "/"
	DefaultWaitTimeout = 5 * time.Second
)

var (
	// DefaultProtectedPrefixes are matched with strings.HasPrefix.
	DefaultProtectedPrefixes = []string{"/", "/inbox", "/employees", "/settings", "/profile"}
	// DefaultAuthRoutes are matched exactly.
	DefaultAuthRoutes = []string{"/login", "/register"}
)

// ErrSessionPending is returned by Check when the session did not resolve
// within the wait timeout.
var ErrSessionPending = errors.New("session still pending")

// Decision is the outcome of a navigation check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	default:
		return "allow"
	}
}

// Class describes how a path is treated.
type Class struct {
	Protected bool
	AuthOnly  bool
}

// SessionSource yields the caller's session once it has resolved. Wait
// must honour ctx cancellation.
type SessionSource interface {
	Wait(ctx context.Context) (*domain.Session, error)
}

// Guard classifies paths and decides navigation. It holds no mutable state.
type Guard struct {
	protected   []string
	authOnly    map[string]struct{}
	loginPath   string
	homePath    string
	waitTimeout time.Duration
}

// Option configures a Guard.
type Option func(*Guard)

// WithProtectedPrefixes replaces the protected prefix set.
func WithProtectedPrefixes(prefixes ...string) Option {
	return func(g *Guard) { g.protected = append([]string(nil), prefixes...) }
}

// WithAuthRoutes replaces the auth-only route set.
func WithAuthRoutes(paths ...string) Option {
	return func(g *Guard) {
		g.authOnly = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			g.authOnly[p] = struct{}{}
		}
	}
}

// WithRedirects sets the login and home targets.
func WithRedirects(login, home string) Option {
	return func(g *Guard) {
		g.loginPath = login
		g.homePath = home
	}
}

// WithWaitTimeout bounds how long Check waits for a pending session.
func WithWaitTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.waitTimeout = d
		}
	}
}

func New(opts ...Option) *Guard {
	g := &Guard{
		protected:   append([]string(nil), DefaultProtectedPrefixes...),
		loginPath:   DefaultLoginPath,
		homePath:    DefaultHomePath,
		waitTimeout: DefaultWaitTimeout,
	}
	WithAuthRoutes(DefaultAuthRoutes...)(g)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Classify reports whether path is protected and whether it is auth-only.
// A path can be both.
func (g *Guard) Classify(path string) Class {
	var c Class
	for _, prefix := range g.protected {
		if strings.HasPrefix(path, prefix) {
			c.Protected = true
			break
		}
	}
	_, c.AuthOnly = g.authOnly[path]
	return c
}

// Decide returns the navigation outcome for path given sess. Auth-only
// routes are never redirected to login: they are where anonymous callers
// sign in or register.
func (g *Guard) Decide(path string, sess *domain.Session) Decision {
	c := g.Classify(path)
	authenticated := sess.Authenticated()

	if c.Protected && !authenticated && !c.AuthOnly {
		return RedirectToLogin
	}
	if c.AuthOnly && authenticated {
		return RedirectToHome
	}
	return Allow
}

// Check waits for src to resolve, bounded by the guard's wait timeout and
// ctx, and then decides. If the wait fails the decision is made as if the
// caller were anonymous and the error is returned alongside it.
func (g *Guard) Check(ctx context.Context, path string, src SessionSource) (Decision, error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.waitTimeout)
	defer cancel()

	sess, err := src.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = ErrSessionPending
		}
		return g.Decide(path, nil), err
	}
	return g.Decide(path, sess), nil
}

// Target returns the redirect location for d, or "" for Allow.
func (g *Guard) Target(d Decision) string {
	switch d {
	case RedirectToLogin:
		return g.loginPath
	case RedirectToHome:
		return g.homePath
	default:
		return ""
	}
}
