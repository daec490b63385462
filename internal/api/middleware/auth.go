package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

const sessionKey = "session"

// Session resolves the caller's identity through provider and stores it on
// the context. Anonymous requests pass through with no session; access
// decisions belong to RBAC.
func Session(provider ports.SessionProvider, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c.Request(), cookieName)
			if token == "" {
				return next(c)
			}

			sess, err := provider.GetSession(c.Request().Context(), token)
			if err != nil {
				return err
			}
			if sess != nil {
				c.Set(sessionKey, sess)
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session resolved by the Session middleware, or nil
// for anonymous requests.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionKey).(*domain.Session)
	return sess
}

// TokenFromRequest extracts the session token from a Bearer Authorization
// header, falling back to the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	if ck, err := r.Cookie(cookieName); err == nil {
		return ck.Value
	}
	return ""
}
