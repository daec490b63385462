package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type stubProvider struct {
	ports.SessionProvider
	sessions map[string]*domain.Session
	err      error
	calls    int
}

func (s *stubProvider) GetSession(_ context.Context, token string) (*domain.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func adminSession() *domain.Session {
	return &domain.Session{ID: "s1", User: &domain.User{ID: "u1", Role: domain.RoleAdmin}}
}

func TestSession_BearerToken(t *testing.T) {
	e := echo.New()
	provider := &stubProvider{sessions: map[string]*domain.Session{"tok": adminSession()}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(provider, "session_token")(func(c echo.Context) error {
		called = true
		if sess := SessionFrom(c); sess == nil || sess.UserID() != "u1" {
			t.Fatalf("session not set: %+v", sess)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_Cookie(t *testing.T) {
	e := echo.New()
	provider := &stubProvider{sessions: map[string]*domain.Session{"tok": adminSession()}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(provider, "session_token")(func(c echo.Context) error {
		if SessionFrom(c) == nil {
			t.Fatalf("expected session from cookie")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestSession_AnonymousPassesThrough(t *testing.T) {
	e := echo.New()
	provider := &stubProvider{sessions: map[string]*domain.Session{}}

	for name, header := range map[string]string{
		"no header":     "",
		"unknown token": "Bearer nope",
		"wrong scheme":  "Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		called := false
		handler := Session(provider, "session_token")(func(c echo.Context) error {
			called = true
			if SessionFrom(c) != nil {
				t.Fatalf("%s: expected anonymous", name)
			}
			return nil
		})
		if err := handler(c); err != nil {
			t.Fatalf("%s: handler error: %v", name, err)
		}
		if !called {
			t.Fatalf("%s: next not called", name)
		}
	}
	if provider.calls != 1 {
		t.Fatalf("expected provider to be consulted only for bearer tokens, got %d calls", provider.calls)
	}
}

func TestSession_ProviderFailure(t *testing.T) {
	e := echo.New()
	provider := &stubProvider{err: errors.New("redis down")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Session(provider, "session_token")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if err := handler(c); err == nil {
		t.Fatalf("expected provider error to surface")
	}
}

func TestTokenFromRequest_HeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer from-header")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})

	if got := TokenFromRequest(req, "sid"); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}
}
