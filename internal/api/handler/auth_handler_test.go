package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/guard"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type stubSessionProvider struct {
	ports.SessionProvider
	registerFn func(ctx context.Context, in ports.SignUpInput) (*ports.SignInResult, error)
	signInFn   func(ctx context.Context, email, password string) (*ports.SignInResult, error)
	signOutFn  func(ctx context.Context, token string) error
}

func (s *stubSessionProvider) Register(ctx context.Context, in ports.SignUpInput) (*ports.SignInResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubSessionProvider) SignInEmail(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubSessionProvider) SignOut(ctx context.Context, token string) error {
	return s.signOutFn(ctx, token)
}

func signedIn(email string) *ports.SignInResult {
	now := time.Now().UTC()
	return &ports.SignInResult{
		Token: "tok-" + email,
		Session: &domain.Session{
			ID:        "s1",
			User:      &domain.User{ID: "u1", Email: email, Role: domain.RoleUser},
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		},
	}
}

func newAuthHandler(p ports.SessionProvider) *AuthHandler {
	return NewAuthHandler(p, guard.New(), CookieConfig{Name: "session_token"})
}

func TestAuthHandler_SignUp_SignsIn(t *testing.T) {
	stub := &stubSessionProvider{
		registerFn: func(ctx context.Context, in ports.SignUpInput) (*ports.SignInResult, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Password != "pass1234" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return signedIn(in.Email), nil
		},
		signInFn: func(ctx context.Context, email, password string) (*ports.SignInResult, error) {
			t.Fatalf("sign-up must not go through password sign-in")
			return nil, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/auth/sign-up/email", `{"name":"Alice","email":"alice@example.com","password":"pass1234"}`)
	if err := newAuthHandler(stub).SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["token"] != "tok-alice@example.com" {
		t.Fatalf("unexpected body: %v", body)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session_token" || cookies[0].Value != "tok-alice@example.com" || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
}

func TestAuthHandler_SignUp_Validation(t *testing.T) {
	stub := &stubSessionProvider{
		registerFn: func(ctx context.Context, in ports.SignUpInput) (*ports.SignInResult, error) {
			t.Fatalf("provider should not be called")
			return nil, nil
		},
	}

	for _, body := range []string{
		`{"email":"a@example.com","password":"pass1234"}`,
		`{"name":"A","email":"not-an-email","password":"pass1234"}`,
		`{"name":"A","email":"a@example.com","password":"short"}`,
		`{"name":`,
	} {
		c, _ := newContext(http.MethodPost, "/api/auth/sign-up/email", body)
		if err := newAuthHandler(stub).SignUp(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
}

func TestAuthHandler_SignUp_Duplicate(t *testing.T) {
	stub := &stubSessionProvider{
		registerFn: func(ctx context.Context, in ports.SignUpInput) (*ports.SignInResult, error) {
			return nil, domain.ErrUserExists
		},
	}

	c, _ := newContext(http.MethodPost, "/api/auth/sign-up/email", `{"name":"Bob","email":"bob@example.com","password":"pass1234"}`)
	if err := newAuthHandler(stub).SignUp(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	stub := &stubSessionProvider{
		signInFn: func(ctx context.Context, email, password string) (*ports.SignInResult, error) {
			if password != "pass1234" {
				return nil, domain.ErrInvalidCredentials
			}
			return signedIn(email), nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/auth/sign-in/email", `{"email":"carol@example.com","password":"pass1234"}`)
	if err := newAuthHandler(stub).SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodPost, "/api/auth/sign-in/email", `{"email":"carol@example.com","password":"wrong"}`)
	if err := newAuthHandler(stub).SignIn(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_SignOut_ClearsCookie(t *testing.T) {
	var revoked string
	stub := &stubSessionProvider{
		signOutFn: func(ctx context.Context, token string) error {
			revoked = token
			return nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/auth/sign-out", "")
	c.Request().Header.Set("Authorization", "Bearer tok-1")

	if err := newAuthHandler(stub).SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != "tok-1" {
		t.Fatalf("expected tok-1 revoked, got %q", revoked)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "" {
		t.Fatalf("expected cleared cookie, got %+v", cookies)
	}
}

func TestAuthHandler_GetSession(t *testing.T) {
	h := newAuthHandler(&stubSessionProvider{})

	c, rec := newContext(http.MethodGet, "/api/auth/get-session", "")
	if err := h.GetSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "null\n" {
		t.Fatalf("expected null for anonymous, got %q", got)
	}

	c, rec = newContext(http.MethodGet, "/api/auth/get-session", "")
	c.Set("session", adminCaller)
	if err := h.GetSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var sess domain.Session
	_ = json.Unmarshal(rec.Body.Bytes(), &sess)
	if sess.UserID() != "admin-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestAuthHandler_RouteDecision(t *testing.T) {
	h := newAuthHandler(&stubSessionProvider{})

	tests := []struct {
		path     string
		session  *domain.Session
		decision string
		redirect string
	}{
		{"/settings", nil, "redirect_to_login", "/login"},
		{"/settings", adminCaller, "allow", ""},
		{"/login", adminCaller, "redirect_to_home", "/"},
		{"/register", nil, "allow", ""},
	}

	for _, tt := range tests {
		c, rec := newContext(http.MethodGet, "/api/auth/route-decision?path="+tt.path, "")
		if tt.session != nil {
			c.Set("session", tt.session)
		}
		if err := h.RouteDecision(c); err != nil {
			t.Fatalf("%s: handler error: %v", tt.path, err)
		}

		var body routeDecisionResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body.Decision != tt.decision || body.Redirect != tt.redirect {
			t.Fatalf("%s (auth=%v): got %+v", tt.path, tt.session != nil, body)
		}
	}

	c, _ := newContext(http.MethodGet, "/api/auth/route-decision?path=settings", "")
	if err := h.RouteDecision(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for relative path, got %v", err)
	}
}
