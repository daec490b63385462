package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/middleware"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/guard"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// CookieConfig controls the session cookie set on sign-in.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	provider ports.SessionProvider
	guard    *guard.Guard
	cookie   CookieConfig
}

func NewAuthHandler(provider ports.SessionProvider, g *guard.Guard, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{provider: provider, guard: g, cookie: cookie}
}

type signUpRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token   string          `json:"token,omitempty"`
	User    *domain.User    `json:"user,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
}

type routeDecisionResponse struct {
	Path     string `json:"path"`
	Decision string `json:"decision"`
	Redirect string `json:"redirect,omitempty"`
}

// SignUp registers an email credential and signs the new account in.
//
// @Summary      Sign up with email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/sign-up/email [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.provider.Register(c.Request().Context(), ports.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.setCookie(c, res.Token, res.Session.ExpiresAt)
	return c.JSON(http.StatusCreated, authResponse{Token: res.Token, User: res.Session.User, Session: res.Session})
}

// SignIn authenticates an email/password pair and issues a session.
//
// @Summary      Sign in with email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/auth/sign-in/email [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.provider.SignInEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, res.Token, res.Session.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: res.Session.User, Session: res.Session})
}

// SignOut revokes the caller's session. It succeeds for anonymous callers.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	token := middleware.TokenFromRequest(c.Request(), h.cookie.Name)
	if err := h.provider.SignOut(c.Request().Context(), token); err != nil {
		return err
	}

	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// GetSession returns the caller's session, or null when anonymous.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Session
// @Router       /api/auth/get-session [get]
func (h *AuthHandler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.SessionFrom(c))
}

// RouteDecision reports what the access guard decides for path given the
// caller's session.
//
// @Summary      Access guard decision
// @Tags         auth
// @Produce      json
// @Param        path  query     string  true  "Application path, e.g. /settings"
// @Success      200   {object}  routeDecisionResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/route-decision [get]
func (h *AuthHandler) RouteDecision(c echo.Context) error {
	path := c.QueryParam("path")
	if !strings.HasPrefix(path, "/") {
		return domain.Invalid("path must start with /")
	}

	d := h.guard.Decide(path, middleware.SessionFrom(c))
	return c.JSON(http.StatusOK, routeDecisionResponse{
		Path:     path,
		Decision: d.String(),
		Redirect: h.guard.Target(d),
	})
}

func (h *AuthHandler) setCookie(c echo.Context, token string, expires time.Time) {
	if h.cookie.Name == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
