package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/service"
)

// RBAC rejects the request unless the resolved session may perform action.
// It runs before the handler binds or validates anything, so an
// unauthorized caller always sees 403.
func RBAC(action service.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.Authorize(SessionFrom(c), action); err != nil {
				return err
			}
			return next(c)
		}
	}
}
