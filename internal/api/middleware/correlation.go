package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/pkg/correlation"
)

// Correlation copies the request id assigned by echo's RequestID middleware
// into the request context so backend calls can forward it.
func Correlation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = correlation.NewID()
			}
			req := c.Request()
			c.SetRequest(req.WithContext(correlation.WithID(req.Context(), id)))
			return next(c)
		}
	}
}
