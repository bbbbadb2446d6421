package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/core/service"
	"github.com/coursehub/learning-portal/internal/infrastructure/tokenstore"
)

const (
	sessionKey = "session"
	backendKey = "backend"
)

// Session builds the session and backend APIs of the request's client
// context and starts restoring the session in the background.
func Session(factory *service.SessionFactory, tokens tokenstore.Factory, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store, err := tokens.ForRequest(c)
			if err != nil {
				log.Error().Err(err).Msg("token store unavailable")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session storage unavailable")
			}

			sess, api := factory.New(store)
			sess.Start(c.Request().Context())
			SetSession(c, sess, api)
			return next(c)
		}
	}
}

// SetSession attaches a session and its backend APIs to c.
func SetSession(c echo.Context, sess ports.Session, api ports.Backend) {
	c.Set(sessionKey, sess)
	c.Set(backendKey, api)
}

// SessionFrom returns the session attached by Session, or nil.
func SessionFrom(c echo.Context) ports.Session {
	sess, _ := c.Get(sessionKey).(ports.Session)
	return sess
}

// BackendFrom returns the backend APIs bound to the request's client context.
func BackendFrom(c echo.Context) ports.Backend {
	api, _ := c.Get(backendKey).(ports.Backend)
	return api
}
