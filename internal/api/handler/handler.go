package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/api/middleware"
	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/core/service"
)

// CSRFContextKey is where echo's CSRF middleware stores the token.
const CSRFContextKey = "csrf"

// Handler serves the portal pages. Every page reads the session and the
// backend APIs bound to the request's client context.
type Handler struct {
	catalog *service.CatalogService
	notify  *Notifier
	log     zerolog.Logger
	landing string
}

func New(catalog *service.CatalogService, notify *Notifier, log zerolog.Logger, landing string) *Handler {
	if landing == "" {
		landing = service.DefaultLanding
	}
	return &Handler{catalog: catalog, notify: notify, log: log, landing: landing}
}

func (h *Handler) session(c echo.Context) ports.Session { return middleware.SessionFrom(c) }
func (h *Handler) api(c echo.Context) ports.Backend     { return middleware.BackendFrom(c) }

// identity is the signed-in user. Guarded routes always have one.
func (h *Handler) identity(c echo.Context) *domain.User {
	if sess := h.session(c); sess != nil {
		return sess.Identity()
	}
	return nil
}

func (h *Handler) page(c echo.Context, title string, data any) Page {
	p := Page{Title: title, User: h.identity(c), Data: data}
	p.CSRF, _ = c.Get(CSRFContextKey).(string)
	if h.notify != nil {
		p.Flashes = h.notify.Pop(c)
	}
	return p
}

func (h *Handler) render(c echo.Context, code int, name, title string, data any) error {
	return c.Render(code, name, h.page(c, title, data))
}

// renderError re-renders a form page with an inline error.
func (h *Handler) renderError(c echo.Context, code int, name, title string, data any, msg string) error {
	p := h.page(c, title, data)
	p.Error = msg
	return c.Render(code, name, p)
}

// redirect answers a form POST with a 303 to target.
func redirect(c echo.Context, target string) error {
	return c.Redirect(http.StatusSeeOther, target)
}

// notFound turns a failed primary read into a 404 carrying the backend message.
func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return echo.NewHTTPError(http.StatusNotFound, apiErr.Message)
	}
	return err
}

// flashResult reports the outcome of a mutating action on the next page.
func (h *Handler) flashResult(c echo.Context, ok bool, errMsg, successMsg string) {
	if ok {
		h.notify.Success(c, successMsg)
		return
	}
	h.notify.Error(c, errMsg)
}
