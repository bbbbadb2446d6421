package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/service"
)

type loginView struct {
	Email    string
	Redirect string
}

type registerView struct {
	Name  string
	Email string
}

// Home renders the public landing page.
func (h *Handler) Home(c echo.Context) error {
	return h.render(c, http.StatusOK, "home", "", nil)
}

// LoginPage renders the login form, keeping the redirect target the guard
// attached.
func (h *Handler) LoginPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "login", "Log in", loginView{Redirect: c.QueryParam("redirect")})
}

// Login signs in and sends the user to the safe redirect target, or to the
// landing page. A rejected attempt stays on the login page with the error.
func (h *Handler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.Email = strings.TrimSpace(form.Email)
	view := loginView{Email: form.Email, Redirect: form.Redirect}
	if err := c.Validate(&form); err != nil {
		return h.renderError(c, http.StatusUnprocessableEntity, "login", "Log in", view, err.Error())
	}

	out := h.session(c).Login(c.Request().Context(), form.Email, form.Password)
	if !out.Success {
		return h.renderError(c, http.StatusUnauthorized, "login", "Log in", view, out.Error)
	}
	return redirect(c, service.RedirectTarget(form.Redirect, h.landing))
}

func (h *Handler) RegisterPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", "Register", registerView{})
}

// Register creates a student account and signs it in.
func (h *Handler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	view := registerView{Name: form.Name, Email: form.Email}
	if err := c.Validate(&form); err != nil {
		return h.renderError(c, http.StatusUnprocessableEntity, "register", "Register", view, err.Error())
	}

	out := h.session(c).Register(c.Request().Context(), form.Name, form.Email, form.Password)
	if !out.Success {
		return h.renderError(c, http.StatusUnprocessableEntity, "register", "Register", view, out.Error)
	}
	h.notify.Success(c, "Welcome, "+form.Name+"!")
	return redirect(c, h.landing)
}

// Logout clears the session and goes to the login page.
func (h *Handler) Logout(c echo.Context) error {
	if out := h.session(c).Logout(c.Request().Context()); !out.Success {
		h.log.Warn().Str("error", out.Error).Msg("logout did not clear the stored token")
	}
	return redirect(c, "/login")
}
