package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// Profile shows the account as the backend knows it, falling back to the
// session identity.
func (h *Handler) Profile(c echo.Context) error {
	me := h.identity(c)
	user := h.api(c).Users.Get(c.Request().Context(), me.ID).Or(*me)
	return h.render(c, http.StatusOK, "profile", "Profile", user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	me := h.identity(c)
	var form profileForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, "/profile")
	}

	res := h.api(c).Users.Update(c.Request().Context(), me.ID, domain.UserInput{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
	h.flashResult(c, res.OK(), res.Err(), "Profile updated.")
	return redirect(c, "/profile")
}

// DeleteAccount removes the account and ends the session.
func (h *Handler) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()
	res := h.api(c).Users.Delete(ctx, h.identity(c).ID)
	if !res.OK() {
		h.notify.Error(c, res.Err())
		return redirect(c, "/profile")
	}
	if out := h.session(c).Logout(ctx); !out.Success {
		h.log.Warn().Str("error", out.Error).Msg("logout after account deletion did not clear the stored token")
	}
	h.notify.Success(c, "Your account has been deleted.")
	return redirect(c, "/login")
}
