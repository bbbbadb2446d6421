package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

func (h *Handler) AdminUsers(c echo.Context) error {
	res := h.api(c).Users.List(c.Request().Context())
	p := h.page(c, "Manage users", res.Or([]domain.User{}))
	p.Error = res.Err()
	return c.Render(http.StatusOK, "admin_users", p)
}

func (h *Handler) AdminCreateUser(c echo.Context) error {
	var form userForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, "/admin/users")
	}
	res := h.api(c).Users.Create(c.Request().Context(), domain.UserInput{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Role:     domain.Role(form.Role),
	})
	h.flashResult(c, res.OK(), res.Err(), "User created.")
	return redirect(c, "/admin/users")
}

func (h *Handler) AdminUpdateRole(c echo.Context) error {
	var form roleForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, "/admin/users")
	}
	res := h.api(c).Users.Update(c.Request().Context(), c.Param("id"), domain.UserInput{Role: domain.Role(form.Role)})
	h.flashResult(c, res.OK(), res.Err(), "Role updated.")
	return redirect(c, "/admin/users")
}

// AdminDeleteUser removes another account. Admins delete their own account
// from the profile page.
func (h *Handler) AdminDeleteUser(c echo.Context) error {
	id := c.Param("id")
	if me := h.identity(c); me != nil && me.ID == id {
		h.notify.Error(c, "Use your profile page to delete your own account.")
		return redirect(c, "/admin/users")
	}
	res := h.api(c).Users.Delete(c.Request().Context(), id)
	h.flashResult(c, res.OK(), res.Err(), "User deleted.")
	return redirect(c, "/admin/users")
}
