package backend

import (
	"context"
	"net/http"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// Auth maps the /users authentication endpoints.
type Auth struct {
	client *Client
}

func NewAuth(client *Client) *Auth {
	return &Auth{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (a *Auth) Login(ctx context.Context, email, password string) domain.Result[domain.AuthResult] {
	return decodeAuth(a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users/login",
		Body:   loginRequest{Email: email, Password: password},
	}))
}

// Register creates an account. An empty role registers a student.
func (a *Auth) Register(ctx context.Context, name, email, password string, role domain.Role) domain.Result[domain.AuthResult] {
	if role == "" {
		role = domain.RoleStudent
	}
	return decodeAuth(a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users/register",
		Body:   registerRequest{Name: name, Email: email, Password: password, Role: role},
	}))
}

// Me returns the identity the current token belongs to.
func (a *Auth) Me(ctx context.Context) domain.Result[domain.User] {
	return decodeOne[domain.User](a.client.Do(ctx, Request{Path: "/users/me"}))
}
