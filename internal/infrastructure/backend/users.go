package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type Users struct {
	client *Client
}

func NewUsers(client *Client) *Users {
	return &Users{client: client}
}

func (u *Users) List(ctx context.Context) domain.Result[[]domain.User] {
	return decodeList[domain.User](u.client.Do(ctx, Request{Path: "/users"}))
}

func (u *Users) Get(ctx context.Context, id string) domain.Result[domain.User] {
	return decodeOne[domain.User](u.client.Do(ctx, Request{Path: "/users/" + url.PathEscape(id)}))
}

func (u *Users) Create(ctx context.Context, in domain.UserInput) domain.Result[domain.User] {
	return decodeOne[domain.User](u.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users",
		Body:   in,
	}))
}

func (u *Users) Update(ctx context.Context, id string, in domain.UserInput) domain.Result[domain.User] {
	return decodeOne[domain.User](u.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/users/" + url.PathEscape(id),
		Body:   in,
	}))
}

func (u *Users) Delete(ctx context.Context, id string) domain.Result[struct{}] {
	return discard(u.client.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/users/" + url.PathEscape(id),
	}))
}
