package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type Modules struct {
	client *Client
}

func NewModules(client *Client) *Modules {
	return &Modules{client: client}
}

func (m *Modules) ListByCourse(ctx context.Context, courseID string) domain.Result[[]domain.Module] {
	return decodeList[domain.Module](m.client.Do(ctx, Request{Path: "/modules/course/" + url.PathEscape(courseID)}))
}

func (m *Modules) Create(ctx context.Context, in domain.ModuleInput) domain.Result[domain.Module] {
	return decodeOne[domain.Module](m.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/modules",
		Body:   in,
	}))
}

func (m *Modules) Update(ctx context.Context, id string, in domain.ModuleInput) domain.Result[domain.Module] {
	return decodeOne[domain.Module](m.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/modules/" + url.PathEscape(id),
		Body:   in,
	}))
}

func (m *Modules) Delete(ctx context.Context, id string) domain.Result[struct{}] {
	return discard(m.client.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/modules/" + url.PathEscape(id),
	}))
}
