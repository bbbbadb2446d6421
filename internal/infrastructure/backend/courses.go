package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type Courses struct {
	client *Client
}

func NewCourses(client *Client) *Courses {
	return &Courses{client: client}
}

func (c *Courses) List(ctx context.Context) domain.Result[[]domain.Course] {
	return decodeList[domain.Course](c.client.Do(ctx, Request{Path: "/courses"}))
}

func (c *Courses) Get(ctx context.Context, id string) domain.Result[domain.Course] {
	return decodeOne[domain.Course](c.client.Do(ctx, Request{Path: "/courses/" + url.PathEscape(id)}))
}

func (c *Courses) Create(ctx context.Context, in domain.CourseInput) domain.Result[domain.Course] {
	return decodeOne[domain.Course](c.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/courses",
		Body:   in,
	}))
}

func (c *Courses) Update(ctx context.Context, id string, in domain.CourseInput) domain.Result[domain.Course] {
	return decodeOne[domain.Course](c.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/courses/" + url.PathEscape(id),
		Body:   in,
	}))
}

func (c *Courses) Delete(ctx context.Context, id string) domain.Result[struct{}] {
	return discard(c.client.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/courses/" + url.PathEscape(id),
	}))
}
