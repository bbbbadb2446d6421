package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type Progress struct {
	client *Client
}

func NewProgress(client *Client) *Progress {
	return &Progress{client: client}
}

func (p *Progress) Lesson(ctx context.Context, lessonID string) domain.Result[domain.Progress] {
	return decodeOne[domain.Progress](p.client.Do(ctx, Request{Path: "/progress/lesson/" + url.PathEscape(lessonID)}))
}

func (p *Progress) Complete(ctx context.Context, lessonID string) domain.Result[domain.Progress] {
	return decodeOne[domain.Progress](p.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/progress/lesson/" + url.PathEscape(lessonID) + "/complete",
	}))
}

// Course lists the current user's progress records for every lesson of a course.
func (p *Progress) Course(ctx context.Context, courseID string) domain.Result[[]domain.Progress] {
	return decodeList[domain.Progress](p.client.Do(ctx, Request{Path: "/progress/courses/" + url.PathEscape(courseID)}))
}
