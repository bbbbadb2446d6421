package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type Enrollments struct {
	client *Client
}

func NewEnrollments(client *Client) *Enrollments {
	return &Enrollments{client: client}
}

type enrollRequest struct {
	CourseID string `json:"courseId"`
}

// Mine lists the enrollments of the current identity.
func (e *Enrollments) Mine(ctx context.Context) domain.Result[[]domain.Enrollment] {
	return decodeList[domain.Enrollment](e.client.Do(ctx, Request{Path: "/enrollments/my"}))
}

func (e *Enrollments) ListByCourse(ctx context.Context, courseID string) domain.Result[[]domain.Enrollment] {
	return decodeList[domain.Enrollment](e.client.Do(ctx, Request{Path: "/enrollments/courses/" + url.PathEscape(courseID)}))
}

func (e *Enrollments) Enroll(ctx context.Context, courseID string) domain.Result[domain.Enrollment] {
	return decodeOne[domain.Enrollment](e.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/enrollments",
		Body:   enrollRequest{CourseID: courseID},
	}))
}
