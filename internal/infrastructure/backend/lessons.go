package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// videoField is the multipart field the backend reads the upload from.
const videoField = "video"

type Lessons struct {
	client *Client
}

func NewLessons(client *Client) *Lessons {
	return &Lessons{client: client}
}

func (l *Lessons) ListByModule(ctx context.Context, moduleID string) domain.Result[[]domain.Lesson] {
	return decodeList[domain.Lesson](l.client.Do(ctx, Request{Path: "/lessons/module/" + url.PathEscape(moduleID)}))
}

func (l *Lessons) Create(ctx context.Context, in domain.LessonInput) domain.Result[domain.Lesson] {
	return decodeOne[domain.Lesson](l.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/lessons",
		Body:   in,
	}))
}

func (l *Lessons) Update(ctx context.Context, id string, in domain.LessonInput) domain.Result[domain.Lesson] {
	return decodeOne[domain.Lesson](l.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/lessons/" + url.PathEscape(id),
		Body:   in,
	}))
}

func (l *Lessons) Delete(ctx context.Context, id string) domain.Result[struct{}] {
	return discard(l.client.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/lessons/" + url.PathEscape(id),
	}))
}

// UploadVideo attaches a video file to a lesson as a multipart upload.
func (l *Lessons) UploadVideo(ctx context.Context, id, filename string, video io.Reader) domain.Result[domain.Lesson] {
	return decodeOne[domain.Lesson](l.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/lessons/" + url.PathEscape(id) + "/video",
		File:   &File{Field: videoField, Name: filename, Reader: video},
	}))
}
