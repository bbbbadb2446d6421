package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/pkg/correlation"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, zerolog.Nop())
}

func TestDo_SuccessReturnsRawBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/courses", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"c1"}]`))
	})

	res := c.Do(context.Background(), Request{Path: "/courses"})

	data, ok := res.Data()
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"c1"}]`, string(data))
	assert.Empty(t, res.Err())
}

func TestDo_EmptyBodyIsNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/courses/c1"})

	data, ok := res.Data()
	require.True(t, ok)
	assert.Equal(t, "null", string(data))
}

func TestDo_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"error field", `{"error":"Course not found"}`, "Course not found"},
		{"nested error object", `{"error":{"message":"Forbidden"}}`, "Forbidden"},
		{"message wins over error", `{"message":"first","error":"second"}`, "first"},
		{"no usable field", `{"status":500}`, domain.DefaultErrorMessage},
		{"not json", `<html>oops</html>`, domain.DefaultErrorMessage},
		{"empty body", ``, domain.DefaultErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})

			res := c.Do(context.Background(), Request{Path: "/x"})

			assert.False(t, res.OK())
			assert.Equal(t, tt.want, res.Err())
		})
	}
}

func TestDo_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})

	res := c.Do(context.Background(), Request{Path: "/courses/c1"})

	assert.False(t, res.OK())
	assert.Equal(t, malformedResponseMessage, res.Err())
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := NewClient(Config{BaseURL: url}, zerolog.Nop())

	res := c.Do(context.Background(), Request{Path: "/courses"})

	assert.False(t, res.OK())
	assert.Equal(t, domain.NetworkErrorMessage, res.Err())
}

func TestDo_Headers(t *testing.T) {
	var got http.Header
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{}`))
	})
	c = c.WithTokens(staticTokens("tok-123"))
	ctx := correlation.WithID(context.Background(), "req-1")

	res := c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    "/courses",
		Body:    map[string]string{"title": "Go"},
		Headers: map[string]string{"Authorization": "Bearer spoofed", "X-Extra": "1"},
	})

	require.True(t, res.OK())
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"), "credential header must not be overridable")
	assert.Equal(t, "1", got.Get("X-Extra"))
	assert.Equal(t, "req-1", got.Get(correlation.Header))
	assert.True(t, strings.HasPrefix(got.Get("Content-Type"), "application/json"))
	assert.JSONEq(t, `{"title":"Go"}`, body)
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	res := c.WithTokens(staticTokens("")).Do(context.Background(), Request{Path: "/courses"})

	require.True(t, res.OK())
	assert.Empty(t, auth)
}

func TestDo_MultipartUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, fh, err := r.FormFile("video")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		_ = json.NewEncoder(w).Encode(map[string]string{"name": fh.Filename, "content": string(content)})
	})

	res := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/lessons/l1/video",
		File:   &File{Field: "video", Name: "intro.mp4", Reader: strings.NewReader("frames")},
	})

	data, ok := res.Data()
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"intro.mp4","content":"frames"}`, string(data))
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "courses", resourceOf("/courses/c1"))
	assert.Equal(t, "users", resourceOf("users/me"))
	assert.Equal(t, "progress", resourceOf("/progress?x=1"))
	assert.Equal(t, "root", resourceOf("/"))
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, c.Ping(context.Background()))

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	down := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())
	assert.Error(t, down.Ping(context.Background()))
}
