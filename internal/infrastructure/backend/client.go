// Package backend is the data-access layer for the remote LMS REST API.
//
// Client.Do is the single transport every call goes through. The resource
// types (Auth, Courses, Modules, Lessons, Enrollments, Progress, Users) map one
// REST resource each onto typed methods and always return a domain.Result,
// never a Go error, for expected failures.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/metrics"
	"github.com/coursehub/learning-portal/internal/pkg/correlation"
)

const malformedResponseMessage = "malformed response from server"

// Config captures the settings of the backend connection.
type Config struct {
	BaseURL string
	// Timeout of zero leaves the network stack defaults in place.
	Timeout time.Duration
}

// Request describes one call to the backend. Method defaults to GET.
type Request struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
	File    *File
}

// File is a multipart upload attached to a Request.
type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Client performs authenticated requests against the backend.
// It is safe for concurrent use; WithTokens binds it to a client context.
type Client struct {
	http   *resty.Client
	tokens ports.TokenReader
	log    zerolog.Logger
}

// NewClient builds a Client for the given base URL.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetLogger(restyLogger{log: log})
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	return &Client{http: rc, log: log}
}

// WithTokens returns a copy of c that reads the Credential Token from tokens.
func (c *Client) WithTokens(tokens ports.TokenReader) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Do sends req and normalizes the outcome. Transport failures, non-2xx
// statuses and malformed bodies all come back as a failed Result.
func (c *Client) Do(ctx context.Context, req Request) domain.Result[json.RawMessage] {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	resource := resourceOf(req.Path)
	start := time.Now()

	r := c.http.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if id, ok := correlation.ID(ctx); ok {
		r.SetHeader(correlation.Header, id)
	}
	if req.File != nil {
		r.SetFileReader(req.File.Field, req.File.Name, req.File.Reader)
	} else if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			r.SetHeader("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.Execute(method, req.Path)
	metrics.BackendRequestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(resource, method, "network_error").Inc()
		c.log.Warn().Err(err).Str("method", method).Str("path", req.Path).Msg("backend unreachable")
		return domain.Fail[json.RawMessage](domain.NetworkErrorMessage)
	}

	body := bytes.TrimSpace(resp.Body())
	if !resp.IsSuccess() {
		metrics.BackendRequestsTotal.WithLabelValues(resource, method, "rejected").Inc()
		msg := errorMessage(body)
		c.log.Debug().Int("status", resp.StatusCode()).Str("method", method).Str("path", req.Path).Str("error", msg).Msg("backend rejected request")
		return domain.Fail[json.RawMessage](msg)
	}

	if len(body) == 0 {
		metrics.BackendRequestsTotal.WithLabelValues(resource, method, "ok").Inc()
		return domain.Ok(json.RawMessage("null"))
	}
	if !json.Valid(body) {
		metrics.BackendRequestsTotal.WithLabelValues(resource, method, "malformed").Inc()
		c.log.Warn().Str("method", method).Str("path", req.Path).Msg("backend returned malformed JSON")
		return domain.Fail[json.RawMessage](malformedResponseMessage)
	}

	metrics.BackendRequestsTotal.WithLabelValues(resource, method, "ok").Inc()
	return domain.Ok(json.RawMessage(body))
}

// Ping checks that the backend answers HTTP at all. Any status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.http.R().SetContext(ctx).Head("/")
	return err
}

// errorMessage extracts "message" or "error" from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return domain.DefaultErrorMessage
	}
	if msg := messageOf(payload.Message); msg != "" {
		return msg
	}
	if msg := messageOf(payload.Error); msg != "" {
		return msg
	}
	return domain.DefaultErrorMessage
}

// messageOf accepts either a JSON string or an object with a "message" string.
func messageOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// resourceOf returns the first path segment, used as a low-cardinality metric label.
func resourceOf(path string) string {
	p := strings.TrimLeft(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}

// restyLogger routes resty's internal warnings into zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
