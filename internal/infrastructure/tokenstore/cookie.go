package tokenstore

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/ports"
)

// CookieOptions configures the token cookie.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// CookieFactory builds Cookie stores.
type CookieFactory struct {
	Options CookieOptions
	Now     func() time.Time
}

func NewCookieFactory(opts CookieOptions) *CookieFactory {
	if opts.Name == "" {
		opts.Name = "token"
	}
	return &CookieFactory{Options: opts, Now: time.Now}
}

func (f *CookieFactory) ForRequest(c echo.Context) (ports.TokenStore, error) {
	return NewCookie(c, f.Options, f.Now), nil
}

// Cookie keeps the token in a browser cookie. Reads see the latest write
// immediately; the Set-Cookie header is emitted when the response is
// committed, so the store may be written from a goroutine other than the
// handler's.
type Cookie struct {
	opts CookieOptions
	now  func() time.Time

	mu      sync.Mutex
	token   string
	dirty   bool
	expires time.Time
}

// NewCookie loads the token from the request and registers the flush hook.
func NewCookie(c echo.Context, opts CookieOptions, now func() time.Time) *Cookie {
	if now == nil {
		now = time.Now
	}
	s := &Cookie{opts: opts, now: now}
	if ck, err := c.Cookie(opts.Name); err == nil {
		s.token = ck.Value
	}
	c.Response().Before(func() { s.flush(c) })
	return s
}

func (s *Cookie) Token(context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *Cookie) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expires = expiresAt(token, s.now(), s.opts.TTL)
	s.dirty = true
	return nil
}

func (s *Cookie) ClearToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.dirty = true
	return nil
}

func (s *Cookie) flush(c echo.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	s.dirty = false

	ck := &http.Cookie{
		Name:     s.opts.Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.token == "" {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	} else {
		ck.Value = s.token
		ck.Expires = s.expires
		ck.MaxAge = int(s.expires.Sub(s.now()).Seconds())
		if ck.MaxAge <= 0 {
			ck.MaxAge = -1
		}
	}
	c.SetCookie(ck)
}
