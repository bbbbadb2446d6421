package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_BurstThenThrottle(t *testing.T) {
	l := NewLoginLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "limits are per IP")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("1.1.1.1"), "one token refills per minute")
}

func TestLoginLimiter_CleanupDropsIdleEntries(t *testing.T) {
	l := NewLoginLimiter(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow("1.1.1.1")

	now = now.Add(15 * time.Minute)
	l.Allow("2.2.2.2")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.limiters, "1.1.1.1")
	assert.Contains(t, l.limiters, "2.2.2.2")
}

func TestLoginLimiter_MiddlewareOnlyThrottlesPosts(t *testing.T) {
	l := NewLoginLimiter(1, 1)
	e := echo.New()
	h := l.Middleware("login")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	post := func() error {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		return h(e.NewContext(req, httptest.NewRecorder()))
	}
	assert.NoError(t, post())

	err := post()
	he, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	assert.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))
}
