package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
)

// stubSession exposes a fixed state through ports.Session.
type stubSession struct {
	mu        sync.Mutex
	user      *domain.User
	restoring bool
	ready     chan struct{}
}

func newStubSession(user *domain.User) *stubSession {
	ready := make(chan struct{})
	close(ready)
	return &stubSession{user: user, ready: ready}
}

func (s *stubSession) Identity() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *stubSession) IsRestoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoring
}

func (s *stubSession) Ready() <-chan struct{} { return s.ready }
func (s *stubSession) Login(context.Context, string, string) domain.AuthOutcome {
	return domain.AuthOutcome{}
}
func (s *stubSession) Register(context.Context, string, string, string) domain.AuthOutcome {
	return domain.AuthOutcome{}
}
func (s *stubSession) Logout(context.Context) domain.AuthOutcome { return domain.AuthOutcome{} }

func run(t *testing.T, mw echo.MiddlewareFunc, sess ports.Session, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetSession(c, sess, ports.Backend{})

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "page content")
	})
	require.NoError(t, h(c))
	return rec, called
}

var (
	admin   = &domain.User{ID: "a1", Role: domain.RoleAdmin}
	student = &domain.User{ID: "s1", Role: domain.RoleStudent}
)

func TestRequireAuth_AllowsIdentity(t *testing.T) {
	g := NewGuards(GuardConfig{})

	rec, called := run(t, g.RequireAuth(), newStubSession(student), "/dashboard")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_RedirectsToLoginWithOriginalURI(t *testing.T) {
	g := NewGuards(GuardConfig{})

	rec, called := run(t, g.RequireAuth(), newStubSession(nil), "/courses/my?foo=1")

	assert.False(t, called)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fcourses%2Fmy%3Ffoo%3D1", rec.Header().Get(echo.HeaderLocation))
	assert.NotContains(t, rec.Body.String(), "page content")
}

func TestRequireRole_WrongRoleGoesToLanding(t *testing.T) {
	g := NewGuards(GuardConfig{})

	rec, called := run(t, g.RequireRole(domain.RoleAdmin), newStubSession(student), "/admin/courses")

	assert.False(t, called)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireRole_NoIdentityGoesToLogin(t *testing.T) {
	g := NewGuards(GuardConfig{})

	rec, called := run(t, g.RequireRole(domain.RoleAdmin), newStubSession(nil), "/admin")

	assert.False(t, called)
	assert.Equal(t, "/login?redirect=%2Fadmin", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireRole_AllowsAnyListedRole(t *testing.T) {
	g := NewGuards(GuardConfig{})
	mw := g.RequireRole(domain.RoleAdmin, domain.RoleStudent)

	_, calledAdmin := run(t, mw, newStubSession(admin), "/x")
	_, calledStudent := run(t, mw, newStubSession(student), "/x")

	assert.True(t, calledAdmin)
	assert.True(t, calledStudent)
}

func TestGuards_RestoringRendersLoadingPage(t *testing.T) {
	g := NewGuards(GuardConfig{RestoreWait: 10 * time.Millisecond})
	sess := &stubSession{restoring: true, ready: make(chan struct{})}

	for _, mw := range []echo.MiddlewareFunc{g.RequireAuth(), g.RequireRole(domain.RoleAdmin)} {
		rec, called := run(t, mw, sess, "/dashboard")

		assert.False(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderLocation), "no redirect decision while restoring")
		assert.Equal(t, "1", rec.Header().Get("Refresh"))
		assert.Contains(t, rec.Body.String(), "Loading")
	}
}

func TestGuards_WaitsForRestoration(t *testing.T) {
	g := NewGuards(GuardConfig{RestoreWait: 2 * time.Second})
	sess := &stubSession{restoring: true, ready: make(chan struct{})}
	go func() {
		time.Sleep(20 * time.Millisecond)
		sess.mu.Lock()
		sess.user = student
		sess.restoring = false
		sess.mu.Unlock()
		close(sess.ready)
	}()

	_, called := run(t, g.RequireAuth(), sess, "/dashboard")

	assert.True(t, called)
}

func TestRedirectIfAuthenticated(t *testing.T) {
	g := NewGuards(GuardConfig{})

	rec, called := run(t, g.RedirectIfAuthenticated(), newStubSession(student), "/login")
	assert.False(t, called)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

	_, called = run(t, g.RedirectIfAuthenticated(), newStubSession(nil), "/login")
	assert.True(t, called)
}
