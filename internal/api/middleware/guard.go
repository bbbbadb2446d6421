package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/metrics"
)

const loadingPage = `<!doctype html><html><head><meta charset="utf-8"><title>Loading…</title></head>` +
	`<body><p class="loading">Loading…</p></body></html>`

// GuardConfig configures the access guards.
type GuardConfig struct {
	// RestoreWait is how long a guard waits for session restoration before
	// answering with the loading page.
	RestoreWait time.Duration
	LoginPath   string
	Landing     string
}

// Guards decide access from the public session surface only.
type Guards struct {
	cfg GuardConfig
}

func NewGuards(cfg GuardConfig) *Guards {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Landing == "" {
		cfg.Landing = "/dashboard"
	}
	return &Guards{cfg: cfg}
}

// RequireAuth lets the request through only with an identity. Without one it
// redirects to the login page carrying the original request URI.
func (g *Guards) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if !g.settle(c, sess) {
				return g.loading(c, "auth")
			}
			if sess.Identity() == nil {
				return g.toLogin(c, "auth")
			}
			metrics.GuardDecisionsTotal.WithLabelValues("auth", "allow").Inc()
			return next(c)
		}
	}
}

// RequireRole additionally requires one of roles. An identity with another
// role goes to the landing page, never to the login page.
func (g *Guards) RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if !g.settle(c, sess) {
				return g.loading(c, "role")
			}
			user := sess.Identity()
			if user == nil {
				return g.toLogin(c, "role")
			}
			if _, ok := allowed[user.Role]; !ok {
				metrics.GuardDecisionsTotal.WithLabelValues("role", "landing").Inc()
				return c.Redirect(http.StatusFound, g.cfg.Landing)
			}
			metrics.GuardDecisionsTotal.WithLabelValues("role", "allow").Inc()
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends signed-in users from guest pages (landing,
// login, register) to the landing page.
func (g *Guards) RedirectIfAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if g.settle(c, sess) && sess.Identity() != nil {
				metrics.GuardDecisionsTotal.WithLabelValues("guest", "landing").Inc()
				return c.Redirect(http.StatusFound, g.cfg.Landing)
			}
			metrics.GuardDecisionsTotal.WithLabelValues("guest", "allow").Inc()
			return next(c)
		}
	}
}

// settle waits for restoration up to RestoreWait and reports whether the
// session left the restoring state.
func (g *Guards) settle(c echo.Context, sess ports.Session) bool {
	if sess == nil {
		return false
	}
	if !sess.IsRestoring() {
		return true
	}

	timer := time.NewTimer(g.cfg.RestoreWait)
	defer timer.Stop()
	select {
	case <-sess.Ready():
	case <-timer.C:
	case <-c.Request().Context().Done():
	}
	return !sess.IsRestoring()
}

// loading renders a neutral page that reloads itself; no access decision is
// made while the session is still restoring.
func (g *Guards) loading(c echo.Context, guard string) error {
	metrics.GuardDecisionsTotal.WithLabelValues(guard, "wait").Inc()
	h := c.Response().Header()
	h.Set("Refresh", "1")
	h.Set(echo.HeaderCacheControl, "no-store")
	return c.HTML(http.StatusOK, loadingPage)
}

func (g *Guards) toLogin(c echo.Context, guard string) error {
	metrics.GuardDecisionsTotal.WithLabelValues(guard, "login").Inc()
	return c.Redirect(http.StatusFound, g.cfg.LoginPath+"?redirect="+url.QueryEscape(c.Request().RequestURI))
}
