package api

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/api/handler"
	"github.com/coursehub/learning-portal/internal/api/middleware"
	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/service"
	"github.com/coursehub/learning-portal/internal/infrastructure/tokenstore"
	"github.com/coursehub/learning-portal/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	Log      zerolog.Logger
	Sessions *service.SessionFactory
	Tokens   tokenstore.Factory
	Catalog  *service.CatalogService
	// Cookies signs the flash session.
	Cookies      sessions.Store
	Guards       middleware.GuardConfig
	LoginLimiter *middleware.LoginLimiter
	Health       map[string]handler.Pinger

	// DisableCSRF turns off CSRF checks; tests post forms directly.
	DisableCSRF  bool
	SecureCookie bool

	// Registerer and Gatherer default to a private registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := handler.NewRenderer(web.Templates)
	if err != nil {
		return nil, err
	}
	if d.Guards.Landing == "" {
		d.Guards.Landing = service.DefaultLanding
	}
	if d.Registerer == nil || d.Gatherer == nil {
		reg := prometheus.NewRegistry()
		d.Registerer, d.Gatherer = reg, reg
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Correlation())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         63072000,
		ContentSecurityPolicy: "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"media-src *; img-src * data:; " +
			"frame-ancestors 'none'",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes and metrics (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))

	// --- Pages ---
	h := handler.New(d.Catalog, handler.NewNotifier(d.Cookies, d.Log), d.Log, d.Guards.Landing)
	guards := middleware.NewGuards(d.Guards)
	limiter := d.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewLoginLimiter(5, 10)
	}

	pages := e.Group("", middleware.Session(d.Sessions, d.Tokens, d.Log))
	if !d.DisableCSRF {
		pages.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			TokenLookup:    "form:_csrf,header:X-CSRF-Token",
			ContextKey:     handler.CSRFContextKey,
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   d.SecureCookie,
			CookieSameSite: http.SameSiteStrictMode,
		}))
	}

	guest := pages.Group("", guards.RedirectIfAuthenticated())
	guest.GET("/", h.Home)
	guest.GET("/login", h.LoginPage)
	guest.POST("/login", h.Login, limiter.Middleware("login"))
	guest.GET("/register", h.RegisterPage)
	guest.POST("/register", h.Register, limiter.Middleware("register"))
	pages.POST("/logout", h.Logout)

	authed := pages.Group("", guards.RequireAuth())
	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/courses", h.Courses)
	authed.GET("/courses/my", h.MyCourses)
	authed.GET("/courses/:id", h.Course)
	authed.POST("/courses/:id/enroll", h.Enroll)
	authed.GET("/courses/:id/modules/:moduleId/lessons/:lessonId", h.Lesson)
	authed.POST("/courses/:id/modules/:moduleId/lessons/:lessonId/complete", h.CompleteLesson)
	authed.GET("/profile", h.Profile)
	authed.POST("/profile", h.UpdateProfile)
	authed.POST("/profile/delete", h.DeleteAccount)

	admin := pages.Group("/admin", guards.RequireRole(domain.RoleAdmin))
	admin.GET("", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/admin/courses") })
	admin.GET("/courses", h.AdminCourses)
	admin.POST("/courses", h.AdminCreateCourse)
	admin.GET("/courses/:id", h.AdminCourse)
	admin.POST("/courses/:id", h.AdminUpdateCourse)
	admin.POST("/courses/:id/delete", h.AdminDeleteCourse)
	admin.POST("/courses/:id/modules", h.AdminCreateModule)
	admin.GET("/courses/:id/modules/:moduleId", h.AdminModule)
	admin.POST("/courses/:id/modules/:moduleId", h.AdminUpdateModule)
	admin.POST("/courses/:id/modules/:moduleId/delete", h.AdminDeleteModule)
	admin.POST("/courses/:id/modules/:moduleId/lessons", h.AdminCreateLesson)
	admin.GET("/courses/:id/modules/:moduleId/lessons/:lessonId", h.AdminLesson)
	admin.POST("/courses/:id/modules/:moduleId/lessons/:lessonId", h.AdminUpdateLesson)
	admin.POST("/courses/:id/modules/:moduleId/lessons/:lessonId/delete", h.AdminDeleteLesson)
	admin.POST("/courses/:id/modules/:moduleId/lessons/:lessonId/video", h.AdminUploadVideo)
	admin.GET("/users", h.AdminUsers)
	admin.POST("/users", h.AdminCreateUser)
	admin.POST("/users/:id/role", h.AdminUpdateRole)
	admin.POST("/users/:id/delete", h.AdminDeleteUser)

	return e, nil
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
