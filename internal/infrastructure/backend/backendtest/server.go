// Package backendtest runs an in-memory LMS backend for tests. It speaks the
// same REST contract as the real backend, issues HS256 tokens and stores
// bcrypt password hashes, and lets tests inject failures per route.
package backendtest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// BasePath is the prefix every backend route is mounted under.
const BasePath = "/api"

type account struct {
	user domain.User
	hash []byte
}

type failure struct {
	status int
	body   string
}

// Server is a running fake backend. Use URL() as the API base URL.
type Server struct {
	srv    *httptest.Server
	secret []byte

	mu          sync.Mutex
	seq         int
	accounts    map[string]*account
	courses     map[string]domain.Course
	modules     map[string]domain.Module
	lessons     map[string]domain.Lesson
	enrollments map[string]domain.Enrollment
	progress    map[string]domain.Progress
	failures    map[string]failure
	calls       map[string]int
	tokens      []string
	wrapLists   bool
	reverse     bool
	meDelay     time.Duration
}

// New starts a fake backend and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:      []byte("backendtest-secret"),
		accounts:    make(map[string]*account),
		courses:     make(map[string]domain.Course),
		modules:     make(map[string]domain.Module),
		lessons:     make(map[string]domain.Lesson),
		enrollments: make(map[string]domain.Enrollment),
		progress:    make(map[string]domain.Progress),
		failures:    make(map[string]failure),
		calls:       make(map[string]int),
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the base URL including BasePath.
func (s *Server) URL() string { return s.srv.URL + BasePath }

// WrapLists makes list endpoints answer {"data": [...]} instead of a bare array.
func (s *Server) WrapLists(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapLists = on
}

// ReverseLists makes list endpoints answer in reverse order, like a backend
// that does not sort by Order.
func (s *Server) ReverseLists(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reverse = on
}

// DelayMe slows down GET /users/me, keeping sessions in the restoring state.
func (s *Server) DelayMe(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meDelay = d
}

// Fail makes every request matching "METHOD /path" (path without BasePath)
// answer with status and a raw body.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: body}
}

// Calls reports how many requests hit "METHOD /path".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls reports the number of requests received on any route.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// BearerTokens returns every bearer token presented so far, in order.
func (s *Server) BearerTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens...)
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string, role domain.Role) domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: s.nextID("u"), Name: name, Email: email, Role: role, CreatedAt: time.Now().UTC()}
	s.accounts[u.ID] = &account{user: u, hash: hash}
	return u
}

// Token issues a token for userID that expires after ttl.
func (s *Server) Token(userID string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// AddCourse stores c with a generated id when c.ID is empty.
func (s *Server) AddCourse(c domain.Course) domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.nextID("c")
	}
	c.Modules = nil
	s.courses[c.ID] = c
	return c
}

func (s *Server) AddModule(m domain.Module) domain.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = s.nextID("m")
	}
	m.Lessons = nil
	s.modules[m.ID] = m
	return m
}

func (s *Server) AddLesson(l domain.Lesson) domain.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = s.nextID("l")
	}
	s.lessons[l.ID] = l
	return l
}

func (s *Server) AddEnrollment(userID, courseID string) domain.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enroll(userID, courseID)
}

// Completed reports whether userID completed lessonID.
func (s *Server) Completed(userID, lessonID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[userID+"/"+lessonID]
	return ok && p.Completed
}

// HasCourse reports whether a course with id exists.
func (s *Server) HasCourse(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.courses[id]
	return ok
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return prefix + strconv.Itoa(s.seq)
}

func (s *Server) enroll(userID, courseID string) domain.Enrollment {
	for _, e := range s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e
		}
	}
	e := domain.Enrollment{ID: s.nextID("e"), UserID: userID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
	s.enrollments[e.ID] = e
	return e
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		_ = c.JSON(code, map[string]string{"message": msg})
	}

	api := e.Group(BasePath, s.record)
	api.POST("/users/login", s.login)
	api.POST("/users/register", s.register)

	authed := api.Group("", s.authenticate)
	authed.GET("/users/me", s.me)
	authed.GET("/users", s.listUsers)
	authed.POST("/users", s.createUser)
	authed.GET("/users/:id", s.getUser)
	authed.PUT("/users/:id", s.updateUser)
	authed.DELETE("/users/:id", s.deleteUser)

	authed.GET("/courses", s.listCourses)
	authed.POST("/courses", s.createCourse)
	authed.GET("/courses/:id", s.getCourse)
	authed.PUT("/courses/:id", s.updateCourse)
	authed.DELETE("/courses/:id", s.deleteCourse)

	authed.GET("/modules/course/:id", s.listModules)
	authed.POST("/modules", s.createModule)
	authed.PUT("/modules/:id", s.updateModule)
	authed.DELETE("/modules/:id", s.deleteModule)

	authed.GET("/lessons/module/:id", s.listLessons)
	authed.POST("/lessons", s.createLesson)
	authed.PUT("/lessons/:id", s.updateLesson)
	authed.DELETE("/lessons/:id", s.deleteLesson)
	authed.POST("/lessons/:id/video", s.uploadVideo)

	authed.GET("/enrollments/my", s.myEnrollments)
	authed.GET("/enrollments/courses/:id", s.courseEnrollments)
	authed.POST("/enrollments", s.createEnrollment)

	authed.GET("/progress/lesson/:id", s.lessonProgress)
	authed.POST("/progress/lesson/:id/complete", s.completeLesson)
	authed.GET("/progress/courses/:id", s.courseProgress)
	return e
}

// record counts calls and applies injected failures.
func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Request().Method + " " + strings.TrimPrefix(c.Request().URL.Path, BasePath)
		s.mu.Lock()
		s.calls[route]++
		if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			s.tokens = append(s.tokens, strings.TrimPrefix(h, "Bearer "))
		}
		f, failing := s.failures[route]
		s.mu.Unlock()

		if failing {
			return c.Blob(f.status, echo.MIMEApplicationJSON, []byte(f.body))
		}
		return next(c)
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		s.mu.Lock()
		acc, ok := s.accounts[claims.Subject]
		s.mu.Unlock()
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		c.Set("user", acc.user)
		return next(c)
	}
}

func currentUser(c echo.Context) domain.User {
	u, _ := c.Get("user").(domain.User)
	return u
}

func adminOnly(c echo.Context) error {
	if currentUser(c).Role != domain.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	return nil
}

func (s *Server) list(c echo.Context, v any) error {
	s.mu.Lock()
	wrap, reverse := s.wrapLists, s.reverse
	s.mu.Unlock()
	if reverse {
		rv := reflect.ValueOf(v)
		swap := reflect.Swapper(v)
		for i, j := 0, rv.Len()-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
	if wrap {
		return c.JSON(http.StatusOK, map[string]any{"data": v})
	}
	return c.JSON(http.StatusOK, v)
}
