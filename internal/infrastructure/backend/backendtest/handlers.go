package backendtest

import (
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type credentials struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

const tokenTTL = 24 * time.Hour

func (s *Server) login(c echo.Context) error {
	var in credentials
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	var found *account
	for _, acc := range s.accounts {
		if acc.user.Email == in.Email {
			found = acc
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(in.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	return c.JSON(http.StatusOK, authResponse{Token: s.Token(found.user.ID, tokenTTL), User: found.user})
}

func (s *Server) register(c echo.Context) error {
	var in credentials
	if err := c.Bind(&in); err != nil || in.Email == "" || in.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if s.emailTaken(in.Email, "") {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	}
	if !in.Role.Valid() {
		in.Role = domain.RoleStudent
	}
	u := s.AddUser(in.Name, in.Email, in.Password, in.Role)
	return c.JSON(http.StatusCreated, authResponse{Token: s.Token(u.ID, tokenTTL), User: u})
}

func (s *Server) emailTaken(email, exceptID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, acc := range s.accounts {
		if id != exceptID && acc.user.Email == email {
			return true
		}
	}
	return false
}

func (s *Server) me(c echo.Context) error {
	s.mu.Lock()
	d := s.meDelay
	s.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}
	return c.JSON(http.StatusOK, currentUser(c))
}

// ── users ─────────────────────────────────────────────────────────────────────

func (s *Server) listUsers(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	s.mu.Lock()
	users := make([]domain.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return s.list(c, users)
}

func (s *Server) getUser(c echo.Context) error {
	id := c.Param("id")
	if me := currentUser(c); me.ID != id && me.Role != domain.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	s.mu.Lock()
	acc, ok := s.accounts[id]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, acc.user)
}

func (s *Server) createUser(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in credentials
	if err := c.Bind(&in); err != nil || in.Email == "" || in.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if s.emailTaken(in.Email, "") {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	}
	if !in.Role.Valid() {
		in.Role = domain.RoleStudent
	}
	return c.JSON(http.StatusCreated, s.AddUser(in.Name, in.Email, in.Password, in.Role))
}

func (s *Server) updateUser(c echo.Context) error {
	id := c.Param("id")
	me := currentUser(c)
	if me.ID != id && me.Role != domain.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	var in credentials
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if in.Email != "" && s.emailTaken(in.Email, id) {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if in.Name != "" {
		acc.user.Name = in.Name
	}
	if in.Email != "" {
		acc.user.Email = in.Email
	}
	if in.Role.Valid() && me.Role == domain.RoleAdmin {
		acc.user.Role = in.Role
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		acc.hash = hash
	}
	return c.JSON(http.StatusOK, acc.user)
}

func (s *Server) deleteUser(c echo.Context) error {
	id := c.Param("id")
	if me := currentUser(c); me.ID != id && me.Role != domain.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	delete(s.accounts, id)
	return c.NoContent(http.StatusNoContent)
}

// ── courses ───────────────────────────────────────────────────────────────────

func (s *Server) listCourses(c echo.Context) error {
	s.mu.Lock()
	courses := make([]domain.Course, 0, len(s.courses))
	for _, course := range s.courses {
		courses = append(courses, course)
	}
	s.mu.Unlock()
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return s.list(c, courses)
}

func (s *Server) getCourse(c echo.Context) error {
	s.mu.Lock()
	course, ok := s.courses[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Course not found")
	}
	return c.JSON(http.StatusOK, course)
}

func (s *Server) createCourse(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in domain.CourseInput
	if err := c.Bind(&in); err != nil || in.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	}
	course := s.AddCourse(domain.Course{Title: in.Title, Description: in.Description, ImageURL: in.ImageURL})
	return c.JSON(http.StatusCreated, course)
}

func (s *Server) updateCourse(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in domain.CourseInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Course not found")
	}
	course.Title, course.Description, course.ImageURL = in.Title, in.Description, in.ImageURL
	s.courses[course.ID] = course
	return c.JSON(http.StatusOK, course)
}

func (s *Server) deleteCourse(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.courses[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Course not found")
	}
	delete(s.courses, id)
	return c.NoContent(http.StatusNoContent)
}

// ── modules ───────────────────────────────────────────────────────────────────

func (s *Server) listModules(c echo.Context) error {
	courseID := c.Param("id")
	s.mu.Lock()
	modules := []domain.Module{}
	for _, m := range s.modules {
		if m.CourseID == courseID {
			modules = append(modules, m)
		}
	}
	s.mu.Unlock()
	sort.Slice(modules, func(i, j int) bool { return modules[i].Order < modules[j].Order })
	return s.list(c, modules)
}

func (s *Server) createModule(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in domain.ModuleInput
	if err := c.Bind(&in); err != nil || in.Title == "" || in.CourseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and courseId are required")
	}
	m := s.AddModule(domain.Module{Title: in.Title, CourseID: in.CourseID, Order: in.Order})
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) updateModule(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in domain.ModuleInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Module not found")
	}
	m.Title, m.Order = in.Title, in.Order
	s.modules[m.ID] = m
	return c.JSON(http.StatusOK, m)
}

func (s *Server) deleteModule(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.modules[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Module not found")
	}
	delete(s.modules, id)
	return c.NoContent(http.StatusNoContent)
}

// ── lessons ───────────────────────────────────────────────────────────────────

func (s *Server) listLessons(c echo.Context) error {
	moduleID := c.Param("id")
	s.mu.Lock()
	lessons := []domain.Lesson{}
	for _, l := range s.lessons {
		if l.ModuleID == moduleID {
			lessons = append(lessons, l)
		}
	}
	s.mu.Unlock()
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return s.list(c, lessons)
}

func (s *Server) createLesson(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in domain.LessonInput
	if err := c.Bind(&in); err != nil || in.Title == "" || in.ModuleID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and moduleId are required")
	}
	l := s.AddLesson(domain.Lesson{
		Title: in.Title, ModuleID: in.ModuleID, Order: in.Order,
		Content: in.Content, Duration: in.Duration,
	})
	return c.JSON(http.StatusCreated, l)
}

func (s *Server) updateLesson(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	var in domain.LessonInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Lesson not found")
	}
	l.Title, l.Order, l.Content, l.Duration = in.Title, in.Order, in.Content, in.Duration
	s.lessons[l.ID] = l
	return c.JSON(http.StatusOK, l)
}

func (s *Server) deleteLesson(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.lessons[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Lesson not found")
	}
	delete(s.lessons, id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) uploadVideo(c echo.Context) error {
	if err := adminOnly(c); err != nil {
		return err
	}
	fh, err := c.FormFile("video")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Lesson not found")
	}
	l.VideoURL = "/videos/" + l.ID + "/" + fh.Filename
	s.lessons[l.ID] = l
	return c.JSON(http.StatusOK, l)
}

// ── enrollments ───────────────────────────────────────────────────────────────

func (s *Server) myEnrollments(c echo.Context) error {
	userID := currentUser(c).ID
	s.mu.Lock()
	list := []domain.Enrollment{}
	for _, e := range s.enrollments {
		if e.UserID == userID {
			list = append(list, e)
		}
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return s.list(c, list)
}

func (s *Server) courseEnrollments(c echo.Context) error {
	courseID := c.Param("id")
	me := currentUser(c)
	s.mu.Lock()
	list := []domain.Enrollment{}
	for _, e := range s.enrollments {
		if e.CourseID == courseID && (me.Role == domain.RoleAdmin || e.UserID == me.ID) {
			list = append(list, e)
		}
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return s.list(c, list)
}

func (s *Server) createEnrollment(c echo.Context) error {
	var in struct {
		CourseID string `json:"courseId"`
	}
	if err := c.Bind(&in); err != nil || in.CourseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "courseId is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[in.CourseID]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Course not found")
	}
	return c.JSON(http.StatusCreated, s.enroll(currentUser(c).ID, in.CourseID))
}

// ── progress ──────────────────────────────────────────────────────────────────

func (s *Server) lessonProgress(c echo.Context) error {
	userID := currentUser(c).ID
	lessonID := c.Param("id")
	s.mu.Lock()
	p, ok := s.progress[userID+"/"+lessonID]
	s.mu.Unlock()
	if !ok {
		p = domain.Progress{ID: "p-" + lessonID, UserID: userID, LessonID: lessonID}
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) completeLesson(c echo.Context) error {
	userID := currentUser(c).ID
	lessonID := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[lessonID]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Lesson not found")
	}
	now := time.Now().UTC()
	p := domain.Progress{ID: "p-" + lessonID, UserID: userID, LessonID: lessonID, Completed: true, CompletedAt: &now}
	s.progress[userID+"/"+lessonID] = p
	return c.JSON(http.StatusOK, p)
}

func (s *Server) courseProgress(c echo.Context) error {
	userID := currentUser(c).ID
	courseID := c.Param("id")
	s.mu.Lock()
	list := []domain.Progress{}
	for _, l := range s.lessons {
		m, ok := s.modules[l.ModuleID]
		if !ok || m.CourseID != courseID {
			continue
		}
		if p, ok := s.progress[userID+"/"+l.ID]; ok {
			list = append(list, p)
		}
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].LessonID < list[j].LessonID })
	return s.list(c, list)
}
