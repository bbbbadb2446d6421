package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/infrastructure/backend"
	"github.com/coursehub/learning-portal/internal/infrastructure/backend/backendtest"
	"github.com/coursehub/learning-portal/internal/infrastructure/tokenstore"
)

type catalogFixture struct {
	fake    *backendtest.Server
	api     ports.Backend
	course  domain.Course
	modules []domain.Module
	lessons []domain.Lesson
	user    domain.User
}

// newCatalogFixture seeds one course with two modules of two lessons each and
// signs in a student.
func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	fake := backendtest.New(t)
	f := &catalogFixture{fake: fake}
	f.user = fake.AddUser("Ada", "a@x.com", "secret1", domain.RoleStudent)
	f.course = fake.AddCourse(domain.Course{Title: "Go"})
	for i := 1; i <= 2; i++ {
		m := fake.AddModule(domain.Module{Title: "Module", CourseID: f.course.ID, Order: i})
		f.modules = append(f.modules, m)
		for j := 1; j <= 2; j++ {
			f.lessons = append(f.lessons, fake.AddLesson(domain.Lesson{Title: "Lesson", ModuleID: m.ID, Order: j}))
		}
	}

	tokens := tokenstore.NewMemory(fake.Token(f.user.ID, time.Hour))
	client := backend.NewClient(backend.Config{BaseURL: fake.URL()}, zerolog.Nop())
	f.api = backend.NewAPI(client.WithTokens(tokens))
	return f
}

func TestCatalog_Outline(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewCatalogService(zerolog.Nop())

	outline, err := svc.Outline(context.Background(), f.api, f.course.ID)
	if err != nil {
		t.Fatalf("Outline returned error: %v", err)
	}
	if len(outline.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(outline.Modules))
	}
	if outline.LessonCount() != 4 {
		t.Fatalf("expected 4 lessons, got %d", outline.LessonCount())
	}
	if outline.Modules[0].Lessons[0].Order != 1 {
		t.Fatalf("lessons must keep backend order")
	}
}

func TestCatalog_OutlineFailedBranchIsEmpty(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.Fail("GET /lessons/module/"+f.modules[0].ID, http.StatusInternalServerError, `{"message":"boom"}`)
	svc := NewCatalogService(zerolog.Nop())

	outline, err := svc.Outline(context.Background(), f.api, f.course.ID)
	if err != nil {
		t.Fatalf("a failed branch must not fail the join: %v", err)
	}
	if len(outline.Modules[0].Lessons) != 0 {
		t.Fatalf("expected failed branch to be empty")
	}
	if len(outline.Modules[1].Lessons) != 2 {
		t.Fatalf("expected sibling branch to be intact")
	}
}

func TestCatalog_OutlineMissingCourse(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewCatalogService(zerolog.Nop())

	_, err := svc.Outline(context.Background(), f.api, "nope")

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Course not found" {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestCatalog_StudentView(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.AddEnrollment(f.user.ID, f.course.ID)
	svc := NewCatalogService(zerolog.Nop())
	ctx := context.Background()
	if !f.api.Progress.Complete(ctx, f.lessons[0].ID).OK() {
		t.Fatalf("seeding progress failed")
	}

	view, err := svc.StudentView(ctx, f.api, f.course.ID)
	if err != nil {
		t.Fatalf("StudentView returned error: %v", err)
	}
	if !view.Enrolled {
		t.Fatalf("expected enrolled")
	}
	if !view.Completed[f.lessons[0].ID] || view.Completed[f.lessons[1].ID] {
		t.Fatalf("unexpected completion map: %v", view.Completed)
	}
	if view.Percent() != 25 {
		t.Fatalf("expected 25%%, got %d", view.Percent())
	}
}

func TestCatalog_StudentViewNotEnrolledSkipsProgress(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewCatalogService(zerolog.Nop())

	view, err := svc.StudentView(context.Background(), f.api, f.course.ID)
	if err != nil {
		t.Fatalf("StudentView returned error: %v", err)
	}
	if view.Enrolled || len(view.Completed) != 0 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if n := f.fake.Calls("GET /progress/lesson/" + f.lessons[0].ID); n != 0 {
		t.Fatalf("expected no progress calls, got %d", n)
	}
}

func TestCatalog_MyCoursesKeepsUnloadableCourse(t *testing.T) {
	f := newCatalogFixture(t)
	other := f.fake.AddCourse(domain.Course{Title: "Rust"})
	f.fake.AddEnrollment(f.user.ID, f.course.ID)
	f.fake.AddEnrollment(f.user.ID, other.ID)
	f.fake.Fail("GET /courses/"+other.ID, http.StatusInternalServerError, `{}`)
	svc := NewCatalogService(zerolog.Nop())

	mine := svc.MyCourses(context.Background(), f.api)

	if len(mine) != 2 {
		t.Fatalf("expected 2 enrollments, got %d", len(mine))
	}
	loaded := 0
	for _, ec := range mine {
		if ec.Course != nil {
			loaded++
		}
	}
	if loaded != 1 {
		t.Fatalf("expected exactly one loaded course, got %d", loaded)
	}
}

func TestCatalog_DashboardDegradesToZero(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.Fail("GET /courses", http.StatusBadGateway, `{"error":"upstream"}`)
	f.fake.Fail("GET /enrollments/my", http.StatusBadGateway, `{"error":"upstream"}`)
	svc := NewCatalogService(zerolog.Nop())

	d := svc.Dashboard(context.Background(), f.api, &f.user)

	if d.CourseCount != 0 || len(d.MyCourses) != 0 {
		t.Fatalf("expected empty dashboard, got %+v", d)
	}
	if n := f.fake.Calls("GET /users"); n != 0 {
		t.Fatalf("students must not list users, got %d calls", n)
	}
}

func TestCatalog_Lesson(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewCatalogService(zerolog.Nop())
	second := f.lessons[1]

	page, err := svc.Lesson(context.Background(), f.api, f.course.ID, f.modules[0].ID, second.ID)
	if err != nil {
		t.Fatalf("Lesson returned error: %v", err)
	}
	if page.Prev == nil || page.Prev.ID != f.lessons[0].ID {
		t.Fatalf("unexpected prev: %+v", page.Prev)
	}
	if page.Next != nil {
		t.Fatalf("expected no next lesson")
	}

	if _, err := svc.Lesson(context.Background(), f.api, f.course.ID, f.modules[1].ID, second.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for lesson outside module, got %v", err)
	}
}

func TestCatalog_StudentViewReadsCourseProgressOnce(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.AddEnrollment(f.user.ID, f.course.ID)
	svc := NewCatalogService(zerolog.Nop())
	ctx := context.Background()
	if !f.api.Progress.Complete(ctx, f.lessons[2].ID).OK() {
		t.Fatalf("seeding progress failed")
	}

	view, err := svc.StudentView(ctx, f.api, f.course.ID)
	if err != nil {
		t.Fatalf("StudentView returned error: %v", err)
	}
	if !view.Completed[f.lessons[2].ID] || len(view.Completed) != 1 {
		t.Fatalf("unexpected completion map: %v", view.Completed)
	}
	if n := f.fake.Calls("GET /progress/courses/" + f.course.ID); n != 1 {
		t.Fatalf("expected one course progress call, got %d", n)
	}
	for _, l := range f.lessons {
		if n := f.fake.Calls("GET /progress/lesson/" + l.ID); n != 0 {
			t.Fatalf("expected no per-lesson calls, got %d for %s", n, l.ID)
		}
	}
}

func TestCatalog_StudentViewFallsBackToLessonProgress(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.AddEnrollment(f.user.ID, f.course.ID)
	f.fake.Fail("GET /progress/courses/"+f.course.ID, http.StatusNotFound, `{"message":"Not found"}`)
	svc := NewCatalogService(zerolog.Nop())
	ctx := context.Background()
	if !f.api.Progress.Complete(ctx, f.lessons[1].ID).OK() {
		t.Fatalf("seeding progress failed")
	}

	view, err := svc.StudentView(ctx, f.api, f.course.ID)
	if err != nil {
		t.Fatalf("StudentView returned error: %v", err)
	}
	if !view.Completed[f.lessons[1].ID] || view.Percent() != 25 {
		t.Fatalf("unexpected completion: %v", view.Completed)
	}
	if n := f.fake.Calls("GET /progress/lesson/" + f.lessons[0].ID); n != 1 {
		t.Fatalf("expected per-lesson fallback call, got %d", n)
	}
}

func TestCatalog_OutlineOrdersUnsortedBackendLists(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.ReverseLists(true)
	svc := NewCatalogService(zerolog.Nop())

	outline, err := svc.Outline(context.Background(), f.api, f.course.ID)
	if err != nil {
		t.Fatalf("Outline returned error: %v", err)
	}
	if outline.Modules[0].ID != f.modules[0].ID || outline.Modules[1].ID != f.modules[1].ID {
		t.Fatalf("modules not ordered: %s, %s", outline.Modules[0].ID, outline.Modules[1].ID)
	}
	for _, m := range outline.Modules {
		if m.Lessons[0].Order != 1 || m.Lessons[1].Order != 2 {
			t.Fatalf("lessons of %s not ordered: %+v", m.ID, m.Lessons)
		}
	}
}

func TestCatalog_LessonNeighboursFollowOrder(t *testing.T) {
	f := newCatalogFixture(t)
	f.fake.ReverseLists(true)
	svc := NewCatalogService(zerolog.Nop())

	page, err := svc.Lesson(context.Background(), f.api, f.course.ID, f.modules[0].ID, f.lessons[0].ID)
	if err != nil {
		t.Fatalf("Lesson returned error: %v", err)
	}
	if page.Prev != nil {
		t.Fatalf("first lesson must have no previous lesson, got %+v", page.Prev)
	}
	if page.Next == nil || page.Next.ID != f.lessons[1].ID {
		t.Fatalf("unexpected next: %+v", page.Next)
	}
}
