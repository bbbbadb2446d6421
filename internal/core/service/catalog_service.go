package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
)

// fanOutLimit bounds the concurrent backend calls of a single page.
const fanOutLimit = 8

// CourseOutline is a course with its modules and their lessons, in order.
type CourseOutline struct {
	Course  domain.Course
	Modules []domain.Module
}

// LessonCount returns the number of lessons across all modules.
func (o CourseOutline) LessonCount() int {
	n := 0
	for _, m := range o.Modules {
		n += len(m.Lessons)
	}
	return n
}

// StudentCourse is the course page as seen by one student.
type StudentCourse struct {
	CourseOutline
	Enrolled  bool
	Completed map[string]bool
}

// Percent is the share of completed lessons, 0 to 100.
func (v StudentCourse) Percent() int {
	total := v.LessonCount()
	if total == 0 {
		return 0
	}
	done := 0
	for _, m := range v.Modules {
		for _, l := range m.Lessons {
			if v.Completed[l.ID] {
				done++
			}
		}
	}
	return done * 100 / total
}

// EnrolledCourse pairs an enrollment with its course. Course is nil when the
// course could not be loaded.
type EnrolledCourse struct {
	Enrollment domain.Enrollment
	Course     *domain.Course
}

// Dashboard aggregates the landing page counters.
type Dashboard struct {
	MyCourses   []EnrolledCourse
	CourseCount int
	UserCount   int
}

// LessonPage is a lesson with its neighbours in the module.
type LessonPage struct {
	Course    domain.Course
	Module    domain.Module
	Lesson    domain.Lesson
	Completed bool
	Prev      *domain.Lesson
	Next      *domain.Lesson
}

// CatalogService assembles page views from several backend calls. Branch
// failures degrade to empty values; only the primary entity of a page can
// fail a view.
type CatalogService struct {
	log zerolog.Logger
}

func NewCatalogService(log zerolog.Logger) *CatalogService {
	return &CatalogService{log: log}
}

// Outline loads a course, then its modules, then the lessons of every module
// concurrently.
func (s *CatalogService) Outline(ctx context.Context, api ports.Backend, courseID string) (CourseOutline, error) {
	var (
		course  domain.Course
		modules []domain.Module
		err     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		course, err = api.Courses.Get(gctx, courseID).Unwrap()
		return err
	})
	g.Go(func() error {
		modules = s.listModules(gctx, api, courseID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return CourseOutline{}, err
	}

	s.attachLessons(ctx, api, modules)
	course.Modules = modules
	return CourseOutline{Course: course, Modules: modules}, nil
}

func (s *CatalogService) listModules(ctx context.Context, api ports.Backend, courseID string) []domain.Module {
	res := api.Modules.ListByCourse(ctx, courseID)
	if !res.OK() {
		s.log.Debug().Str("course_id", courseID).Str("error", res.Err()).Msg("modules unavailable")
	}
	modules := res.Or([]domain.Module{})
	domain.SortModules(modules)
	return modules
}

func (s *CatalogService) attachLessons(ctx context.Context, api ports.Backend, modules []domain.Module) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i := range modules {
		g.Go(func() error {
			res := api.Lessons.ListByModule(gctx, modules[i].ID)
			if !res.OK() {
				s.log.Debug().Str("module_id", modules[i].ID).Str("error", res.Err()).Msg("lessons unavailable")
			}
			lessons := res.Or([]domain.Lesson{})
			domain.SortLessons(lessons)
			modules[i].Lessons = lessons
			return nil
		})
	}
	_ = g.Wait()
}

// StudentView adds enrollment and per-lesson completion to the outline.
func (s *CatalogService) StudentView(ctx context.Context, api ports.Backend, courseID string) (StudentCourse, error) {
	var (
		outline  CourseOutline
		enrolled bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outline, err = s.Outline(gctx, api, courseID)
		return err
	})
	g.Go(func() error {
		enrolled = s.isEnrolled(gctx, api, courseID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return StudentCourse{}, err
	}

	view := StudentCourse{CourseOutline: outline, Enrolled: enrolled, Completed: map[string]bool{}}
	if enrolled {
		view.Completed = s.completion(ctx, api, courseID, outline.Modules)
	}
	return view, nil
}

func (s *CatalogService) isEnrolled(ctx context.Context, api ports.Backend, courseID string) bool {
	for _, e := range api.Enrollments.Mine(ctx).Or(nil) {
		if e.CourseID == courseID {
			return true
		}
	}
	return false
}

// completion reads the course progress in one call. When that fails it asks
// for the progress of every lesson concurrently; a lesson whose progress
// cannot be read counts as not completed.
func (s *CatalogService) completion(ctx context.Context, api ports.Backend, courseID string, modules []domain.Module) map[string]bool {
	res := api.Progress.Course(ctx, courseID)
	if records, ok := res.Data(); ok {
		completed := make(map[string]bool, len(records))
		for _, p := range records {
			if p.Completed {
				completed[p.LessonID] = true
			}
		}
		return completed
	}
	s.log.Debug().Str("course_id", courseID).Str("error", res.Err()).Msg("course progress unavailable, reading per lesson")
	return s.lessonCompletion(ctx, api, modules)
}

func (s *CatalogService) lessonCompletion(ctx context.Context, api ports.Backend, modules []domain.Module) map[string]bool {
	var lessons []string
	for _, m := range modules {
		for _, l := range m.Lessons {
			lessons = append(lessons, l.ID)
		}
	}
	done := make([]bool, len(lessons))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, id := range lessons {
		g.Go(func() error {
			p, ok := api.Progress.Lesson(gctx, id).Data()
			done[i] = ok && p.Completed
			return nil
		})
	}
	_ = g.Wait()

	completed := make(map[string]bool, len(lessons))
	for i, id := range lessons {
		if done[i] {
			completed[id] = true
		}
	}
	return completed
}

// MyCourses loads the current user's enrollments and the course of each one
// concurrently.
func (s *CatalogService) MyCourses(ctx context.Context, api ports.Backend) []EnrolledCourse {
	res := api.Enrollments.Mine(ctx)
	if !res.OK() {
		s.log.Debug().Str("error", res.Err()).Msg("enrollments unavailable")
	}
	enrollments := res.Or([]domain.Enrollment{})
	out := make([]EnrolledCourse, len(enrollments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, e := range enrollments {
		out[i].Enrollment = e
		g.Go(func() error {
			if c, ok := api.Courses.Get(gctx, e.CourseID).Data(); ok {
				out[i].Course = &c
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Dashboard gathers the landing counters. Admins additionally see the user count.
func (s *CatalogService) Dashboard(ctx context.Context, api ports.Backend, user *domain.User) Dashboard {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.MyCourses = s.MyCourses(gctx, api)
		return nil
	})
	g.Go(func() error {
		d.CourseCount = len(api.Courses.List(gctx).Or(nil))
		return nil
	})
	if user.HasRole(domain.RoleAdmin) {
		g.Go(func() error {
			d.UserCount = len(api.Users.List(gctx).Or(nil))
			return nil
		})
	}
	_ = g.Wait()
	return d
}

// Lesson loads a lesson page. The lesson must belong to the module and the
// module to the course, otherwise domain.ErrNotFound is returned.
func (s *CatalogService) Lesson(ctx context.Context, api ports.Backend, courseID, moduleID, lessonID string) (LessonPage, error) {
	var (
		course    domain.Course
		modules   []domain.Module
		lessons   []domain.Lesson
		completed bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		course, err = api.Courses.Get(gctx, courseID).Unwrap()
		return err
	})
	g.Go(func() error {
		modules = s.listModules(gctx, api, courseID)
		return nil
	})
	g.Go(func() error {
		lessons = api.Lessons.ListByModule(gctx, moduleID).Or(nil)
		return nil
	})
	g.Go(func() error {
		p, ok := api.Progress.Lesson(gctx, lessonID).Data()
		completed = ok && p.Completed
		return nil
	})
	if err := g.Wait(); err != nil {
		return LessonPage{}, err
	}

	domain.SortLessons(lessons)
	page := LessonPage{Course: course, Completed: completed}
	found := false
	for _, m := range modules {
		if m.ID == moduleID {
			page.Module, found = m, true
			break
		}
	}
	if !found {
		return LessonPage{}, domain.ErrNotFound
	}

	for i, l := range lessons {
		if l.ID != lessonID {
			continue
		}
		page.Lesson = l
		if i > 0 {
			prev := lessons[i-1]
			page.Prev = &prev
		}
		if i+1 < len(lessons) {
			next := lessons[i+1]
			page.Next = &next
		}
		return page, nil
	}
	return LessonPage{}, domain.ErrNotFound
}
