package ports

import (
	"context"
	"io"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// AuthAPI covers login, registration and the "who am I" call.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) domain.Result[domain.AuthResult]
	Register(ctx context.Context, name, email, password string, role domain.Role) domain.Result[domain.AuthResult]
	Me(ctx context.Context) domain.Result[domain.User]
}

type CourseAPI interface {
	List(ctx context.Context) domain.Result[[]domain.Course]
	Get(ctx context.Context, id string) domain.Result[domain.Course]
	Create(ctx context.Context, in domain.CourseInput) domain.Result[domain.Course]
	Update(ctx context.Context, id string, in domain.CourseInput) domain.Result[domain.Course]
	Delete(ctx context.Context, id string) domain.Result[struct{}]
}

type ModuleAPI interface {
	ListByCourse(ctx context.Context, courseID string) domain.Result[[]domain.Module]
	Create(ctx context.Context, in domain.ModuleInput) domain.Result[domain.Module]
	Update(ctx context.Context, id string, in domain.ModuleInput) domain.Result[domain.Module]
	Delete(ctx context.Context, id string) domain.Result[struct{}]
}

type LessonAPI interface {
	ListByModule(ctx context.Context, moduleID string) domain.Result[[]domain.Lesson]
	Create(ctx context.Context, in domain.LessonInput) domain.Result[domain.Lesson]
	Update(ctx context.Context, id string, in domain.LessonInput) domain.Result[domain.Lesson]
	Delete(ctx context.Context, id string) domain.Result[struct{}]
	UploadVideo(ctx context.Context, id, filename string, video io.Reader) domain.Result[domain.Lesson]
}

type EnrollmentAPI interface {
	Mine(ctx context.Context) domain.Result[[]domain.Enrollment]
	ListByCourse(ctx context.Context, courseID string) domain.Result[[]domain.Enrollment]
	Enroll(ctx context.Context, courseID string) domain.Result[domain.Enrollment]
}

type ProgressAPI interface {
	Lesson(ctx context.Context, lessonID string) domain.Result[domain.Progress]
	Complete(ctx context.Context, lessonID string) domain.Result[domain.Progress]
	Course(ctx context.Context, courseID string) domain.Result[[]domain.Progress]
}

type UserAPI interface {
	List(ctx context.Context) domain.Result[[]domain.User]
	Get(ctx context.Context, id string) domain.Result[domain.User]
	Create(ctx context.Context, in domain.UserInput) domain.Result[domain.User]
	Update(ctx context.Context, id string, in domain.UserInput) domain.Result[domain.User]
	Delete(ctx context.Context, id string) domain.Result[struct{}]
}

// Backend bundles the resource APIs bound to one client context.
type Backend struct {
	Auth        AuthAPI
	Courses     CourseAPI
	Modules     ModuleAPI
	Lessons     LessonAPI
	Enrollments EnrollmentAPI
	Progress    ProgressAPI
	Users       UserAPI
}
