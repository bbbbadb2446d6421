package backend

import "github.com/coursehub/learning-portal/internal/core/ports"

// NewAPI binds every resource to the same client.
func NewAPI(client *Client) ports.Backend {
	return ports.Backend{
		Auth:        NewAuth(client),
		Courses:     NewCourses(client),
		Modules:     NewModules(client),
		Lessons:     NewLessons(client),
		Enrollments: NewEnrollments(client),
		Progress:    NewProgress(client),
		Users:       NewUsers(client),
	}
}
