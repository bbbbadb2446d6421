package domain

import (
	"cmp"
	"slices"
	"time"
)

// Course is a catalog entry.
type Course struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"imageUrl"`
	Rating       *float64 `json:"rating,omitempty"`
	LearnerCount *int     `json:"learnerCount,omitempty"`
	Modules      []Module `json:"modules,omitempty"`
}

// Module groups ordered lessons inside a course.
type Module struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	CourseID string   `json:"courseId"`
	Order    int      `json:"order"`
	Lessons  []Lesson `json:"lessons,omitempty"`
}

// SortModules orders modules by Order, keeping backend order for ties.
func SortModules(modules []Module) {
	slices.SortStableFunc(modules, func(a, b Module) int { return cmp.Compare(a.Order, b.Order) })
}

// Lesson is a single unit of content. Duration is in minutes.
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ModuleID string `json:"moduleId"`
	Order    int    `json:"order"`
	Content  string `json:"content,omitempty"`
	Duration int    `json:"duration,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
}

// SortLessons orders lessons by Order, keeping backend order for ties.
func SortLessons(lessons []Lesson) {
	slices.SortStableFunc(lessons, func(a, b Lesson) int { return cmp.Compare(a.Order, b.Order) })
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Progress   *float64  `json:"progress,omitempty"`
}

// Progress records whether a student completed a lesson.
type Progress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CourseInput carries the writable fields of a course.
type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ModuleInput carries the writable fields of a module.
type ModuleInput struct {
	Title    string `json:"title"`
	CourseID string `json:"courseId,omitempty"`
	Order    int    `json:"order"`
}

// LessonInput carries the writable fields of a lesson.
type LessonInput struct {
	Title    string `json:"title"`
	ModuleID string `json:"moduleId,omitempty"`
	Order    int    `json:"order"`
	Content  string `json:"content,omitempty"`
	Duration int    `json:"duration,omitempty"`
}
