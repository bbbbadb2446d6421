package handler

import (
	"strings"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Redirect string `form:"redirect"`
}

type registerForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

type profileForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"omitempty,min=6"`
}

type courseForm struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	ImageURL    string `form:"imageUrl" validate:"omitempty,url"`
}

func (f courseForm) input() domain.CourseInput {
	return domain.CourseInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}
}

type moduleForm struct {
	Title string `form:"title" validate:"required"`
	Order int    `form:"order" validate:"gte=0"`
}

type lessonForm struct {
	Title    string `form:"title" validate:"required"`
	Order    int    `form:"order" validate:"gte=0"`
	Content  string `form:"content"`
	Duration int    `form:"duration" validate:"gte=0"`
}

func (f lessonForm) input(moduleID string) domain.LessonInput {
	return domain.LessonInput{
		Title:    strings.TrimSpace(f.Title),
		ModuleID: moduleID,
		Order:    f.Order,
		Content:  f.Content,
		Duration: f.Duration,
	}
}

type userForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Role     string `form:"role" validate:"oneof=ADMIN STUDENT"`
}

type roleForm struct {
	Role string `form:"role" validate:"oneof=ADMIN STUDENT"`
}
