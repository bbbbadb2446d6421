package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// Dashboard shows the user's enrollments and catalog counters.
func (h *Handler) Dashboard(c echo.Context) error {
	d := h.catalog.Dashboard(c.Request().Context(), h.api(c), h.identity(c))
	return h.render(c, http.StatusOK, "dashboard", "Dashboard", d)
}

// Courses lists the catalog. A failed read shows an empty catalog with the error.
func (h *Handler) Courses(c echo.Context) error {
	res := h.api(c).Courses.List(c.Request().Context())
	courses, _ := res.Data()
	p := h.page(c, "Courses", courses)
	p.Error = res.Err()
	return c.Render(http.StatusOK, "courses", p)
}

func (h *Handler) MyCourses(c echo.Context) error {
	mine := h.catalog.MyCourses(c.Request().Context(), h.api(c))
	return h.render(c, http.StatusOK, "my_courses", "My courses", mine)
}

// Course shows the outline, enrollment state and completion of one course.
func (h *Handler) Course(c echo.Context) error {
	view, err := h.catalog.StudentView(c.Request().Context(), h.api(c), c.Param("id"))
	if err != nil {
		return notFound(err)
	}
	return h.render(c, http.StatusOK, "course", view.Course.Title, view)
}

func (h *Handler) Enroll(c echo.Context) error {
	id := c.Param("id")
	res := h.api(c).Enrollments.Enroll(c.Request().Context(), id)
	h.flashResult(c, res.OK(), res.Err(), "You are now enrolled.")
	return redirect(c, "/courses/"+id)
}

func (h *Handler) Lesson(c echo.Context) error {
	page, err := h.catalog.Lesson(c.Request().Context(), h.api(c), c.Param("id"), c.Param("moduleId"), c.Param("lessonId"))
	if err != nil {
		return notFound(err)
	}
	return h.render(c, http.StatusOK, "lesson", page.Lesson.Title, page)
}

// CompleteLesson marks the lesson done and moves on to the next lesson of the
// module when there is one.
func (h *Handler) CompleteLesson(c echo.Context) error {
	ctx := c.Request().Context()
	courseID, moduleID, lessonID := c.Param("id"), c.Param("moduleId"), c.Param("lessonId")
	base := "/courses/" + courseID + "/modules/" + moduleID + "/lessons/"

	res := h.api(c).Progress.Complete(ctx, lessonID)
	if !res.OK() {
		h.notify.Error(c, res.Err())
		return redirect(c, base+lessonID)
	}
	h.notify.Success(c, "Lesson completed.")

	lessons := h.api(c).Lessons.ListByModule(ctx, moduleID).Or(nil)
	domain.SortLessons(lessons)
	for i, l := range lessons {
		if l.ID == lessonID && i+1 < len(lessons) {
			return redirect(c, base+lessons[i+1].ID)
		}
	}
	return redirect(c, "/courses/"+courseID)
}
