package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/service"
)

type adminCourseView struct {
	Outline         service.CourseOutline
	EnrollmentCount int
}

type adminModuleView struct {
	CourseID string
	Module   domain.Module
	Lessons  []domain.Lesson
}

type adminLessonView struct {
	CourseID string
	ModuleID string
	Lesson   domain.Lesson
}

func adminCoursePath(courseID string) string { return "/admin/courses/" + courseID }

func adminModulePath(courseID, moduleID string) string {
	return adminCoursePath(courseID) + "/modules/" + moduleID
}

func adminLessonPath(courseID, moduleID, lessonID string) string {
	return adminModulePath(courseID, moduleID) + "/lessons/" + lessonID
}

// ── courses ───────────────────────────────────────────────────────────────────

func (h *Handler) AdminCourses(c echo.Context) error {
	res := h.api(c).Courses.List(c.Request().Context())
	p := h.page(c, "Manage courses", res.Or([]domain.Course{}))
	p.Error = res.Err()
	return c.Render(http.StatusOK, "admin_courses", p)
}

func (h *Handler) AdminCreateCourse(c echo.Context) error {
	var form courseForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, "/admin/courses")
	}

	res := h.api(c).Courses.Create(c.Request().Context(), form.input())
	course, ok := res.Data()
	if !ok {
		h.notify.Error(c, res.Err())
		return redirect(c, "/admin/courses")
	}
	h.notify.Success(c, "Course created.")
	return redirect(c, adminCoursePath(course.ID))
}

// AdminCourse shows the course form, its modules and its enrollment count.
func (h *Handler) AdminCourse(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	outline, err := h.catalog.Outline(ctx, h.api(c), id)
	if err != nil {
		return notFound(err)
	}
	enrollments := h.api(c).Enrollments.ListByCourse(ctx, id).Or(nil)
	return h.render(c, http.StatusOK, "admin_course", outline.Course.Title, adminCourseView{
		Outline:         outline,
		EnrollmentCount: len(enrollments),
	})
}

func (h *Handler) AdminUpdateCourse(c echo.Context) error {
	id := c.Param("id")
	var form courseForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, adminCoursePath(id))
	}
	res := h.api(c).Courses.Update(c.Request().Context(), id, form.input())
	h.flashResult(c, res.OK(), res.Err(), "Course saved.")
	return redirect(c, adminCoursePath(id))
}

func (h *Handler) AdminDeleteCourse(c echo.Context) error {
	res := h.api(c).Courses.Delete(c.Request().Context(), c.Param("id"))
	h.flashResult(c, res.OK(), res.Err(), "Course deleted.")
	return redirect(c, "/admin/courses")
}

// ── modules ───────────────────────────────────────────────────────────────────

func (h *Handler) AdminCreateModule(c echo.Context) error {
	courseID := c.Param("id")
	var form moduleForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, adminCoursePath(courseID))
	}
	res := h.api(c).Modules.Create(c.Request().Context(), domain.ModuleInput{
		Title:    strings.TrimSpace(form.Title),
		CourseID: courseID,
		Order:    form.Order,
	})
	h.flashResult(c, res.OK(), res.Err(), "Module added.")
	return redirect(c, adminCoursePath(courseID))
}

// findModule looks the module up in its course; the backend has no single-module read.
func (h *Handler) findModule(c echo.Context, courseID, moduleID string) (domain.Module, error) {
	for _, m := range h.api(c).Modules.ListByCourse(c.Request().Context(), courseID).Or(nil) {
		if m.ID == moduleID {
			return m, nil
		}
	}
	return domain.Module{}, domain.ErrNotFound
}

func (h *Handler) AdminModule(c echo.Context) error {
	courseID, moduleID := c.Param("id"), c.Param("moduleId")
	m, err := h.findModule(c, courseID, moduleID)
	if err != nil {
		return notFound(err)
	}
	lessons := h.api(c).Lessons.ListByModule(c.Request().Context(), moduleID).Or([]domain.Lesson{})
	domain.SortLessons(lessons)
	return h.render(c, http.StatusOK, "admin_module", m.Title, adminModuleView{CourseID: courseID, Module: m, Lessons: lessons})
}

func (h *Handler) AdminUpdateModule(c echo.Context) error {
	courseID, moduleID := c.Param("id"), c.Param("moduleId")
	var form moduleForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, adminModulePath(courseID, moduleID))
	}
	res := h.api(c).Modules.Update(c.Request().Context(), moduleID, domain.ModuleInput{
		Title: strings.TrimSpace(form.Title),
		Order: form.Order,
	})
	h.flashResult(c, res.OK(), res.Err(), "Module saved.")
	return redirect(c, adminModulePath(courseID, moduleID))
}

func (h *Handler) AdminDeleteModule(c echo.Context) error {
	res := h.api(c).Modules.Delete(c.Request().Context(), c.Param("moduleId"))
	h.flashResult(c, res.OK(), res.Err(), "Module deleted.")
	return redirect(c, adminCoursePath(c.Param("id")))
}

// ── lessons ───────────────────────────────────────────────────────────────────

func (h *Handler) AdminCreateLesson(c echo.Context) error {
	courseID, moduleID := c.Param("id"), c.Param("moduleId")
	var form lessonForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, adminModulePath(courseID, moduleID))
	}
	res := h.api(c).Lessons.Create(c.Request().Context(), form.input(moduleID))
	h.flashResult(c, res.OK(), res.Err(), "Lesson added.")
	return redirect(c, adminModulePath(courseID, moduleID))
}

func (h *Handler) AdminLesson(c echo.Context) error {
	courseID, moduleID, lessonID := c.Param("id"), c.Param("moduleId"), c.Param("lessonId")
	for _, l := range h.api(c).Lessons.ListByModule(c.Request().Context(), moduleID).Or(nil) {
		if l.ID == lessonID {
			return h.render(c, http.StatusOK, "admin_lesson", l.Title, adminLessonView{CourseID: courseID, ModuleID: moduleID, Lesson: l})
		}
	}
	return notFound(domain.ErrNotFound)
}

func (h *Handler) AdminUpdateLesson(c echo.Context) error {
	courseID, moduleID, lessonID := c.Param("id"), c.Param("moduleId"), c.Param("lessonId")
	var form lessonForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		h.notify.Error(c, err.Error())
		return redirect(c, adminLessonPath(courseID, moduleID, lessonID))
	}
	res := h.api(c).Lessons.Update(c.Request().Context(), lessonID, form.input(moduleID))
	h.flashResult(c, res.OK(), res.Err(), "Lesson saved.")
	return redirect(c, adminLessonPath(courseID, moduleID, lessonID))
}

func (h *Handler) AdminDeleteLesson(c echo.Context) error {
	res := h.api(c).Lessons.Delete(c.Request().Context(), c.Param("lessonId"))
	h.flashResult(c, res.OK(), res.Err(), "Lesson deleted.")
	return redirect(c, adminModulePath(c.Param("id"), c.Param("moduleId")))
}

// AdminUploadVideo streams the uploaded file to the backend.
func (h *Handler) AdminUploadVideo(c echo.Context) error {
	courseID, moduleID, lessonID := c.Param("id"), c.Param("moduleId"), c.Param("lessonId")
	back := adminLessonPath(courseID, moduleID, lessonID)

	fh, err := c.FormFile("video")
	if err != nil {
		h.notify.Error(c, "Choose a video file to upload.")
		return redirect(c, back)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	res := h.api(c).Lessons.UploadVideo(c.Request().Context(), lessonID, fh.Filename, f)
	h.flashResult(c, res.OK(), res.Err(), "Video uploaded.")
	return redirect(c, back)
}
