package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

var errNoCourses = errors.New("No courses available yet. Please ask an instructor to add one.")

type (
	CourseListResponse struct {
		Courses     []course.Course `json:"courses"`
		SelectedIDs []int           `json:"selected_ids"`
	}

	CourseDetailResponse struct {
		Course        course.Course                 `json:"course"`
		Assignments   []submission.BadgedAssignment `json:"assignments"`
		Announcements []announcement.Announcement   `json:"announcements"`
	}

	ClassesResponse struct {
		Entries []selection.Entry `json:"entries"`
		Cards   []selection.Card  `json:"cards"`
	}

	courseApi struct {
		*Server
	}
)

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := courseApi{s}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, rolesMiddleware(s.deps.UserSvc, user.RoleInstructor))
	cg.GET("/:id", api.retrieve)
}

func registerClassesAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := courseApi{s}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.classes)
	cg.PUT("", api.setClasses)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	courses, err := api.deps.CourseSvc.Query(rctx, course.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	selected, err := api.deps.SelectionSvc.SelectedCourseIDs(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying selected courses")
	}
	return ctx.JSON(http.StatusOK, CourseListResponse{Courses: courses, SelectedIDs: selected})
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate, api.deps.CourseSvc); err != nil {
		return err
	}

	c, err := api.deps.CourseSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	c, err := api.deps.CourseSvc.GetByID(rctx, id)
	if err != nil {
		return err
	}

	assignments, err := api.deps.AssignmentSvc.Query(rctx, assignment.QueryFilter{CourseID: c.ID})
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	badged, err := api.badge(rctx, usr, assignments)
	if err != nil {
		return err
	}

	notes, err := api.deps.AnnouncementSvc.Query(rctx, announcement.QueryFilter{CourseID: c.ID})
	if err != nil {
		return errors.Wrap(err, "querying course announcements")
	}

	return ctx.JSON(http.StatusOK, CourseDetailResponse{
		Course:        c,
		Assignments:   badged,
		Announcements: notes,
	})
}

func (api *courseApi) classes(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	entries, err := api.deps.SelectionSvc.Get(rctx, usr.ID)
	if err != nil {
		return err
	}
	cards, err := api.deps.SelectionSvc.Cards(rctx, usr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ClassesResponse{Entries: entries, Cards: cards})
}

func (api *courseApi) setClasses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	courses, err := api.deps.CourseSvc.Query(rctx, course.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if len(courses) == 0 {
		return core.NewValidationError(errNoCourses)
	}

	var data ClassesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassesRequest")
	}
	if err := api.deps.SelectionSvc.Set(rctx, usr.ID, data.Courses); err != nil {
		return err
	}
	return api.classes(ctx)
}
