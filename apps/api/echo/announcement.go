package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/user"
)

type announcementApi struct {
	*Server
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := announcementApi{s}
	instructor := rolesMiddleware(s.deps.UserSvc, user.RoleInstructor)

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, instructor)
	ag.GET("/:id", api.retrieve)
	ag.DELETE("/:id", api.destroy, instructor)
}

// Handlers

func (api *announcementApi) query(ctx echo.Context) error {
	filter := announcement.QueryFilter{
		CourseID: queryInt(ctx, "course_id"),
		Limit:    queryInt(ctx, "limit"),
	}
	notes, err := api.deps.AnnouncementSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *announcementApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(rctx, api.deps.Validate, api.deps.CourseSvc); err != nil {
		return err
	}

	note, err := api.deps.AnnouncementSvc.Create(rctx, data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, note)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	note, err := api.deps.AnnouncementSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, note)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.deps.AnnouncementSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
