package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

const (
	homeAssignmentsLimit   = 5
	homeAnnouncementsLimit = 3

	modeInstructor = "instructor"
	modeStudent    = "student"
)

type (
	HomeResponse struct {
		Classes       []selection.Card              `json:"classes"`
		Assignments   []submission.BadgedAssignment `json:"assignments"`
		Announcements []announcement.Announcement   `json:"announcements"`
	}

	DashboardResponse struct {
		Mode               string                        `json:"mode"`
		Assignments        []submission.BadgedAssignment `json:"assignments"`
		PendingSubmissions []submission.Submission       `json:"pending_submissions"`
	}

	dashboardApi struct {
		*Server
	}
)

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := dashboardApi{s}

	g.GET("/home", api.home, jwt)
	g.GET("/dashboard", api.dashboard, jwt)
}

// badge derives the badges of assignments as seen by usr. Staff never have submissions.
func (s *Server) badge(ctx context.Context, usr user.User, assignments []assignment.Assignment) ([]submission.BadgedAssignment, error) {
	var subs map[int]submission.Submission
	if usr.IsStudent() {
		var err error
		if subs, err = s.deps.SubmissionSvc.ByAssignment(ctx, usr.ID); err != nil {
			return nil, errors.Wrap(err, "querying student submissions")
		}
	}
	return submission.BadgeAll(assignments, subs, s.nowFunc()), nil
}

func (api *dashboardApi) home(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	assignments, err := api.deps.AssignmentSvc.Query(rctx, assignment.QueryFilter{Limit: homeAssignmentsLimit})
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	badged, err := api.badge(rctx, usr, assignments)
	if err != nil {
		return err
	}

	notes, err := api.deps.AnnouncementSvc.Query(rctx, announcement.QueryFilter{Limit: homeAnnouncementsLimit})
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}

	cards, err := api.deps.SelectionSvc.Cards(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "building class cards")
	}

	return ctx.JSON(http.StatusOK, HomeResponse{
		Classes:       cards,
		Assignments:   badged,
		Announcements: notes,
	})
}

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	if usr.IsStaff() {
		assignments, err := api.deps.AssignmentSvc.Query(rctx, assignment.QueryFilter{CreatedBy: usr.ID})
		if err != nil {
			return errors.Wrap(err, "querying assignments")
		}
		pending, err := api.deps.SubmissionSvc.Query(rctx, submission.QueryFilter{AssignmentCreator: usr.ID, Ungraded: true})
		if err != nil {
			return errors.Wrap(err, "querying pending submissions")
		}
		return ctx.JSON(http.StatusOK, DashboardResponse{
			Mode:               modeInstructor,
			Assignments:        submission.BadgeAll(assignments, nil, api.nowFunc()),
			PendingSubmissions: pending,
		})
	}

	assignments, err := api.deps.AssignmentSvc.Query(rctx, assignment.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	badged, err := api.badge(rctx, usr, assignments)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, DashboardResponse{Mode: modeStudent, Assignments: badged})
}
