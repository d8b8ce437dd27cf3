package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/advice"
	"github.com/trezcool/classroom/core/assignment"
)

type studyPlanApi struct {
	*Server
}

func registerStudyPlanAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := studyPlanApi{s}

	g.POST("/study-plan", api.plan, jwt)
}

// plan asks for advice on the requested topics given the assignments the user has not submitted yet.
// An unavailable generator is not an error: the response carries a null advice and a message.
func (api *studyPlanApi) plan(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	var data StudyPlanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudyPlanRequest")
	}
	data.Topics = strings.TrimSpace(data.Topics)

	assignments, err := api.deps.AssignmentSvc.Query(rctx, assignment.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	subs, err := api.deps.SubmissionSvc.ByAssignment(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	submitted := make(map[int]bool, len(subs))
	for id := range subs {
		submitted[id] = true
	}

	resp := StudyPlanResponse{Prefill: data.Topics}
	text, err := api.deps.AdviceSvc.Plan(rctx, data.Topics, assignments, submitted)
	switch errors.Cause(err) {
	case nil:
		resp.Advice = &text
	case advice.ErrUnavailable:
		api.deps.Logger.Warn("study plan advice unavailable", err)
		resp.Message = advice.ErrUnavailable.Error()
	default:
		return errors.Wrap(err, "planning study")
	}
	return ctx.JSON(http.StatusOK, resp)
}
