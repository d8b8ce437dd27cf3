package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

const submissionIDField = "submission_id"

type (
	// AssignmentDetail is an assignment as seen by the requesting user:
	// students get their badge and submission, staff get every submission.
	AssignmentDetail struct {
		assignment.Assignment
		Criteria    []assignment.Criterion  `json:"criteria"`
		Badge       *assignment.Badge       `json:"progress_badge,omitempty"`
		Submission  *submission.Submission  `json:"submission,omitempty"`
		Submissions []submission.Submission `json:"submissions,omitempty"`
	}

	assignmentApi struct {
		*Server
	}
)

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := assignmentApi{s}
	instructor := rolesMiddleware(s.deps.UserSvc, user.RoleInstructor)
	staff := rolesMiddleware(s.deps.UserSvc, user.StaffRoles...)
	student := rolesMiddleware(s.deps.UserSvc, user.RoleStudent)

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, instructor)

	// detail endpoints
	ag.GET("/:id", api.retrieve)
	ag.DELETE("/:id", api.destroy, instructor)
	ag.GET("/:id/criteria", api.criteria)
	ag.POST("/:id/criteria", api.addCriterion, staff)
	ag.DELETE("/:id/criteria/:criterion_id", api.removeCriterion, staff)
	ag.POST("/:id/submission", api.submit, student)
	ag.POST("/:id/grade", api.grade, staff)
}

func (api *assignmentApi) getAssignment(ctx echo.Context) (assignment.Assignment, error) {
	id, err := pathID(ctx, "id")
	if err != nil {
		return assignment.Assignment{}, err
	}
	return api.deps.AssignmentSvc.GetByID(ctx.Request().Context(), id)
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter := assignment.QueryFilter{
		CourseID: queryInt(ctx, "course_id"),
		Ordering: ordering.Orderings,
	}

	assignments, err := api.deps.AssignmentSvc.Query(rctx, filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	badged, err := api.badge(rctx, usr, assignments)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, badged)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(rctx, api.deps.Validate, api.deps.CourseSvc); err != nil {
		return err
	}

	a, err := api.deps.AssignmentSvc.Create(rctx, data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	rubric, err := api.deps.AssignmentSvc.Criteria(rctx, a.ID)
	if err != nil {
		return errors.Wrap(err, "querying rubric criteria")
	}
	detail := AssignmentDetail{Assignment: a, Criteria: rubric}

	switch {
	case usr.IsStudent():
		var sub *submission.Submission
		s, err := api.deps.SubmissionSvc.Get(rctx, submission.GetFilter{AssignmentID: a.ID, StudentID: usr.ID})
		switch errors.Cause(err) {
		case nil:
			sub = &s
		case submission.ErrNotFound:
		default:
			return errors.Wrap(err, "finding submission")
		}
		badge := assignment.DeriveBadge(a, sub.Progress(), api.nowFunc())
		detail.Badge = &badge
		detail.Submission = sub
	case usr.IsStaff():
		subs, err := api.deps.SubmissionSvc.Query(rctx, submission.QueryFilter{AssignmentID: a.ID})
		if err != nil {
			return errors.Wrap(err, "querying submissions")
		}
		detail.Submissions = subs
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.AssignmentSvc.Delete(ctx.Request().Context(), a.ID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) criteria(ctx echo.Context) error {
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}
	rubric, err := api.deps.AssignmentSvc.Criteria(ctx.Request().Context(), a.ID)
	if err != nil {
		return errors.Wrap(err, "querying rubric criteria")
	}
	return ctx.JSON(http.StatusOK, rubric)
}

func (api *assignmentApi) addCriterion(ctx echo.Context) error {
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.NewCriterion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCriterion")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.AssignmentSvc.AddCriterion(ctx.Request().Context(), a.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding rubric criterion")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *assignmentApi) removeCriterion(ctx echo.Context) error {
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}
	criterionID, err := pathID(ctx, "criterion_id")
	if err != nil {
		return err
	}
	if err := api.deps.AssignmentSvc.RemoveCriterion(ctx.Request().Context(), a.ID, criterionID); err != nil {
		return errors.Wrap(err, "removing rubric criterion")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(rctx, api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.SubmissionSvc.Submit(rctx, a, usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	return ctx.JSON(http.StatusOK, sub)
}

// grade accepts either a JSON GradeRequest or form fields `submission_id` and `criterion_<id>`.
func (api *assignmentApi) grade(ctx echo.Context) error {
	a, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	submissionID, scores, err := bindGrade(ctx)
	if err != nil {
		return err
	}

	sub, err := api.deps.Grader.GradeForAssignment(rctx, a.ID, submissionID, scores)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	api.notifyGraded(rctx, a, sub)
	return ctx.JSON(http.StatusOK, sub)
}

func bindGrade(ctx echo.Context) (int, map[int]int, error) {
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		// scores are decoded raw so a non-integer value is reported by the grader against its criterion
		var data struct {
			SubmissionID int                     `json:"submission_id"`
			Scores       map[int]json.RawMessage `json:"scores"`
		}
		if err := ctx.Bind(&data); err != nil {
			return 0, nil, errors.Wrap(err, "binding to GradeRequest")
		}
		if data.SubmissionID <= 0 {
			return 0, nil, errInvalidSubmissionID
		}
		return data.SubmissionID, submission.ParseJSONScores(data.Scores), nil
	}

	form, err := ctx.FormParams()
	if err != nil {
		return 0, nil, errors.Wrap(err, "parsing grading form")
	}
	submissionID, err := strconv.Atoi(form.Get(submissionIDField))
	if err != nil || submissionID <= 0 {
		return 0, nil, errInvalidSubmissionID
	}
	return submissionID, submission.ParseCriterionScores(form), nil
}

// notifyGraded emails the grade to the student. Failures are logged only.
func (api *assignmentApi) notifyGraded(ctx context.Context, a assignment.Assignment, sub submission.Submission) {
	student, err := api.deps.UserSvc.GetByID(ctx, sub.StudentID)
	if err != nil {
		api.deps.Logger.Error("finding graded student", err, map[string]interface{}{"submission_id": sub.ID})
		return
	}
	rubric, err := api.deps.AssignmentSvc.Criteria(ctx, a.ID)
	if err != nil {
		api.deps.Logger.Error("querying rubric criteria", err, map[string]interface{}{"assignment_id": a.ID})
		return
	}
	api.deps.MailSvc.SendMessages(submission.GradedMessage(student, a, rubric, sub))
}
