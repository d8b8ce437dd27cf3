package tests

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/classroom/apps/api/echo"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/tests"
)

type people struct {
	instructor, ta, student, other user.User
}

func createPeople(t *testing.T, app *testApp) people {
	return people{
		instructor: testutil.CreateUser(t, app.usrRepo, "prof", "prof@test.cd", password, user.RoleInstructor),
		ta:         testutil.CreateUser(t, app.usrRepo, "helper", "helper@test.cd", password, user.RoleTA),
		student:    testutil.CreateUser(t, app.usrRepo, "kid", "kid@test.cd", password, user.RoleStudent),
		other:      testutil.CreateUser(t, app.usrRepo, "pal", "pal@test.cd", password, user.RoleStudent),
	}
}

func gradeForm(submissionID int, scores map[int]string) url.Values {
	form := url.Values{"submission_id": {strconv.Itoa(submissionID)}}
	for id, v := range scores {
		form.Set(fmt.Sprintf("criterion_%d", id), v)
	}
	return form
}

func Test_assignmentApi_query(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	now := time.Now()

	past, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Past", now.Add(-48*time.Hour), p.instructor.ID, 10)
	soon, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Soon", now.Add(24*time.Hour), p.instructor.ID, 10)
	later, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Later", now.Add(72*time.Hour), p.instructor.ID, 10)
	testutil.CreateSubmission(t, app.submissionRepo, soon.ID, p.student.ID, now)

	labels := func(t *testing.T, token string, path string) ([]int, []string) {
		rec := app.do(newAuthRequest(http.MethodGet, path, token))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []submission.BadgedAssignment
		decode(t, rec, &got)
		ids := make([]int, 0, len(got))
		badges := make([]string, 0, len(got))
		for _, a := range got {
			ids = append(ids, a.ID)
			badges = append(badges, a.Badge.Label)
		}
		return ids, badges
	}

	t.Run("auth required", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, "/v1/assignments", ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("student", func(t *testing.T) {
		ids, badges := labels(t, getToken(t, p.student), "/v1/assignments")
		assert.Equal(t, []int{past.ID, soon.ID, later.ID}, ids)
		assert.Equal(t, []string{"Overdue", "Submitted", "Pending"}, badges)
	})

	t.Run("other student", func(t *testing.T) {
		_, badges := labels(t, getToken(t, p.other), "/v1/assignments")
		assert.Equal(t, []string{"Overdue", "Pending", "Pending"}, badges)
	})

	t.Run("staff has no submissions", func(t *testing.T) {
		_, badges := labels(t, getToken(t, p.ta), "/v1/assignments")
		assert.Equal(t, []string{"Overdue", "Pending", "Pending"}, badges)
	})

	t.Run("ordering", func(t *testing.T) {
		ids, _ := labels(t, getToken(t, p.student), "/v1/assignments?ordering=-due_date")
		assert.Equal(t, []int{later.ID, soon.ID, past.ID}, ids)
	})
}

func Test_assignmentApi_create(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	c := testutil.CreateCourse(t, app.courseRepo, "Algebra", "MATH101")
	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	body := func(courseID int) []byte {
		return marshalObj(t, map[string]interface{}{
			"title":       " Essay ",
			"description": "Write it",
			"due_date":    due,
			"category":    "PROJECT",
			"course_id":   courseID,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{name: "student denied", method: http.MethodPost, path: "/v1/assignments", body: body(0), token: getToken(t, p.student), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)},
		{name: "ta denied", method: http.MethodPost, path: "/v1/assignments", body: body(0), token: getToken(t, p.ta), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)},
		{name: "unknown course", method: http.MethodPost, path: "/v1/assignments", body: body(99), token: getToken(t, p.instructor), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{
			"course_id": "Not a valid choice.",
		})},
		{name: "missing fields", method: http.MethodPost, path: "/v1/assignments", body: []byte(`{}`), token: getToken(t, p.instructor), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{
			"title":       "this field is required",
			"description": "this field is required",
			"due_date":    "this field is required",
		})},
	})

	t.Run("valid", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPost, "/v1/assignments", getToken(t, p.instructor), body(c.ID)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var a assignment.Assignment
		decode(t, rec, &a)
		assert.Equal(t, "Essay", a.Title)
		assert.Equal(t, assignment.CategoryProject, a.Category)
		assert.Equal(t, assignment.DefaultPoints, a.Points)
		assert.True(t, a.AllowSubmissions)
		assert.Equal(t, p.instructor.ID, a.CreatedBy)
		require.NotNil(t, a.CourseID)
		assert.Equal(t, c.ID, *a.CourseID)
		assert.True(t, due.Equal(a.DueDate))

		criteria, err := app.assignmentRepo.QueryCriteria(context.Background(), a.ID)
		require.NoError(t, err)
		require.Len(t, criteria, 1)
		assert.Equal(t, "Overall Quality", criteria[0].Title)
		assert.Equal(t, assignment.DefaultPoints, criteria[0].MaxPoints)
	})
}

func Test_assignmentApi_retrieve(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	a, criteria := testutil.CreateAssignment(t, app.assignmentRepo, "Essay", time.Now().Add(24*time.Hour), p.instructor.ID, 5, 5)
	sub := testutil.CreateSubmission(t, app.submissionRepo, a.ID, p.student.ID, time.Now())

	t.Run("not found", func(t *testing.T) {
		for _, path := range []string{"/v1/assignments/99", "/v1/assignments/abc"} {
			rec := app.do(newAuthRequest(http.MethodGet, path, getToken(t, p.student)))
			assert.Equal(t, http.StatusNotFound, rec.Code, path)
		}
	})

	t.Run("student", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/assignments/%d", a.ID), getToken(t, p.student)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got echoapi.AssignmentDetail
		decode(t, rec, &got)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, criteria, got.Criteria)
		require.NotNil(t, got.Badge)
		assert.Equal(t, assignment.BadgeSubmitted, *got.Badge)
		require.NotNil(t, got.Submission)
		assert.Equal(t, sub.ID, got.Submission.ID)
		assert.Empty(t, got.Submissions)
	})

	t.Run("student without submission", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/assignments/%d", a.ID), getToken(t, p.other)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got echoapi.AssignmentDetail
		decode(t, rec, &got)
		require.NotNil(t, got.Badge)
		assert.Equal(t, assignment.BadgePending, *got.Badge)
		assert.Nil(t, got.Submission)
	})

	t.Run("staff", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/assignments/%d", a.ID), getToken(t, p.ta)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got echoapi.AssignmentDetail
		decode(t, rec, &got)
		assert.Nil(t, got.Badge)
		require.Len(t, got.Submissions, 1)
		assert.Equal(t, sub.ID, got.Submissions[0].ID)
	})
}

func Test_assignmentApi_destroy(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	a, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Essay", time.Now(), p.instructor.ID, 5)
	sub := testutil.CreateSubmission(t, app.submissionRepo, a.ID, p.student.ID)
	path := fmt.Sprintf("/v1/assignments/%d", a.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "ta denied", method: http.MethodDelete, path: path, token: getToken(t, p.ta), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)},
		{name: "unknown", method: http.MethodDelete, path: "/v1/assignments/99", token: getToken(t, p.instructor), wantCode: http.StatusNotFound},
		{name: "deleted", method: http.MethodDelete, path: path, token: getToken(t, p.instructor), wantCode: http.StatusNoContent},
		{name: "gone", path: path, token: getToken(t, p.instructor), wantCode: http.StatusNotFound},
	})

	ctx := context.Background()
	_, err := app.submissionRepo.GetSubmission(ctx, submission.GetFilter{ID: sub.ID})
	assert.Equal(t, submission.ErrNotFound, err)
	criteria, err := app.assignmentRepo.QueryCriteria(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, criteria)
}

func Test_assignmentApi_criteria(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	a, criteria := testutil.CreateAssignment(t, app.assignmentRepo, "Essay", time.Now(), p.instructor.ID, 5)
	path := fmt.Sprintf("/v1/assignments/%d/criteria", a.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "list", path: path, token: getToken(t, p.student), wantCode: http.StatusOK, wantData: marshalObj(t, criteria)},
		{name: "student cannot add", method: http.MethodPost, path: path, body: []byte(`{"title":"Style","max_points":3}`), token: getToken(t, p.student), wantCode: http.StatusForbidden},
		{name: "max_points required", method: http.MethodPost, path: path, body: []byte(`{"title":"Style"}`), token: getToken(t, p.ta), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{
			"max_points": "this field is required",
		})},
		{name: "negative max_points", method: http.MethodPost, path: path, body: []byte(`{"title":"Style","max_points":-1}`), token: getToken(t, p.ta), wantCode: http.StatusBadRequest},
		{name: "unknown assignment", method: http.MethodPost, path: "/v1/assignments/99/criteria", body: []byte(`{"title":"Style","max_points":3}`), token: getToken(t, p.ta), wantCode: http.StatusNotFound},
	})

	t.Run("add then remove", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPost, path, getToken(t, p.ta), []byte(`{"title":" Style ","max_points":0}`)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c assignment.Criterion
		decode(t, rec, &c)
		assert.Equal(t, "Style", c.Title)
		assert.Equal(t, 0, c.MaxPoints)
		assert.Equal(t, a.ID, c.AssignmentID)

		rec = app.do(newAuthRequest(http.MethodDelete, fmt.Sprintf("%s/%d", path, criteria[0].ID), getToken(t, p.instructor)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.do(newAuthRequest(http.MethodDelete, fmt.Sprintf("%s/%d", path, criteria[0].ID), getToken(t, p.instructor)))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		got, err := app.assignmentRepo.QueryCriteria(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, []assignment.Criterion{c}, got)
	})
}

func Test_assignmentApi_submit(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	a, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Essay", time.Now().Add(time.Hour), p.instructor.ID, 5)
	path := fmt.Sprintf("/v1/assignments/%d/submission", a.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "staff cannot submit", method: http.MethodPost, path: path, body: []byte(`{"content":"x"}`), token: getToken(t, p.ta), wantCode: http.StatusForbidden},
		{name: "content required", method: http.MethodPost, path: path, body: []byte(`{}`), token: getToken(t, p.student), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{
			"content": "this field is required",
		})},
	})

	var first submission.Submission
	t.Run("submit", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPost, path, getToken(t, p.student), []byte(`{"content":"draft"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &first)
		assert.Equal(t, "draft", first.Content)
		assert.Equal(t, submission.StatusSubmitted, first.Status)
		assert.NotNil(t, first.SubmittedAt)
	})

	t.Run("resubmit replaces", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPost, path, getToken(t, p.student), []byte(`{"content":"final"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got submission.Submission
		decode(t, rec, &got)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "final", got.Content)
	})

	t.Run("closed", func(t *testing.T) {
		closed, err := app.assignmentRepo.CreateAssignment(context.Background(), assignment.Assignment{
			Title:     "Closed",
			DueDate:   time.Now().Add(time.Hour),
			Points:    5,
			CreatedBy: p.instructor.ID,
		}, nil)
		require.NoError(t, err)

		rec := app.do(newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/assignments/%d/submission", closed.ID), getToken(t, p.student), []byte(`{"content":"late"}`)))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: submission.ErrSubmissionsClosed.Error()}),
		}, rec)
	})
}

func Test_assignmentApi_grade(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	a, criteria := testutil.CreateAssignment(t, app.assignmentRepo, "Essay", time.Now(), p.instructor.ID, 10, 5)
	b, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Other", time.Now(), p.instructor.ID, 10)
	sub := testutil.CreateSubmission(t, app.submissionRepo, a.ID, p.student.ID)
	path := fmt.Sprintf("/v1/assignments/%d/grade", a.ID)
	c1, c2 := criteria[0], criteria[1]

	t.Run("student denied", func(t *testing.T) {
		form := gradeForm(sub.ID, map[int]string{c1.ID: "10", c2.ID: "5"})
		rec := app.do(newFormRequest(path, getToken(t, p.student), form))
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)}, rec)
	})

	invalid := []struct {
		name      string
		scores    map[int]string
		criterion assignment.Criterion
	}{
		{"above max", map[int]string{c1.ID: "11", c2.ID: "5"}, c1},
		{"negative", map[int]string{c1.ID: "10", c2.ID: "-1"}, c2},
		{"missing", map[int]string{c1.ID: "10"}, c2},
		{"not a number", map[int]string{c1.ID: "ten", c2.ID: "5"}, c1},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(newFormRequest(path, getToken(t, p.ta), gradeForm(sub.ID, tt.scores)))
			checkCodeAndData(t, httpTest{
				wantCode: http.StatusBadRequest,
				wantData: marshalObj(t, map[string]interface{}{
					"error":        fmt.Sprintf("Invalid points for %s.", tt.criterion.Title),
					"criterion_id": tt.criterion.ID,
				}),
			}, rec)

			got := app.getSubmission(t, sub.ID)
			assert.Equal(t, submission.StatusSubmitted, got.Status)
			assert.Nil(t, got.Score)
			assert.Nil(t, got.RubricScores)
		})
	}

	t.Run("json non-integer score", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"submission_id": %d, "scores": {"%d": 5, "%d": 55.5}}`, sub.ID, c1.ID, c2.ID))
		rec := app.do(newAuthRequest(http.MethodPost, path, getToken(t, p.ta), body))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]interface{}{
				"error":        fmt.Sprintf("Invalid points for %s.", c2.Title),
				"criterion_id": c2.ID,
			}),
		}, rec)
		assert.Nil(t, app.getSubmission(t, sub.ID).Score)
	})

	t.Run("bad submission_id", func(t *testing.T) {
		rec := app.do(newFormRequest(path, getToken(t, p.ta), url.Values{"submission_id": {"abc"}}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("submission of another assignment", func(t *testing.T) {
		form := gradeForm(sub.ID, map[int]string{c1.ID: "10"})
		rec := app.do(newFormRequest(fmt.Sprintf("/v1/assignments/%d/grade", b.ID), getToken(t, p.ta), form))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("form", func(t *testing.T) {
		form := gradeForm(sub.ID, map[int]string{c1.ID: "7", c2.ID: "5"})
		form.Set("criterion_999", "1000")
		rec := app.do(newFormRequest(path, getToken(t, p.ta), form))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := app.getSubmission(t, sub.ID)
		assert.Equal(t, submission.StatusGraded, got.Status)
		require.NotNil(t, got.Score)
		assert.Equal(t, 12, *got.Score)
		assert.Equal(t, map[int]int{c1.ID: 7, c2.ID: 5}, got.RubricScores)
		assert.NotNil(t, got.SubmittedAt)

		sent := app.mail.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, p.student.Email, sent[0].To[0].Address)
		assert.Equal(t, "Your submission for Essay was graded", sent[0].Subject)
		assert.Contains(t, sent[0].TextContent, "graded: 12/15.")
	})

	t.Run("json regrade", func(t *testing.T) {
		body := marshalObj(t, echoapi.GradeRequest{SubmissionID: sub.ID, Scores: map[int]int{c1.ID: 3, c2.ID: 0}})
		rec := app.do(newAuthRequest(http.MethodPost, path, getToken(t, p.instructor), body))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got submission.Submission
		decode(t, rec, &got)
		require.NotNil(t, got.Score)
		assert.Equal(t, 3, *got.Score)
		assert.Equal(t, map[int]int{c1.ID: 3, c2.ID: 0}, got.RubricScores)
		assert.Len(t, app.mail.Sent(), 2)
	})

	t.Run("rejected regrade keeps grade", func(t *testing.T) {
		body := marshalObj(t, echoapi.GradeRequest{SubmissionID: sub.ID, Scores: map[int]int{c1.ID: 3}})
		rec := app.do(newAuthRequest(http.MethodPost, path, getToken(t, p.instructor), body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		got := app.getSubmission(t, sub.ID)
		require.NotNil(t, got.Score)
		assert.Equal(t, 3, *got.Score)
		assert.Equal(t, map[int]int{c1.ID: 3, c2.ID: 0}, got.RubricScores)
	})
}
