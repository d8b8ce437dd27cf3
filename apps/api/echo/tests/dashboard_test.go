package tests

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/classroom/apps/api/echo"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/tests"
)

func Test_dashboardApi_home(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)
	algebra := testutil.CreateCourse(t, app.courseRepo, "Algebra", "MATH101")

	now := time.Now()
	for i := 0; i < 7; i++ {
		testutil.CreateAssignment(t, app.assignmentRepo, fmt.Sprintf("HW %d", i), now.Add(time.Duration(i+1)*time.Hour), p.instructor.ID, 10)
	}
	for i := 0; i < 4; i++ {
		body := []byte(fmt.Sprintf(`{"title":"Note %d","body":"..."}`, i))
		rec := app.do(newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, p.instructor), body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	token := getToken(t, p.student)
	rec := app.do(newAuthRequest(http.MethodPut, "/v1/classes", token, marshalObj(t, echoapi.ClassesRequest{Courses: []int{algebra.ID}})))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/home", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got echoapi.HomeResponse
	decode(t, rec, &got)

	require.Len(t, got.Assignments, 5)
	for i, a := range got.Assignments {
		assert.Equal(t, fmt.Sprintf("HW %d", i), a.Title, "assignments are listed by due date")
		assert.Equal(t, assignment.BadgePending, a.Badge)
	}

	require.Len(t, got.Announcements, 3)
	assert.Equal(t, "Note 3", got.Announcements[0].Title, "latest announcement first")

	assert.Equal(t, []selection.Card{
		{Title: "Algebra", CourseCode: "MATH101", Link: fmt.Sprintf("/courses/%d", algebra.ID)},
	}, got.Classes)
}

func Test_dashboardApi_dashboard(t *testing.T) {
	app := setup(t)
	p := createPeople(t, app)

	now := time.Now()
	graded, gradedCriteria := testutil.CreateAssignment(t, app.assignmentRepo, "Graded", now.Add(time.Hour), p.instructor.ID, 10)
	submitted, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Submitted", now.Add(2*time.Hour), p.instructor.ID, 10)
	overdue, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Overdue", now.Add(-time.Hour), p.instructor.ID, 10)
	foreign, _ := testutil.CreateAssignment(t, app.assignmentRepo, "Foreign", now.Add(3*time.Hour), p.ta.ID, 10)

	gradedSub := testutil.CreateSubmission(t, app.submissionRepo, graded.ID, p.student.ID, now)
	pendingSub := testutil.CreateSubmission(t, app.submissionRepo, submitted.ID, p.student.ID, now)
	testutil.CreateSubmission(t, app.submissionRepo, foreign.ID, p.other.ID, now)

	form := url.Values{
		"submission_id": {fmt.Sprint(gradedSub.ID)},
		fmt.Sprintf("criterion_%d", gradedCriteria[0].ID): {"7"},
	}
	rec := app.do(newFormRequest(fmt.Sprintf("/v1/assignments/%d/grade", graded.ID), getToken(t, p.instructor), form))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("instructor", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, p.instructor)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got echoapi.DashboardResponse
		decode(t, rec, &got)
		assert.Equal(t, "instructor", got.Mode)

		titles := make([]string, 0, len(got.Assignments))
		for _, a := range got.Assignments {
			titles = append(titles, a.Title)
		}
		assert.Equal(t, []string{"Overdue", "Graded", "Submitted"}, titles)

		require.Len(t, got.PendingSubmissions, 1)
		assert.Equal(t, pendingSub.ID, got.PendingSubmissions[0].ID)
	})

	t.Run("student", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, p.student)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got echoapi.DashboardResponse
		decode(t, rec, &got)
		assert.Equal(t, "student", got.Mode)
		assert.Empty(t, got.PendingSubmissions)

		badges := make(map[int]assignment.Badge, len(got.Assignments))
		for _, a := range got.Assignments {
			badges[a.ID] = a.Badge
		}
		assert.Equal(t, map[int]assignment.Badge{
			overdue.ID:   assignment.BadgeOverdue,
			graded.ID:    assignment.BadgeGraded,
			submitted.ID: assignment.BadgeSubmitted,
			foreign.ID:   assignment.BadgePending,
		}, badges)
	})
}
