package submission_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/storage/database/inmem"
	"github.com/trezcool/classroom/tests"
)

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	asgRepo := inmemdb.NewAssignmentRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)
	svc := submission.NewService(subRepo)
	grader := submission.NewGrader(subRepo, asgRepo)

	asg, criteria := testutil.CreateAssignment(t, asgRepo, "Essay", gradedAt, 1, 10)

	first := time.Date(2024, 4, 18, 0, 0, 0, 0, time.UTC)
	svc.SetNowFunc(testutil.Clock(first))
	sub, err := svc.Submit(ctx, asg, 2, submission.NewSubmission{Content: "draft"})
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, sub.Status)
	assert.Equal(t, first, *sub.SubmittedAt)

	_, err = grader.Grade(ctx, sub.ID, map[int]int{criteria[0].ID: 8})
	require.NoError(t, err)

	second := first.Add(24 * time.Hour)
	svc.SetNowFunc(testutil.Clock(second))
	resub, err := svc.Submit(ctx, asg, 2, submission.NewSubmission{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resub.ID)
	assert.Equal(t, "final", resub.Content)
	assert.Equal(t, submission.StatusSubmitted, resub.Status)
	assert.Equal(t, second, *resub.SubmittedAt)

	subs, err := svc.Query(ctx, submission.QueryFilter{AssignmentID: asg.ID})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestService_Submit_closed(t *testing.T) {
	svc := submission.NewService(inmemdb.NewSubmissionRepository(inmemdb.Open()))

	_, err := svc.Submit(context.Background(), assignment.Assignment{ID: 1, AllowSubmissions: false}, 2, submission.NewSubmission{Content: "late"})
	require.Error(t, err)
	verr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, submission.ErrSubmissionsClosed, verr.Err)
}

func TestService_Query_pendingForCreator(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	asgRepo := inmemdb.NewAssignmentRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)
	svc := submission.NewService(subRepo)

	mine, crit := testutil.CreateAssignment(t, asgRepo, "Mine", gradedAt, 1, 10)
	other, _ := testutil.CreateAssignment(t, asgRepo, "Other", gradedAt, 5, 10)
	graded := testutil.CreateSubmission(t, subRepo, mine.ID, 2)
	pending := testutil.CreateSubmission(t, subRepo, mine.ID, 3)
	testutil.CreateSubmission(t, subRepo, other.ID, 2)

	_, err := submission.NewGrader(subRepo, asgRepo).Grade(ctx, graded.ID, map[int]int{crit[0].ID: 5})
	require.NoError(t, err)

	subs, err := svc.Query(ctx, submission.QueryFilter{AssignmentCreator: 1, Ungraded: true})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, pending.ID, subs[0].ID)

	byAsg, err := svc.ByAssignment(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, byAsg, 2)
	assert.Equal(t, submission.StatusGraded, byAsg[mine.ID].Status)
}

func TestBadgeAll(t *testing.T) {
	due := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC)
	submittedAt := time.Date(2024, 4, 18, 0, 0, 0, 0, time.UTC)

	asgs := []assignment.Assignment{
		{ID: 1, DueDate: due, AllowSubmissions: true},
		{ID: 2, DueDate: due, AllowSubmissions: true},
		{ID: 3, DueDate: due, AllowSubmissions: true},
		{ID: 4, DueDate: due, AllowSubmissions: false},
	}
	subs := map[int]submission.Submission{
		2: {ID: 10, AssignmentID: 2, Status: submission.StatusSubmitted, SubmittedAt: &submittedAt},
		3: {ID: 11, AssignmentID: 3, Status: submission.StatusGraded, SubmittedAt: &submittedAt},
	}

	got := submission.BadgeAll(asgs, subs, now)
	require.Len(t, got, 4)
	assert.Equal(t, assignment.BadgeOverdue, got[0].Badge)
	assert.Nil(t, got[0].Submission)
	assert.Equal(t, assignment.BadgeSubmitted, got[1].Badge)
	assert.Equal(t, 10, got[1].Submission.ID)
	assert.Equal(t, assignment.BadgeGraded, got[2].Badge)
	assert.Equal(t, assignment.BadgeClosed, got[3].Badge)
}
