package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/core/submission"
	inmemdb "github.com/trezcool/classroom/storage/database/inmem"
	"github.com/trezcool/classroom/tests"
)

func TestAssignmentRepository(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	repo := inmemdb.NewAssignmentRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)

	now := time.Now()
	late, _ := testutil.CreateAssignment(t, repo, "Late", now.Add(2*time.Hour), 1, 10)
	early, criteria := testutil.CreateAssignment(t, repo, "Early", now.Add(time.Hour), 2, 5, 5)
	require.Len(t, criteria, 2)
	testutil.CreateSubmission(t, subRepo, early.ID, 3, now)
	kept := testutil.CreateSubmission(t, subRepo, late.ID, 3, now)

	t.Run("query", func(t *testing.T) {
		got, err := repo.QueryAssignments(ctx, assignment.QueryFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, early.ID, got[0].ID)

		got, err = repo.QueryAssignments(ctx, assignment.QueryFilter{
			Ordering: []core.DBOrdering{{Field: "title", Ascending: false}},
		})
		require.NoError(t, err)
		assert.Equal(t, late.ID, got[0].ID)

		got, err = repo.QueryAssignments(ctx, assignment.QueryFilter{CreatedBy: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, late.ID, got[0].ID)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, repo.DeleteAssignment(ctx, early.ID))

		_, err := repo.GetAssignment(ctx, early.ID)
		assert.Equal(t, assignment.ErrNotFound, errors.Cause(err))

		crits, err := repo.QueryCriteria(ctx, early.ID)
		require.NoError(t, err)
		assert.Empty(t, crits)

		subs, err := subRepo.QuerySubmissions(ctx, submission.QueryFilter{StudentID: 3})
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, kept.ID, subs[0].ID)

		assert.Equal(t, assignment.ErrNotFound, errors.Cause(repo.DeleteAssignment(ctx, early.ID)))
	})

	t.Run("criterion of another assignment", func(t *testing.T) {
		lateCriteria, err := repo.QueryCriteria(ctx, late.ID)
		require.NoError(t, err)
		require.Len(t, lateCriteria, 1)
		assert.Equal(t, assignment.ErrCriterionNotFound, errors.Cause(repo.DeleteCriterion(ctx, early.ID, lateCriteria[0].ID)))
	})
}

func TestSubmissionRepository_copies(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewSubmissionRepository(inmemdb.Open())

	sub := testutil.CreateSubmission(t, repo, 1, 2, time.Now())
	sub.Status = submission.StatusGraded
	sub.Score = core.IntPtr(3)
	sub.RubricScores = map[int]int{1: 3}
	_, err := repo.UpdateSubmission(ctx, sub)
	require.NoError(t, err)

	sub.RubricScores[1] = 0
	got, err := repo.GetSubmission(ctx, submission.GetFilter{ID: sub.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 3}, got.RubricScores, "stored scores must not alias the caller's map")
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewCourseRepository(inmemdb.Open())

	physics := testutil.CreateCourse(t, repo, "Physics", "PHY101")
	algebra := testutil.CreateCourse(t, repo, "Algebra", "MATH101")

	assert.Equal(t, course.ErrExists, errors.Cause(repo.CheckUniqueness(ctx, "Other", "PHY101")))
	_, err := repo.CreateCourse(ctx, course.Course{Name: "Algebra", Code: "X"})
	assert.Equal(t, course.ErrExists, errors.Cause(err))

	got, err := repo.QueryCourses(ctx, course.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []course.Course{algebra, physics}, got)

	got, err = repo.QueryCourses(ctx, course.QueryFilter{IDs: []int{physics.ID, 99}})
	require.NoError(t, err)
	assert.Equal(t, []course.Course{physics}, got)
}

func TestAnnouncementRepository(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewAnnouncementRepository(inmemdb.Open())

	now := time.Now().UTC()
	create := func(title string, at time.Time, courseID *int) announcement.Announcement {
		a, err := repo.CreateAnnouncement(ctx, announcement.Announcement{Title: title, Body: title, CreatedAt: at, CourseID: courseID})
		require.NoError(t, err)
		return a
	}
	old := create("old", now.Add(-time.Hour), nil)
	recent := create("recent", now, core.IntPtr(1))
	tie := create("tie", now, nil)

	got, err := repo.QueryAnnouncements(ctx, announcement.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{tie.ID, recent.ID, old.ID}, []int{got[0].ID, got[1].ID, got[2].ID})

	got, err = repo.QueryAnnouncements(ctx, announcement.QueryFilter{CourseID: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, recent.ID, got[0].ID)

	got, err = repo.QueryAnnouncements(ctx, announcement.QueryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, repo.DeleteAnnouncement(ctx, old.ID))
	assert.Equal(t, announcement.ErrNotFound, errors.Cause(repo.DeleteAnnouncement(ctx, old.ID)))
}

func TestSelectionRepository(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	repo := inmemdb.NewSelectionRepository(db)

	_, err := repo.GetSelection(ctx, 1)
	assert.Equal(t, selection.ErrNotFound, errors.Cause(err))

	entries := []selection.Entry{
		selection.CourseEntry(2),
		selection.CardEntry(selection.Card{Title: "Reading group", CourseCode: "RG"}),
	}
	require.NoError(t, repo.SaveSelection(ctx, selection.Selection{UserID: 1, Entries: entries}))

	got, err := repo.GetSelection(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entries, got.Entries)

	inmemdb.SaveRawSelection(db, 1, []byte(`["3", {"course_id": 4}, true]`))
	got, err = repo.GetSelection(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []selection.Entry{selection.CourseEntry(3), selection.CourseEntry(4)}, got.Entries)
}
