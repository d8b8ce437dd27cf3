package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, uname, email, pwd, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, name, code string) course.Course {
	c, err := repo.CreateCourse(context.Background(), course.Course{Name: name, Code: code})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// CreateAssignment stores an open assignment with one criterion per entry of maxPoints.
func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	title string,
	due time.Time,
	createdBy int,
	maxPoints ...int,
) (assignment.Assignment, []assignment.Criterion) {
	points := 0
	criteria := make([]assignment.Criterion, 0, len(maxPoints))
	for i, pts := range maxPoints {
		points += pts
		criteria = append(criteria, assignment.Criterion{
			Title:     string(rune('A' + i)),
			MaxPoints: pts,
		})
	}

	ctx := context.Background()
	a, err := repo.CreateAssignment(ctx, assignment.Assignment{
		Title:            title,
		Description:      title,
		DueDate:          due.UTC(),
		Points:           points,
		Category:         assignment.CategoryHomework,
		Status:           assignment.StatusPublished,
		AllowSubmissions: true,
		CreatedBy:        createdBy,
	}, criteria)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	criteria, err = repo.QueryCriteria(ctx, a.ID)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a, criteria
}

func CreateSubmission(t *testing.T, repo submission.Repository, assignmentID, studentID int, submittedAt ...time.Time) submission.Submission {
	sub := submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      "my work",
		Status:       submission.StatusSubmitted,
	}
	if len(submittedAt) > 0 {
		at := submittedAt[0].UTC()
		sub.SubmittedAt = &at
	}
	sub, err := repo.CreateSubmission(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}

// Clock returns a constant clock set at ts.
func Clock(ts time.Time) func() time.Time {
	return func() time.Time { return ts.UTC() }
}
