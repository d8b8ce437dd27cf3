package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
)

// InvalidScoreError reports a rubric score that is missing or outside [0, MaxPoints] of its criterion.
type InvalidScoreError struct {
	CriterionID    int
	CriterionTitle string
}

func (e InvalidScoreError) Error() string {
	return fmt.Sprintf("Invalid points for %s.", e.CriterionTitle)
}

// IsInvalidScore reports whether the cause of err is an InvalidScoreError.
func IsInvalidScore(err error) bool {
	switch errors.Cause(err).(type) {
	case InvalidScoreError, *InvalidScoreError:
		return true
	}
	return false
}

// CriteriaSource provides the rubric of an assignment.
type CriteriaSource interface {
	QueryCriteria(ctx context.Context, assignmentID int) ([]assignment.Criterion, error)
}

// Grader applies rubric scores to submissions.
type Grader struct {
	subs     Repository
	criteria CriteriaSource
	nowFunc  func() time.Time
}

func NewGrader(subs Repository, criteria CriteriaSource) *Grader {
	vala.BeginValidation().Validate(
		vala.IsNotNil(subs, "subs"),
		vala.IsNotNil(criteria, "criteria"),
	).CheckAndPanic()

	return &Grader{subs: subs, criteria: criteria, nowFunc: core.UTCNow}
}

// Grade scores a submission against the rubric of its assignment.
// Every criterion of the rubric needs a score; scores for unknown criteria are ignored.
// Nothing is written unless the whole score set is valid.
func (g *Grader) Grade(ctx context.Context, submissionID int, scores map[int]int) (Submission, error) {
	return g.grade(ctx, GetFilter{ID: submissionID}, scores)
}

// GradeForAssignment is Grade for a submission that must belong to the given assignment.
func (g *Grader) GradeForAssignment(ctx context.Context, assignmentID, submissionID int, scores map[int]int) (Submission, error) {
	return g.grade(ctx, GetFilter{ID: submissionID, AssignmentID: assignmentID}, scores)
}

func (g *Grader) grade(ctx context.Context, filter GetFilter, scores map[int]int) (Submission, error) {
	sub, err := g.subs.GetSubmission(ctx, filter)
	if err != nil {
		return Submission{}, err
	}
	rubric, err := g.criteria.QueryCriteria(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "querying rubric criteria")
	}

	total, awarded, err := Score(rubric, scores)
	if err != nil {
		return Submission{}, err
	}

	sub.Score = &total
	sub.RubricScores = awarded
	sub.Status = StatusGraded
	if sub.SubmittedAt == nil {
		now := g.nowFunc()
		sub.SubmittedAt = &now
	}
	sub, err = g.subs.UpdateSubmission(ctx, sub)
	return sub, errors.Wrap(err, "saving grade")
}

// Score checks scores against rubric and returns the total and the awarded points per criterion.
// The first offending criterion, in rubric order, is reported as an InvalidScoreError.
func Score(rubric []assignment.Criterion, scores map[int]int) (int, map[int]int, error) {
	total := 0
	awarded := make(map[int]int, len(rubric))
	for _, c := range rubric {
		pts, ok := scores[c.ID]
		if !ok || pts < 0 || pts > c.MaxPoints {
			return 0, nil, InvalidScoreError{CriterionID: c.ID, CriterionTitle: c.Title}
		}
		awarded[c.ID] = pts
		total += pts
	}
	return total, awarded, nil
}
