package submission

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
)

var (
	// errors
	ErrNotFound          = errors.New("submission not found")
	ErrSubmissionsClosed = errors.New("Submissions are closed for this assignment.")
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		// GetSubmission returns the submission matching all the set fields of filter.
		GetSubmission(ctx context.Context, filter GetFilter) (Submission, error)
		// QuerySubmissions returns the submissions matching filter ordered by ID.
		QuerySubmissions(ctx context.Context, filter QueryFilter) ([]Submission, error)
		// UpdateSubmission replaces every mutable field of the stored submission in one atomic write.
		UpdateSubmission(ctx context.Context, s Submission) (Submission, error)
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()

	return &Service{repo: repo, nowFunc: core.UTCNow}
}

// Submit creates or replaces the single submission of a student to an assignment.
// A previous grade is kept but the submission goes back to the Submitted status.
func (svc *Service) Submit(ctx context.Context, a assignment.Assignment, studentID int, ns NewSubmission) (Submission, error) {
	if !a.AllowSubmissions {
		return Submission{}, core.NewValidationError(ErrSubmissionsClosed)
	}
	now := svc.nowFunc()

	sub, err := svc.repo.GetSubmission(ctx, GetFilter{AssignmentID: a.ID, StudentID: studentID})
	switch errors.Cause(err) {
	case nil:
		sub.Content = ns.Content
		sub.SubmittedAt = &now
		sub.Status = StatusSubmitted
		sub, err = svc.repo.UpdateSubmission(ctx, sub)
		return sub, errors.Wrap(err, "updating submission")
	case ErrNotFound:
		sub, err = svc.repo.CreateSubmission(ctx, Submission{
			AssignmentID: a.ID,
			StudentID:    studentID,
			Content:      ns.Content,
			SubmittedAt:  &now,
			Status:       StatusSubmitted,
		})
		return sub, errors.Wrap(err, "creating submission")
	default:
		return Submission{}, errors.Wrap(err, "finding submission")
	}
}

func (svc *Service) Get(ctx context.Context, filter GetFilter) (Submission, error) {
	return svc.repo.GetSubmission(ctx, filter)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, filter)
}

// ByAssignment indexes the submissions of a student by assignment ID.
func (svc *Service) ByAssignment(ctx context.Context, studentID int) (map[int]Submission, error) {
	subs, err := svc.repo.QuerySubmissions(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	idx := make(map[int]Submission, len(subs))
	for _, s := range subs {
		idx[s.AssignmentID] = s
	}
	return idx, nil
}
