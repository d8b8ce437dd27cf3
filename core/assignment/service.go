package assignment

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

var (
	// errors
	ErrNotFound          = errors.New("assignment not found")
	ErrCriterionNotFound = errors.New("rubric criterion not found")
)

type (
	Repository interface {
		// CreateAssignment inserts the assignment and its initial rubric criteria atomically.
		CreateAssignment(ctx context.Context, a Assignment, criteria []Criterion) (Assignment, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		// QueryAssignments returns the assignments ordered by ascending due date unless filter.Ordering is set.
		QueryAssignments(ctx context.Context, filter QueryFilter) ([]Assignment, error)
		// DeleteAssignment deletes the assignment with its submissions and rubric criteria atomically.
		DeleteAssignment(ctx context.Context, id int) error
		CreateCriterion(ctx context.Context, c Criterion) (Criterion, error)
		DeleteCriterion(ctx context.Context, assignmentID, criterionID int) error
		// QueryCriteria returns the rubric of an assignment in creation order.
		QueryCriteria(ctx context.Context, assignmentID int) ([]Criterion, error)
	}

	// CourseChecker validates optional course references.
	CourseChecker interface {
		CheckExists(ctx context.Context, id int, field string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()

	return &Service{repo: repo}
}

// Create publishes a validated NewAssignment. Its rubric is seeded with one criterion covering all the points.
func (svc *Service) Create(ctx context.Context, na NewAssignment, createdBy int) (Assignment, error) {
	var points int
	if na.Points != nil {
		points = *na.Points
	}
	allow := na.AllowSubmissions == nil || *na.AllowSubmissions

	a := Assignment{
		Title:            na.Title,
		Description:      na.Description,
		DueDate:          na.DueDate.UTC(),
		Points:           points,
		Category:         na.Category,
		Status:           StatusPublished,
		AllowSubmissions: allow,
		CourseID:         core.IntPtr(na.CourseID),
		CreatedBy:        createdBy,
	}
	criteria := []Criterion{{
		Title:       defaultCriterionTitle,
		Description: defaultCriterionDescription,
		MaxPoints:   points,
	}}
	a, err := svc.repo.CreateAssignment(ctx, a, criteria)
	return a, errors.Wrap(err, "creating assignment")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteAssignment(ctx, id)
}

// AddCriterion appends a validated NewCriterion to the rubric of an assignment.
func (svc *Service) AddCriterion(ctx context.Context, assignmentID int, nc NewCriterion) (Criterion, error) {
	if _, err := svc.repo.GetAssignment(ctx, assignmentID); err != nil {
		return Criterion{}, err
	}
	var maxPoints int
	if nc.MaxPoints != nil {
		maxPoints = *nc.MaxPoints
	}
	c, err := svc.repo.CreateCriterion(ctx, Criterion{
		AssignmentID: assignmentID,
		Title:        nc.Title,
		Description:  nc.Description,
		MaxPoints:    maxPoints,
	})
	return c, errors.Wrap(err, "creating rubric criterion")
}

func (svc *Service) Criteria(ctx context.Context, assignmentID int) ([]Criterion, error) {
	return svc.repo.QueryCriteria(ctx, assignmentID)
}

// RemoveCriterion drops a criterion from the rubric. Existing grades keep their scores until regraded.
func (svc *Service) RemoveCriterion(ctx context.Context, assignmentID, criterionID int) error {
	return svc.repo.DeleteCriterion(ctx, assignmentID, criterionID)
}
