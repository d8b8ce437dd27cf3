package course

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
	ErrExists   = errors.New("Course with that name or code already exists.")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrExists when a course already has the name or the code.
		CheckUniqueness(ctx context.Context, name, code string) error
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		// QueryCourses returns the courses ordered by name.
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
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

func (svc *Service) checkUniqueness(ctx context.Context, name, code string) error {
	if err := svc.repo.CheckUniqueness(ctx, name, code); err != nil {
		if errors.Cause(err) == ErrExists {
			return core.NewValidationError(ErrExists)
		}
		return errors.Wrap(err, "checking course uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, Course{
		Name:        nc.Name,
		Code:        nc.Code,
		Description: nc.Description,
	})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

// CheckExists turns an unknown course id into a validation error on field.
// The zero id stands for "general" items and is always accepted.
func (svc *Service) CheckExists(ctx context.Context, id int, field string) error {
	if id == 0 {
		return nil
	}
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: field, Error: "Not a valid choice."})
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return nil
}
