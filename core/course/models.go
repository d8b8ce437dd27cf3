package course

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
)

type Course struct {
	ID          int    `json:"id"`
	Name        string `json:"course_name"`
	Code        string `json:"course_code"`
	Description string `json:"description"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"course_name" validate:"required,max=100"`
	Code        string `json:"course_code" validate:"required,max=20"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nc.Name, nc.Code)
}

type QueryFilter struct {
	IDs []int // nil: all courses
}
