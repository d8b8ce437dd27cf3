package assignment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
)

// Categories
const (
	CategoryHomework = "homework"
	CategoryExam     = "exam"
	CategoryProject  = "project"
)

const (
	StatusPublished = "Published"
	DefaultPoints   = 100

	defaultCriterionTitle       = "Overall Quality"
	defaultCriterionDescription = "Default rubric criterion"
)

var (
	Categories = []string{CategoryHomework, CategoryExam, CategoryProject}

	// OrderingFields are the fields assignments may be ordered by.
	OrderingFields = []string{"id", "title", "due_date", "points", "category"}
)

type Assignment struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DueDate          time.Time `json:"due_date"` // UTC
	Points           int       `json:"points"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	AllowSubmissions bool      `json:"allow_submissions"`
	CourseID         *int      `json:"course_id"` // nil: general assignment
	CreatedBy        int       `json:"created_by"`
}

// Criterion is a named, point-bounded grading dimension of an assignment.
type Criterion struct {
	ID           int    `json:"id"`
	AssignmentID int    `json:"assignment_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MaxPoints    int    `json:"max_points"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title            string    `json:"title" validate:"required,max=150"`
	Description      string    `json:"description" validate:"required"`
	DueDate          time.Time `json:"due_date" validate:"required"`
	Points           *int      `json:"points" validate:"omitempty,gte=0"`
	Category         string    `json:"category" validate:"omitempty,category"`
	AllowSubmissions *bool     `json:"allow_submissions"`
	CourseID         int       `json:"course_id" validate:"gte=0"` // 0: general
}

func (na *NewAssignment) Validate(ctx context.Context, validate *validator.Validate, courses CourseChecker) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Category = core.CleanString(na.Category, true /* lower */)
	if na.Category == "" {
		na.Category = CategoryHomework
	}
	if na.Points == nil {
		pts := DefaultPoints
		na.Points = &pts
	}
	if na.AllowSubmissions == nil {
		allow := true
		na.AllowSubmissions = &allow
	}

	if err := validate.Struct(na); err != nil {
		return err
	}
	return courses.CheckExists(ctx, na.CourseID, "course_id")
}

// NewCriterion contains information needed to add a Criterion to an Assignment's rubric.
type NewCriterion struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description"`
	MaxPoints   *int   `json:"max_points" validate:"required,gte=0"`
}

func (nc *NewCriterion) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type QueryFilter struct {
	IDs       []int
	CourseID  int // 0: any course
	CreatedBy int // 0: any creator
	Limit     int // 0: no limit
	Ordering  []core.DBOrdering
}
