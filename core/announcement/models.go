package announcement

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
)

type Announcement struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
	CourseID  *int      `json:"course_id"`  // nil: general announcement
	CreatedBy int       `json:"created_by"`
}

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	Title    string `json:"title" validate:"required,max=150"`
	Body     string `json:"body" validate:"required"`
	CourseID int    `json:"course_id" validate:"gte=0"`
}

func (na *NewAnnouncement) Validate(ctx context.Context, validate *validator.Validate, courses CourseChecker) error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return courses.CheckExists(ctx, na.CourseID, "course_id")
}

type QueryFilter struct {
	CourseID int // 0: any course
	Limit    int // 0: no limit
}
