package announcement

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

// errors
var ErrNotFound = errors.New("announcement not found")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id int) (Announcement, error)
		// QueryAnnouncements returns the newest announcements first.
		QueryAnnouncements(ctx context.Context, filter QueryFilter) ([]Announcement, error)
		DeleteAnnouncement(ctx context.Context, id int) error
	}

	// CourseChecker validates optional course references.
	CourseChecker interface {
		CheckExists(ctx context.Context, id int, field string) error
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

func (svc *Service) Create(ctx context.Context, na NewAnnouncement, createdBy int) (Announcement, error) {
	a, err := svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:     na.Title,
		Body:      na.Body,
		CreatedAt: svc.nowFunc(),
		CourseID:  core.IntPtr(na.CourseID),
		CreatedBy: createdBy,
	})
	return a, errors.Wrap(err, "creating announcement")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Announcement, error) {
	return svc.repo.GetAnnouncement(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteAnnouncement(ctx, id)
}
