package selection

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/course"
)

// errors
var ErrNotFound = errors.New("class selection not found")

type (
	Repository interface {
		GetSelection(ctx context.Context, userID int) (Selection, error)
		// SaveSelection replaces the whole selection of a user, creating it if needed.
		SaveSelection(ctx context.Context, sel Selection) error
	}

	// Courses resolves course references.
	Courses interface {
		GetByID(ctx context.Context, id int) (course.Course, error)
		Query(ctx context.Context, filter course.QueryFilter) ([]course.Course, error)
	}

	Service struct {
		repo    Repository
		courses Courses
	}
)

func NewService(repo Repository, courses Courses) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(courses, "courses"),
	).CheckAndPanic()

	return &Service{repo: repo, courses: courses}
}

// Get returns the entries of a user in stored order; empty when the user never chose any.
func (svc *Service) Get(ctx context.Context, userID int) ([]Entry, error) {
	sel, err := svc.repo.GetSelection(ctx, userID)
	switch errors.Cause(err) {
	case nil:
		if sel.Entries == nil {
			return []Entry{}, nil
		}
		return sel.Entries, nil
	case ErrNotFound:
		return []Entry{}, nil
	default:
		return nil, errors.Wrap(err, "getting class selection")
	}
}

// SelectedCourseIDs returns the course references of a user's selection in order.
func (svc *Service) SelectedCourseIDs(ctx context.Context, userID int) ([]int, error) {
	entries, err := svc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.Kind == KindCourse {
			ids = append(ids, e.CourseID)
		}
	}
	return ids, nil
}

// Set replaces the selection of a user with references to courseIDs, in the given order.
// Ad hoc cards of the previous selection are dropped.
func (svc *Service) Set(ctx context.Context, userID int, courseIDs []int) error {
	if err := svc.checkCourses(ctx, courseIDs); err != nil {
		return err
	}
	entries := make([]Entry, 0, len(courseIDs))
	for _, id := range courseIDs {
		entries = append(entries, CourseEntry(id))
	}
	return errors.Wrap(svc.repo.SaveSelection(ctx, Selection{UserID: userID, Entries: entries}), "saving class selection")
}

func (svc *Service) checkCourses(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	courses, err := svc.courses.Query(ctx, course.QueryFilter{IDs: ids})
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	known := make(map[int]bool, len(courses))
	for _, c := range courses {
		known[c.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return core.NewValidationError(nil, core.FieldError{
				Field: "courses",
				Error: fmt.Sprintf("%d is not a valid choice.", id),
			})
		}
	}
	return nil
}

// ResolveCard turns an entry into a displayable card.
// ok is false when the entry references a course that no longer exists.
func (svc *Service) ResolveCard(ctx context.Context, e Entry) (Card, bool, error) {
	if e.Kind == KindCard {
		return e.Card, true, nil
	}
	c, err := svc.courses.GetByID(ctx, e.CourseID)
	switch errors.Cause(err) {
	case nil:
		return Card{
			Title:       c.Name,
			CourseCode:  c.Code,
			Description: c.Description,
			Link:        CourseLink(c.ID),
		}, true, nil
	case course.ErrNotFound:
		return Card{}, false, nil
	default:
		return Card{}, false, errors.Wrap(err, "resolving class card")
	}
}

// Cards resolves the whole selection of a user, skipping dangling references.
func (svc *Service) Cards(ctx context.Context, userID int) ([]Card, error) {
	entries, err := svc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards := make([]Card, 0, len(entries))
	for _, e := range entries {
		card, ok, err := svc.ResolveCard(ctx, e)
		if err != nil {
			return nil, err
		}
		if ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func CourseLink(id int) string {
	return "/courses/" + strconv.Itoa(id)
}
