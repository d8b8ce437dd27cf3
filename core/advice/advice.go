// Package advice builds study plans with an external text generator.
package advice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/assignment"
)

// ErrUnavailable is returned when no study plan could be generated.
var ErrUnavailable = errors.New("Study plan advice is unavailable right now.")

// Generator turns the topics a student asks about and the summary of their pending work into advice.
type Generator interface {
	Generate(ctx context.Context, topics, pending string) (string, error)
}

// PendingSummary lists the assignments not in submitted, ordered by due date, one per line.
func PendingSummary(assignments []assignment.Assignment, submitted map[int]bool) string {
	pending := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !submitted[a.ID] {
			pending = append(pending, a)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].DueDate.Before(pending[j].DueDate) })

	var sb strings.Builder
	for _, a := range pending {
		fmt.Fprintf(&sb, "- %s, due %s (%d points)\n", a.Title, a.DueDate.Format("2006-01-02"), a.Points)
	}
	return sb.String()
}

type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	// vala.IsNotNil panics on struct generators like advicesvc.Unavailable.
	if gen == nil {
		panic("advice: nil generator")
	}

	return &Service{gen: gen}
}

// Plan asks the generator for a study plan. Any generator failure is reported as ErrUnavailable.
func (svc *Service) Plan(ctx context.Context, topics string, assignments []assignment.Assignment, submitted map[int]bool) (string, error) {
	advice, err := svc.gen.Generate(ctx, strings.TrimSpace(topics), PendingSummary(assignments, submitted))
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	if strings.TrimSpace(advice) == "" {
		return "", ErrUnavailable
	}
	return advice, nil
}
