package submission

import (
	"time"

	"github.com/trezcool/classroom/core/assignment"
)

// BadgedAssignment is an assignment as seen by one student.
type BadgedAssignment struct {
	assignment.Assignment
	Badge      assignment.Badge `json:"progress_badge"`
	Submission *Submission      `json:"submission"`
}

// BadgeAll derives the badge of every assignment from the student's submissions, indexed by assignment ID.
func BadgeAll(assignments []assignment.Assignment, subs map[int]Submission, now time.Time) []BadgedAssignment {
	out := make([]BadgedAssignment, 0, len(assignments))
	for _, a := range assignments {
		var sub *Submission
		if s, ok := subs[a.ID]; ok {
			s := s
			sub = &s
		}
		out = append(out, BadgedAssignment{
			Assignment: a,
			Badge:      assignment.DeriveBadge(a, sub.Progress(), now),
			Submission: sub,
		})
	}
	return out
}
