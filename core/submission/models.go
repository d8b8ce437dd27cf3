package submission

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core/assignment"
)

// Statuses
const (
	StatusSubmitted = "Submitted"
	StatusGraded    = "Graded"
)

type Submission struct {
	ID           int         `json:"id"`
	AssignmentID int         `json:"assignment_id"`
	StudentID    int         `json:"student_id"`
	Content      string      `json:"content"`
	SubmittedAt  *time.Time  `json:"submitted_at"` // UTC
	Status       string      `json:"status"`
	Score        *int        `json:"score"`         // nil until graded
	RubricScores map[int]int `json:"rubric_scores"` // criterion ID -> awarded points; nil until graded
}

func (s Submission) IsGraded() bool { return s.Status == StatusGraded }

// Progress summarizes s for assignment.DeriveBadge.
func (s *Submission) Progress() assignment.Progress {
	if s == nil {
		return assignment.Progress{}
	}
	return assignment.Progress{Submitted: true, Graded: s.IsGraded()}
}

// Copy returns a deep copy of s.
func (s Submission) Copy() Submission {
	if s.SubmittedAt != nil {
		at := *s.SubmittedAt
		s.SubmittedAt = &at
	}
	if s.Score != nil {
		score := *s.Score
		s.Score = &score
	}
	if s.RubricScores != nil {
		scores := make(map[int]int, len(s.RubricScores))
		for k, v := range s.RubricScores {
			scores[k] = v
		}
		s.RubricScores = scores
	}
	return s
}

// NewSubmission contains the work a student hands in.
type NewSubmission struct {
	Content string `json:"content" validate:"required"`
}

func (ns *NewSubmission) Validate(_ context.Context, validate *validator.Validate) error {
	return validate.Struct(ns)
}

type GetFilter struct {
	ID           int
	AssignmentID int
	StudentID    int
}

type QueryFilter struct {
	AssignmentID int
	StudentID    int
	// AssignmentCreator selects submissions to assignments created by this user.
	AssignmentCreator int
	Ungraded          bool
}
