package submission

import (
	"net/mail"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/user"
)

type gradedLine struct {
	Title     string
	Awarded   int
	MaxPoints int
}

// GradedMessage builds the email telling a student their submission was graded.
func GradedMessage(student user.User, a assignment.Assignment, rubric []assignment.Criterion, sub Submission) *core.EmailMessage {
	lines := make([]gradedLine, 0, len(rubric))
	for _, c := range rubric {
		if pts, ok := sub.RubricScores[c.ID]; ok {
			lines = append(lines, gradedLine{Title: c.Title, Awarded: pts, MaxPoints: c.MaxPoints})
		}
	}
	var score int
	if sub.Score != nil {
		score = *sub.Score
	}

	return &core.EmailMessage{
		To:           []mail.Address{{Name: student.Username, Address: student.Email}},
		Subject:      "Your submission for " + a.Title + " was graded",
		TemplateName: "submission_graded",
		TemplateData: map[string]interface{}{
			"Username":        student.Username,
			"AssignmentID":    a.ID,
			"AssignmentTitle": a.Title,
			"Score":           score,
			"Points":          a.Points,
			"Lines":           lines,
		},
	}
}
