package assignment

import "time"

// Badge is the short status label shown for an assignment in a listing.
type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

var (
	BadgeClosed    = Badge{Label: "Closed", Class: "bg-gray-100 text-gray-700"}
	BadgeGraded    = Badge{Label: "Graded", Class: "bg-green-100 text-green-700"}
	BadgeSubmitted = Badge{Label: "Submitted", Class: "bg-blue-100 text-blue-700"}
	BadgeOverdue   = Badge{Label: "Overdue", Class: "bg-red-100 text-red-700"}
	BadgePending   = Badge{Label: "Pending", Class: "bg-yellow-100 text-yellow-700"}
)

// Progress is what the badge needs to know about a student's submission to an assignment.
type Progress struct {
	Submitted bool // a submission exists
	Graded    bool
}

// DeriveBadge computes the display badge of an assignment. The first matching rule wins:
// closed, graded, submitted, overdue, pending.
func DeriveBadge(a Assignment, p Progress, now time.Time) Badge {
	switch {
	case !a.AllowSubmissions:
		return BadgeClosed
	case p.Submitted && p.Graded:
		return BadgeGraded
	case p.Submitted:
		return BadgeSubmitted
	case now.After(a.DueDate):
		return BadgeOverdue
	default:
		return BadgePending
	}
}
