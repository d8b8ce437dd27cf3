package inmemdb

import (
	"sync"

	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

// DB keeps every table in memory. Operations spanning several tables lock them
// in this order: assignment, criterion, submission.
type (
	DB struct {
		user         *userTable
		course       *courseTable
		assignment   *assignmentTable
		criterion    *criterionTable
		submission   *submissionTable
		announcement *announcementTable
		classes      *classesTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	courseTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*course.Course
	}

	assignmentTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*assignment.Assignment
	}

	criterionTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*assignment.Criterion
	}

	submissionTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*submission.Submission
	}

	announcementTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*announcement.Announcement
	}

	classesTable struct {
		sync.RWMutex
		table map[int][]byte // user ID -> encoded entries
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{table: make(map[int]*user.User)},
		course:       &courseTable{table: make(map[int]*course.Course)},
		assignment:   &assignmentTable{table: make(map[int]*assignment.Assignment)},
		criterion:    &criterionTable{table: make(map[int]*assignment.Criterion)},
		submission:   &submissionTable{table: make(map[int]*submission.Submission)},
		announcement: &announcementTable{table: make(map[int]*announcement.Announcement)},
		classes:      &classesTable{table: make(map[int][]byte)},
	}
}

func containsInt(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
