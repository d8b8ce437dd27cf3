package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment, criteria []assignment.Criterion) (assignment.Assignment, error) {
	repo.db.assignment.Lock()
	defer repo.db.assignment.Unlock()
	repo.db.criterion.Lock()
	defer repo.db.criterion.Unlock()

	repo.db.assignment.pkCount++
	a.ID = repo.db.assignment.pkCount
	repo.db.assignment.table[a.ID] = &a

	for _, c := range criteria {
		c := c
		repo.db.criterion.pkCount++
		c.ID = repo.db.criterion.pkCount
		c.AssignmentID = a.ID
		repo.db.criterion.table[c.ID] = &c
	}
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id int) (assignment.Assignment, error) {
	repo.db.assignment.RLock()
	defer repo.db.assignment.RUnlock()

	if a, ok := repo.db.assignment.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	repo.db.assignment.RLock()
	defer repo.db.assignment.RUnlock()

	assignments := make([]assignment.Assignment, 0, len(repo.db.assignment.table))
	for _, a := range repo.db.assignment.table {
		if filter.IDs != nil && !containsInt(filter.IDs, a.ID) {
			continue
		}
		if filter.CourseID != 0 && (a.CourseID == nil || *a.CourseID != filter.CourseID) {
			continue
		}
		if filter.CreatedBy != 0 && a.CreatedBy != filter.CreatedBy {
			continue
		}
		assignments = append(assignments, *a)
	}

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "due_date", Ascending: true}}
	}
	ordering = append(ordering, core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(assignments, func(i, j int) bool {
		for _, o := range ordering {
			c := compareAssignments(assignments[i], assignments[j], o.Field)
			if c == 0 {
				continue
			}
			return (c < 0) == o.Ascending
		}
		return false
	})

	if filter.Limit > 0 && len(assignments) > filter.Limit {
		assignments = assignments[:filter.Limit]
	}
	return assignments, nil
}

func compareAssignments(a, b assignment.Assignment, field string) int {
	switch field {
	case "id":
		return compareInts(a.ID, b.ID)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "due_date":
		switch {
		case a.DueDate.Before(b.DueDate):
			return -1
		case a.DueDate.After(b.DueDate):
			return 1
		}
		return 0
	case "points":
		return compareInts(a.Points, b.Points)
	case "category":
		return strings.Compare(a.Category, b.Category)
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.assignment.Lock()
	defer repo.db.assignment.Unlock()
	repo.db.criterion.Lock()
	defer repo.db.criterion.Unlock()
	repo.db.submission.Lock()
	defer repo.db.submission.Unlock()

	if _, ok := repo.db.assignment.table[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.assignment.table, id)
	for cid, c := range repo.db.criterion.table {
		if c.AssignmentID == id {
			delete(repo.db.criterion.table, cid)
		}
	}
	for sid, s := range repo.db.submission.table {
		if s.AssignmentID == id {
			delete(repo.db.submission.table, sid)
		}
	}
	return nil
}

func (repo *assignmentRepository) CreateCriterion(_ context.Context, c assignment.Criterion) (assignment.Criterion, error) {
	repo.db.assignment.RLock()
	defer repo.db.assignment.RUnlock()
	repo.db.criterion.Lock()
	defer repo.db.criterion.Unlock()

	if _, ok := repo.db.assignment.table[c.AssignmentID]; !ok {
		return assignment.Criterion{}, assignment.ErrNotFound
	}
	repo.db.criterion.pkCount++
	c.ID = repo.db.criterion.pkCount
	repo.db.criterion.table[c.ID] = &c
	return c, nil
}

func (repo *assignmentRepository) DeleteCriterion(_ context.Context, assignmentID, criterionID int) error {
	repo.db.criterion.Lock()
	defer repo.db.criterion.Unlock()

	c, ok := repo.db.criterion.table[criterionID]
	if !ok || c.AssignmentID != assignmentID {
		return assignment.ErrCriterionNotFound
	}
	delete(repo.db.criterion.table, criterionID)
	return nil
}

func (repo *assignmentRepository) QueryCriteria(_ context.Context, assignmentID int) ([]assignment.Criterion, error) {
	repo.db.criterion.RLock()
	defer repo.db.criterion.RUnlock()

	criteria := make([]assignment.Criterion, 0)
	for _, c := range repo.db.criterion.table {
		if c.AssignmentID == assignmentID {
			criteria = append(criteria, *c)
		}
	}
	sort.Slice(criteria, func(i, j int) bool { return criteria[i].ID < criteria[j].ID })
	return criteria, nil
}
