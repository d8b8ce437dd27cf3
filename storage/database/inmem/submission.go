package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classroom/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.submission.Lock()
	defer repo.db.submission.Unlock()

	repo.db.submission.pkCount++
	s = s.Copy()
	s.ID = repo.db.submission.pkCount
	repo.db.submission.table[s.ID] = &s
	return s.Copy(), nil
}

func (repo *submissionRepository) GetSubmission(_ context.Context, filter submission.GetFilter) (submission.Submission, error) {
	repo.db.submission.RLock()
	defer repo.db.submission.RUnlock()

	for _, s := range repo.sorted() {
		if filter.ID != 0 && s.ID != filter.ID {
			continue
		}
		if filter.AssignmentID != 0 && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != 0 && s.StudentID != filter.StudentID {
			continue
		}
		return s.Copy(), nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, filter submission.QueryFilter) ([]submission.Submission, error) {
	var created map[int]bool
	if filter.AssignmentCreator != 0 {
		created = repo.assignmentsCreatedBy(filter.AssignmentCreator)
	}

	repo.db.submission.RLock()
	defer repo.db.submission.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, s := range repo.sorted() {
		if filter.AssignmentID != 0 && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != 0 && s.StudentID != filter.StudentID {
			continue
		}
		if created != nil && !created[s.AssignmentID] {
			continue
		}
		if filter.Ungraded && s.IsGraded() {
			continue
		}
		subs = append(subs, s.Copy())
	}
	return subs, nil
}

func (repo *submissionRepository) assignmentsCreatedBy(userID int) map[int]bool {
	repo.db.assignment.RLock()
	defer repo.db.assignment.RUnlock()

	ids := make(map[int]bool)
	for _, a := range repo.db.assignment.table {
		if a.CreatedBy == userID {
			ids[a.ID] = true
		}
	}
	return ids
}

func (repo *submissionRepository) UpdateSubmission(_ context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.submission.Lock()
	defer repo.db.submission.Unlock()

	if _, ok := repo.db.submission.table[s.ID]; !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	s = s.Copy()
	repo.db.submission.table[s.ID] = &s
	return s.Copy(), nil
}

// sorted must be called with the submission table locked.
func (repo *submissionRepository) sorted() []submission.Submission {
	subs := make([]submission.Submission, 0, len(repo.db.submission.table))
	for _, s := range repo.db.submission.table {
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs
}
