package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classroom/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CheckUniqueness(_ context.Context, name, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.table {
		if c.Name == name || c.Code == code {
			return course.ErrExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.table {
		if other.Name == c.Name || other.Code == c.Code {
			return course.Course{}, course.ErrExists
		}
	}
	repo.db.pkCount++
	c.ID = repo.db.pkCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter.IDs != nil && !containsInt(filter.IDs, c.ID) {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}
