package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/storage/database"
)

const courseColumns = `id, course_name, course_code, description`

type courseRow struct {
	ID          int         `db:"id"`
	Name        string      `db:"course_name"`
	Code        string      `db:"course_code"`
	Description null.String `db:"description"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{ID: r.ID, Name: r.Name, Code: r.Code, Description: r.Description.String}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CheckUniqueness(ctx context.Context, name, code string) error {
	var found bool
	err := repo.db.GetContext(ctx, &found,
		`SELECT EXISTS (SELECT 1 FROM course WHERE course_name = $1 OR course_code = $2)`, name, code)
	if err != nil {
		return errors.Wrap(err, "checking course uniqueness")
	}
	if found {
		return course.ErrExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO course (course_name, course_code, description)
		VALUES ($1, $2, $3)
		RETURNING `+courseColumns,
		c.Name, c.Code, null.NewString(c.Description, c.Description != ""),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return course.Course{}, course.ErrExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	w := new(where)
	if filter.IDs != nil {
		if err := w.in("id", filter.IDs); err != nil {
			return nil, errors.Wrap(err, "building courses query")
		}
	}

	var rows []courseRow
	q := repo.db.Rebind(`SELECT ` + courseColumns + ` FROM course` + w.String() + ` ORDER BY course_name`)
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}
