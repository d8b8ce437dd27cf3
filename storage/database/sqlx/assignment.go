package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/storage/database"
)

const (
	assignmentColumns = `id, title, description, due_date, points, category, status, allow_submissions, course_id, created_by`
	criterionColumns  = `id, assignment_id, title, description, max_points`
)

type assignmentRow struct {
	ID               int       `db:"id"`
	Title            string    `db:"title"`
	Description      string    `db:"description"`
	DueDate          time.Time `db:"due_date"`
	Points           int       `db:"points"`
	Category         string    `db:"category"`
	Status           string    `db:"status"`
	AllowSubmissions bool      `db:"allow_submissions"`
	CourseID         null.Int  `db:"course_id"`
	CreatedBy        int       `db:"created_by"`
}

func (r assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		DueDate:          r.DueDate.UTC(),
		Points:           r.Points,
		Category:         r.Category,
		Status:           r.Status,
		AllowSubmissions: r.AllowSubmissions,
		CourseID:         r.CourseID.Ptr(),
		CreatedBy:        r.CreatedBy,
	}
}

type criterionRow struct {
	ID           int         `db:"id"`
	AssignmentID int         `db:"assignment_id"`
	Title        string      `db:"title"`
	Description  null.String `db:"description"`
	MaxPoints    int         `db:"max_points"`
}

func (r criterionRow) toCriterion() assignment.Criterion {
	return assignment.Criterion{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		Title:        r.Title,
		Description:  r.Description.String,
		MaxPoints:    r.MaxPoints,
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, criteria []assignment.Criterion) (assignment.Assignment, error) {
	var row assignmentRow
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &row, `
			INSERT INTO assignment (title, description, due_date, points, category, status, allow_submissions, course_id, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+assignmentColumns,
			a.Title, a.Description, a.DueDate, a.Points, a.Category, a.Status, a.AllowSubmissions,
			null.IntFromPtr(a.CourseID), a.CreatedBy,
		)
		if err != nil {
			return errors.Wrap(err, "inserting assignment")
		}
		for _, c := range criteria {
			c.AssignmentID = row.ID
			if _, err = insertCriterion(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return assignment.Assignment{}, err
	}
	return row.toAssignment(), nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+assignmentColumns+` FROM assignment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "selecting assignment")
	}
	return row.toAssignment(), nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	w := new(where)
	if filter.IDs != nil {
		if err := w.in("id", filter.IDs); err != nil {
			return nil, errors.Wrap(err, "building assignments query")
		}
	}
	if filter.CourseID != 0 {
		w.add("course_id = ?", filter.CourseID)
	}
	if filter.CreatedBy != 0 {
		w.add("created_by = ?", filter.CreatedBy)
	}

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "due_date", Ascending: true}}
	}
	q := `SELECT ` + assignmentColumns + ` FROM assignment` + w.String() +
		orderBy(ordering, assignment.OrderingFields, core.DBOrdering{Field: "id", Ascending: true})
	args := w.args
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.toAssignment())
	}
	return assignments, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) error {
	return database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM submission WHERE assignment_id = $1`, id); err != nil {
			return errors.Wrap(err, "deleting submissions")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM rubric_criterion WHERE assignment_id = $1`, id); err != nil {
			return errors.Wrap(err, "deleting rubric criteria")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "deleting assignment")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "deleting assignment")
		} else if n == 0 {
			return assignment.ErrNotFound
		}
		return nil
	})
}

func insertCriterion(ctx context.Context, q sqlx.QueryerContext, c assignment.Criterion) (assignment.Criterion, error) {
	var row criterionRow
	err := sqlx.GetContext(ctx, q, &row, `
		INSERT INTO rubric_criterion (assignment_id, title, description, max_points)
		VALUES ($1, $2, $3, $4)
		RETURNING `+criterionColumns,
		c.AssignmentID, c.Title, null.NewString(c.Description, c.Description != ""), c.MaxPoints,
	)
	if err != nil {
		return assignment.Criterion{}, errors.Wrap(err, "inserting rubric criterion")
	}
	return row.toCriterion(), nil
}

func (repo *assignmentRepository) CreateCriterion(ctx context.Context, c assignment.Criterion) (assignment.Criterion, error) {
	if _, err := repo.GetAssignment(ctx, c.AssignmentID); err != nil {
		return assignment.Criterion{}, err
	}
	return insertCriterion(ctx, repo.db, c)
}

func (repo *assignmentRepository) DeleteCriterion(ctx context.Context, assignmentID, criterionID int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM rubric_criterion WHERE id = $1 AND assignment_id = $2`, criterionID, assignmentID)
	if err != nil {
		return errors.Wrap(err, "deleting rubric criterion")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting rubric criterion")
	} else if n == 0 {
		return assignment.ErrCriterionNotFound
	}
	return nil
}

func (repo *assignmentRepository) QueryCriteria(ctx context.Context, assignmentID int) ([]assignment.Criterion, error) {
	var rows []criterionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+criterionColumns+` FROM rubric_criterion WHERE assignment_id = $1 ORDER BY id`, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting rubric criteria")
	}
	criteria := make([]assignment.Criterion, 0, len(rows))
	for _, r := range rows {
		criteria = append(criteria, r.toCriterion())
	}
	return criteria, nil
}
