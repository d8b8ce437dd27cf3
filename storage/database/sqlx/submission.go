package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/storage/database"
)

const submissionColumns = `id, assignment_id, student_id, submitted_at, content, status, score, rubric_scores`

type submissionRow struct {
	ID           int         `db:"id"`
	AssignmentID int         `db:"assignment_id"`
	StudentID    int         `db:"student_id"`
	SubmittedAt  null.Time   `db:"submitted_at"`
	Content      null.String `db:"content"`
	Status       string      `db:"status"`
	Score        null.Int    `db:"score"`
	RubricScores null.JSON   `db:"rubric_scores"`
}

func (r submissionRow) toSubmission() (submission.Submission, error) {
	sub := submission.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Content:      r.Content.String,
		Status:       r.Status,
		Score:        r.Score.Ptr(),
	}
	if r.SubmittedAt.Valid {
		at := r.SubmittedAt.Time.UTC()
		sub.SubmittedAt = &at
	}
	scores, err := decodeRubricScores(r.RubricScores)
	if err != nil {
		return submission.Submission{}, err
	}
	sub.RubricScores = scores
	return sub, nil
}

// encodeRubricScores stores the scores as a JSON object keyed by the stringified criterion ID.
func encodeRubricScores(scores map[int]int) (null.JSON, error) {
	if scores == nil {
		return null.JSON{}, nil
	}
	raw := make(map[string]int, len(scores))
	for id, pts := range scores {
		raw[strconv.Itoa(id)] = pts
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return null.JSON{}, errors.Wrap(err, "encoding rubric scores")
	}
	return null.JSONFrom(data), nil
}

func decodeRubricScores(data null.JSON) (map[int]int, error) {
	if !data.Valid || len(data.JSON) == 0 || string(data.JSON) == "null" {
		return nil, nil
	}
	var raw map[string]int
	if err := json.Unmarshal(data.JSON, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding rubric scores")
	}
	scores := make(map[int]int, len(raw))
	for key, pts := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding rubric scores: criterion %q", key)
		}
		scores[id] = pts
	}
	return scores, nil
}

func toSubmissions(rows []submissionRow) ([]submission.Submission, error) {
	subs := make([]submission.Submission, 0, len(rows))
	for _, r := range rows {
		sub, err := r.toSubmission()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	scores, err := encodeRubricScores(s.RubricScores)
	if err != nil {
		return submission.Submission{}, err
	}

	var row submissionRow
	err = repo.db.GetContext(ctx, &row, `
		INSERT INTO submission (assignment_id, student_id, submitted_at, content, status, score, rubric_scores)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+submissionColumns,
		s.AssignmentID, s.StudentID, null.TimeFromPtr(s.SubmittedAt), null.StringFrom(s.Content), s.Status,
		null.IntFromPtr(s.Score), scores,
	)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return row.toSubmission()
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, filter submission.GetFilter) (submission.Submission, error) {
	w := new(where)
	if filter.ID != 0 {
		w.add("id = ?", filter.ID)
	}
	if filter.AssignmentID != 0 {
		w.add("assignment_id = ?", filter.AssignmentID)
	}
	if filter.StudentID != 0 {
		w.add("student_id = ?", filter.StudentID)
	}

	var row submissionRow
	q := repo.db.Rebind(`SELECT ` + submissionColumns + ` FROM submission` + w.String() + ` ORDER BY id LIMIT 1`)
	if err := repo.db.GetContext(ctx, &row, q, w.args...); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "selecting submission")
	}
	return row.toSubmission()
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter) ([]submission.Submission, error) {
	w := new(where)
	if filter.AssignmentID != 0 {
		w.add("assignment_id = ?", filter.AssignmentID)
	}
	if filter.StudentID != 0 {
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.AssignmentCreator != 0 {
		w.add("assignment_id IN (SELECT id FROM assignment WHERE created_by = ?)", filter.AssignmentCreator)
	}
	if filter.Ungraded {
		w.add("status <> ?", submission.StatusGraded)
	}

	var rows []submissionRow
	q := repo.db.Rebind(`SELECT ` + submissionColumns + ` FROM submission` + w.String() + ` ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting submissions")
	}
	return toSubmissions(rows)
}

// UpdateSubmission locks the row then rewrites content, status, timestamp, score and rubric scores together.
func (repo *submissionRepository) UpdateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	scores, err := encodeRubricScores(s.RubricScores)
	if err != nil {
		return submission.Submission{}, err
	}

	var row submissionRow
	err = database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var id int
		if err := tx.GetContext(ctx, &id, `SELECT id FROM submission WHERE id = $1 FOR UPDATE`, s.ID); err != nil {
			if err == sql.ErrNoRows {
				return submission.ErrNotFound
			}
			return errors.Wrap(err, "locking submission")
		}
		err := tx.GetContext(ctx, &row, `
			UPDATE submission
			SET submitted_at = $2, content = $3, status = $4, score = $5, rubric_scores = $6
			WHERE id = $1
			RETURNING `+submissionColumns,
			s.ID, null.TimeFromPtr(s.SubmittedAt), null.StringFrom(s.Content), s.Status, null.IntFromPtr(s.Score), scores,
		)
		return errors.Wrap(err, "updating submission")
	})
	if err != nil {
		return submission.Submission{}, err
	}
	return row.toSubmission()
}
