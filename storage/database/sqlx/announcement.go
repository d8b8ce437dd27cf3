package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classroom/core/announcement"
)

const announcementColumns = `id, title, body, created_at, course_id, created_by`

type announcementRow struct {
	ID        int       `db:"id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	CourseID  null.Int  `db:"course_id"`
	CreatedBy int       `db:"created_by"`
}

func (r announcementRow) toAnnouncement() announcement.Announcement {
	return announcement.Announcement{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt.UTC(),
		CourseID:  r.CourseID.Ptr(),
		CreatedBy: r.CreatedBy,
	}
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	var row announcementRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO announcement (title, body, created_at, course_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+announcementColumns,
		a.Title, a.Body, a.CreatedAt, null.IntFromPtr(a.CourseID), a.CreatedBy,
	)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return row.toAnnouncement(), nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id int) (announcement.Announcement, error) {
	var row announcementRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+announcementColumns+` FROM announcement WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "selecting announcement")
	}
	return row.toAnnouncement(), nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, filter announcement.QueryFilter) ([]announcement.Announcement, error) {
	w := new(where)
	if filter.CourseID != 0 {
		w.add("course_id = ?", filter.CourseID)
	}
	q := `SELECT ` + announcementColumns + ` FROM announcement` + w.String() + ` ORDER BY created_at DESC, id DESC`
	args := w.args
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []announcementRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting announcements")
	}
	anns := make([]announcement.Announcement, 0, len(rows))
	for _, r := range rows {
		anns = append(anns, r.toAnnouncement())
	}
	return anns, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM announcement WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting announcement")
	} else if n == 0 {
		return announcement.ErrNotFound
	}
	return nil
}
