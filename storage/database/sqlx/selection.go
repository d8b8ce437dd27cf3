package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/storage/database"
)

type selectionRepository struct {
	db *sqlx.DB
}

var _ selection.Repository = (*selectionRepository)(nil) // interface compliance check

func NewSelectionRepository(db *sqlx.DB) selection.Repository {
	return &selectionRepository{db: db}
}

func (repo *selectionRepository) GetSelection(ctx context.Context, userID int) (selection.Selection, error) {
	var classes types.JSON
	if err := repo.db.GetContext(ctx, &classes, `SELECT classes FROM classes WHERE "user" = $1`, userID); err != nil {
		if err == sql.ErrNoRows {
			return selection.Selection{}, selection.ErrNotFound
		}
		return selection.Selection{}, errors.Wrap(err, "selecting classes")
	}
	entries, err := selection.DecodeEntries(classes)
	if err != nil {
		return selection.Selection{}, err
	}
	return selection.Selection{UserID: userID, Entries: entries}, nil
}

func (repo *selectionRepository) SaveSelection(ctx context.Context, sel selection.Selection) error {
	data, err := selection.EncodeEntries(sel.Entries)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO classes ("user", classes) VALUES ($1, $2)
			ON CONFLICT ("user") DO UPDATE SET classes = EXCLUDED.classes`,
			sel.UserID, types.JSON(data),
		)
		return errors.Wrap(err, "saving classes")
	})
}
