package inmemdb

import (
	"context"

	"github.com/trezcool/classroom/core/selection"
)

type selectionRepository struct {
	db *classesTable
}

var _ selection.Repository = (*selectionRepository)(nil) // interface compliance check

func NewSelectionRepository(db *DB) selection.Repository {
	return &selectionRepository{db: db.classes}
}

func (repo *selectionRepository) GetSelection(_ context.Context, userID int) (selection.Selection, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	data, ok := repo.db.table[userID]
	if !ok {
		return selection.Selection{}, selection.ErrNotFound
	}
	entries, err := selection.DecodeEntries(data)
	if err != nil {
		return selection.Selection{}, err
	}
	return selection.Selection{UserID: userID, Entries: entries}, nil
}

func (repo *selectionRepository) SaveSelection(_ context.Context, sel selection.Selection) error {
	data, err := selection.EncodeEntries(sel.Entries)
	if err != nil {
		return err
	}

	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[sel.UserID] = data
	return nil
}

// SaveRawSelection stores an encoded selection list as is.
func SaveRawSelection(db *DB, userID int, data []byte) {
	db.classes.Lock()
	defer db.classes.Unlock()
	db.classes.table[userID] = data
}
