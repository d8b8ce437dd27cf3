package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classroom/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	a.ID = repo.db.pkCount
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id int) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, filter announcement.QueryFilter) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	anns := make([]announcement.Announcement, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		if filter.CourseID != 0 && (a.CourseID == nil || *a.CourseID != filter.CourseID) {
			continue
		}
		anns = append(anns, *a)
	}
	sort.Slice(anns, func(i, j int) bool {
		if anns[i].CreatedAt.Equal(anns[j].CreatedAt) {
			return anns[i].ID > anns[j].ID
		}
		return anns[i].CreatedAt.After(anns[j].CreatedAt)
	})

	if filter.Limit > 0 && len(anns) > filter.Limit {
		anns = anns[:filter.Limit]
	}
	return anns, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return announcement.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
