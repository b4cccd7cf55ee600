package dummydb

import (
	"context"
	"sort"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) *announcementRepository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, ann announcement.Announcement, _ ...core.DBExecutor) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	ann.ID = repo.db.seq
	repo.db.table[ann.ID] = &ann
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id int, _ ...core.DBExecutor) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ann, ok := repo.db.table[id]; ok {
		return *ann, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, _ ...core.DBExecutor) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]announcement.Announcement, 0, len(repo.db.table))
	for _, ann := range repo.db.table {
		rows = append(rows, *ann)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return rows, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, ann announcement.Announcement, _ ...core.DBExecutor) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[ann.ID]
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	orig.Title = ann.Title
	orig.Body = ann.Body
	orig.Audience = ann.Audience
	orig.PublishedAt = ann.PublishedAt
	return *orig, nil
}
