package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/announcement"
)

type announcementRepository struct {
	exec core.DBExecutor
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(exec core.DBExecutor) *announcementRepository {
	return &announcementRepository{exec: exec}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann announcement.Announcement, exec ...core.DBExecutor) (announcement.Announcement, error) {
	const q = `
		INSERT INTO announcements (title, body, audience, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		ann.Title, ann.Body, ann.Audience, ann.PublishedAt, ann.CreatedAt,
	).Scan(&ann.ID)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id int, exec ...core.DBExecutor) (announcement.Announcement, error) {
	var ann announcement.Announcement
	err := getExec(repo.exec, exec).GetContext(ctx, &ann, `SELECT * FROM announcements WHERE id = $1`, id)
	if err != nil {
		return announcement.Announcement{}, trapNoRowsErr(err, announcement.ErrNotFound, "finding announcement by ID")
	}
	return ann, nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, exec ...core.DBExecutor) ([]announcement.Announcement, error) {
	var rows []announcement.Announcement
	err := getExec(repo.exec, exec).SelectContext(ctx, &rows, `SELECT * FROM announcements ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	return rows, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, ann announcement.Announcement, exec ...core.DBExecutor) (announcement.Announcement, error) {
	const q = `
		UPDATE announcements
		SET title = $2, body = $3, audience = $4, published_at = $5
		WHERE id = $1
		RETURNING *`
	var updated announcement.Announcement
	err := getExec(repo.exec, exec).GetContext(ctx, &updated, q,
		ann.ID, ann.Title, ann.Body, ann.Audience, ann.PublishedAt)
	if err != nil {
		return announcement.Announcement{}, trapNoRowsErr(err, announcement.ErrNotFound, "updating announcement")
	}
	return updated, nil
}
