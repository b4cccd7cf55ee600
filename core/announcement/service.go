package announcement

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("announcement not found")
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) (Announcement, error)
		GetAnnouncementByID(ctx context.Context, id int, exec ...core.DBExecutor) (Announcement, error)
		QueryAnnouncements(ctx context.Context, exec ...core.DBExecutor) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) (Announcement, error)
	}

	// RecipientSource lists email addresses for an audience segment.
	RecipientSource interface {
		ListActiveEmails(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
	}

	Service interface {
		Create(ctx context.Context, na NewAnnouncement) (Announcement, error)
		GetByID(ctx context.Context, id int) (Announcement, error)
		Query(ctx context.Context) ([]Announcement, error)
		// Publish stamps the announcement and emails it to its audience. Mail
		// delivery is fire-and-forget; a mail failure never unpublishes.
		Publish(ctx context.Context, id int) (Announcement, error)
	}

	service struct {
		repo     Repository
		teachers RecipientSource
		staff    RecipientSource
		mailSvc  core.EmailService
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, teachers, staff RecipientSource, mailSvc core.EmailService) Service {
	return &service{repo: repo, teachers: teachers, staff: staff, mailSvc: mailSvc}
}

func (svc *service) Create(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	if err := core.Validate.Struct(&na); err != nil {
		return Announcement{}, err
	}
	if !na.Audience.Valid() {
		return Announcement{}, core.NewValidationError(
			errors.Errorf("invalid audience %q", na.Audience),
			core.FieldError{Field: "audience", Error: fmt.Sprintf("invalid audience %q", na.Audience)},
		)
	}
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:     na.Title,
		Body:      na.Body,
		Audience:  na.Audience,
		CreatedAt: nowFunc().UTC(),
	})
}

func (svc *service) GetByID(ctx context.Context, id int) (Announcement, error) {
	return svc.repo.GetAnnouncementByID(ctx, id)
}

func (svc *service) Query(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx)
}

func (svc *service) Publish(ctx context.Context, id int) (Announcement, error) {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if ann.Published() {
		return Announcement{}, core.NewConflictError("announcement is already published")
	}

	ann.PublishedAt = null.TimeFrom(nowFunc().UTC())
	ann, err = svc.repo.UpdateAnnouncement(ctx, ann)
	if err != nil {
		return Announcement{}, errors.Wrap(err, "publishing announcement")
	}

	if to, err := svc.recipients(ctx, ann.Audience); err == nil && len(to) > 0 {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			Bcc:         to,
			Subject:     ann.Title,
			TextContent: ann.Body,
		})
	}
	return ann, nil
}

func (svc *service) recipients(ctx context.Context, aud Audience) ([]mail.Address, error) {
	var emails []string
	if aud == AudienceTeachers || aud == AudienceAll {
		tchs, err := svc.teachers.ListActiveEmails(ctx)
		if err != nil {
			return nil, err
		}
		emails = append(emails, tchs...)
	}
	if aud == AudienceStaff || aud == AudienceAll {
		stf, err := svc.staff.ListActiveEmails(ctx)
		if err != nil {
			return nil, err
		}
		emails = append(emails, stf...)
	}

	seen := make(map[string]struct{}, len(emails))
	to := make([]mail.Address, 0, len(emails))
	for _, e := range emails {
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		to = append(to, mail.Address{Address: e})
	}
	return to, nil
}
