package announcement

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Audience selects who receives an announcement.
type Audience string

const (
	AudienceAll      Audience = "ALL"
	AudienceTeachers Audience = "TEACHERS"
	AudienceStaff    Audience = "STAFF"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceTeachers, AudienceStaff:
		return true
	}
	return false
}

type Announcement struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	Audience    Audience  `db:"audience" json:"audience"`
	PublishedAt null.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"` // UTC
}

func (a Announcement) Published() bool {
	return a.PublishedAt.Valid
}

type NewAnnouncement struct {
	Title    string   `json:"title" validate:"required"`
	Body     string   `json:"body" validate:"required"`
	Audience Audience `json:"audience" validate:"required"`
}
