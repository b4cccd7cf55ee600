package assignment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
)

// ongoingMark renders an open-ended interval in history views.
const ongoingMark = "ادامه دارد"

// Assignment is one interval during which a student belonged to one class.
// Rows are never deleted; a superseded row is closed, not removed.
//
// EndDate is the source of truth for "is this current": null or a future date
// means the interval is still running. IsCurrent is a derived column kept for
// indexing; the assign transaction is its only writer and the two never
// diverge through any supported code path.
type Assignment struct {
	ID        int       `db:"id" json:"id"`
	StudentID int       `db:"student_id" json:"student_id"`
	ClassID   int       `db:"class_id" json:"class_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   null.Time `db:"end_date" json:"end_date"`
	Reason    string    `db:"reason" json:"reason"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

// Open reports whether the interval has no end date.
func (a Assignment) Open() bool {
	return !a.EndDate.Valid
}

// CurrentAsOf reports whether the row counts as the current assignment on the
// given day: still flagged current and not ended before that day.
func (a Assignment) CurrentAsOf(day time.Time) bool {
	return a.IsCurrent && (!a.EndDate.Valid || !a.EndDate.Time.Before(core.Midnight(day)))
}

// ContainsDay reports whether day falls in the half-open interval
// [StartDate, EndDate); a null EndDate contains every day from StartDate on.
func (a Assignment) ContainsDay(day time.Time) bool {
	d := core.Midnight(day)
	if d.Before(core.Midnight(a.StartDate)) {
		return false
	}
	return !a.EndDate.Valid || d.Before(core.Midnight(a.EndDate.Time))
}

// Duration renders the interval for history views, e.g.
// "2025-01-01 - 2025-02-01" or "2025-01-01 - ادامه دارد".
func (a Assignment) Duration() string {
	end := ongoingMark
	if a.EndDate.Valid {
		end = core.FormatDay(a.EndDate.Time)
	}
	return core.FormatDay(a.StartDate) + " - " + end
}

// NewAssignment is a class-transfer request. A missing ClassID or StartDate is
// rejected before anything is read or written.
type NewAssignment struct {
	StudentID int       `json:"student_id" validate:"required"`
	ClassID   int       `json:"class_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   null.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

// Detail is an Assignment enriched with display names for the UI.
type Detail struct {
	Assignment
	ClassName   string `json:"class_name"`
	TeacherName string `json:"teacher_name"`
	Interval    string `json:"interval"`
}

// History partitions a student's ledger into the single current assignment and
// everything before it, newest start date first. Current is nil when no row is
// flagged current (a data anomaly, not an error).
type History struct {
	Current *Detail  `json:"current_assignment"`
	Past    []Detail `json:"past_assignments"`
}
