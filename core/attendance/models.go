package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Status of a daily attendance row.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
	StatusExcused Status = "EXCUSED"
)

// Valid reports whether the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Attendance is one row per (student, day). Date carries no time component;
// ClassID is the class the student belonged to on that day. Marking an
// already-recorded day overwrites status/notes/class and refreshes CreatedAt
// instead of creating a duplicate.
type Attendance struct {
	ID        int         `db:"id" json:"id"`
	StudentID int         `db:"student_id" json:"student_id"`
	ClassID   int         `db:"class_id" json:"class_id"`
	Date      time.Time   `db:"date" json:"date"`
	Status    Status      `db:"status" json:"status"`
	Notes     null.String `db:"notes" json:"notes"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"` // UTC, refreshed on update
}

// Record is an Attendance enriched with the student's display name.
type Record struct {
	Attendance
	StudentName string `json:"student_name"`
}

// Mark is a single attendance write request.
type Mark struct {
	StudentID int       `json:"student_id" validate:"required"`
	ClassID   int       `json:"class_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    Status    `json:"status" validate:"required"`
	Notes     string    `json:"notes"`
}

// BulkEntry is one element of a bulk write; the batch shares a date and,
// optionally, a class.
type BulkEntry struct {
	StudentID int    `json:"student_id"`
	Status    Status `json:"status"`
	Notes     string `json:"notes"`
}

type BulkMark struct {
	Date time.Time `json:"date" validate:"required"`
	// ClassID, when zero, is resolved per student from the ledger for the
	// batch date.
	ClassID int         `json:"class_id"`
	Entries []BulkEntry `json:"updates" validate:"required,min=1"`
}

// BulkResult summarizes an applied batch, grouped by status.
type BulkResult struct {
	Marked   int            `json:"marked"`
	ByStatus map[Status]int `json:"by_status"`
}

// DayRecord distinguishes "not recorded" from any recorded status; an
// unrecorded day is a valid state, not an error and not ABSENT.
type DayRecord struct {
	Recorded bool    `json:"recorded"`
	Record   *Record `json:"record,omitempty"`
}

// MonthStats aggregates a month of rows for one student.
type MonthStats struct {
	Records     []Attendance   `json:"records"`
	Counts      map[Status]int `json:"counts"`
	PresentDays int            `json:"present_days"`
	TotalDays   int            `json:"total_days"`
	// Rate is round(present/total*100); 0 when no days are recorded.
	Rate int `json:"rate"`
}
