package student

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Student is the identity record plus a denormalized snapshot of the current
// class (ClassID/Grade/Section). The snapshot is a cache of the assignment
// ledger's open row; only the assignment service's transfer transaction may
// write it.
type Student struct {
	ID             int         `db:"id" json:"id"`
	Code           string      `db:"code" json:"code"` // external student id, unique
	FirstName      string      `db:"first_name" json:"first_name"`
	LastName       string      `db:"last_name" json:"last_name"`
	NationalID     string      `db:"national_id" json:"national_id"`
	Phone          null.String `db:"phone" json:"phone"`
	ClassID        null.Int    `db:"class_id" json:"class_id"`
	Grade          null.Int    `db:"grade" json:"grade"`
	Section        null.String `db:"section" json:"section"`
	IsActive       bool        `db:"is_active" json:"is_active"`
	EnrollmentDate time.Time   `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Code           string    `json:"code" validate:"required"`
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name" validate:"required"`
	NationalID     string    `json:"national_id" validate:"required"`
	Phone          string    `json:"phone" validate:"omitempty,phone"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Class pointer fields are deliberately absent: class changes go
// through the assignment ledger only.
type UpdateStudent struct {
	FirstName  string `json:"first_name" validate:"omitempty"`
	LastName   string `json:"last_name" validate:"omitempty"`
	NationalID string `json:"national_id" validate:"omitempty"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
}

// QueryFilter applies AND on set fields; Search matches name, code or national id.
type QueryFilter struct {
	Search   string
	ClassID  int
	Grade    int
	Section  string
	IsActive *bool
}
