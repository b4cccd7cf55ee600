package teacher

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Teacher struct {
	ID         int         `db:"id" json:"id"`
	Code       string      `db:"code" json:"code"` // employee id, unique
	FirstName  string      `db:"first_name" json:"first_name"`
	LastName   string      `db:"last_name" json:"last_name"`
	NationalID string      `db:"national_id" json:"national_id"`
	Phone      null.String `db:"phone" json:"phone"`
	Email      null.String `db:"email" json:"email"`
	IsActive   bool        `db:"is_active" json:"is_active"`
	HireDate   time.Time   `db:"hire_date" json:"hire_date"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	Code       string    `json:"code" validate:"required"`
	FirstName  string    `json:"first_name" validate:"required"`
	LastName   string    `json:"last_name" validate:"required"`
	NationalID string    `json:"national_id" validate:"required"`
	Phone      string    `json:"phone" validate:"omitempty,phone"`
	Email      string    `json:"email" validate:"omitempty,email"`
	HireDate   time.Time `json:"hire_date"`
}

// UpdateTeacher defines the mutable fields of an existing Teacher.
type UpdateTeacher struct {
	FirstName  string `json:"first_name" validate:"omitempty"`
	LastName   string `json:"last_name" validate:"omitempty"`
	NationalID string `json:"national_id" validate:"omitempty"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Email      string `json:"email" validate:"omitempty,email"`
}

type QueryFilter struct {
	Search   string
	IsActive *bool
}
