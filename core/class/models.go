package class

import (
	"fmt"
	"time"
)

// Class is a grade/section pair with a capacity and one homeroom teacher.
// The (grade, section) pair is unique among active classes.
type Class struct {
	ID        int       `db:"id" json:"id"`
	Grade     int       `db:"grade" json:"grade"`     // 1..6
	Section   string    `db:"section" json:"section"` // e.g. "الف"
	TeacherID int       `db:"teacher_id" json:"teacher_id"`
	Capacity  int       `db:"capacity" json:"capacity"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// Name renders the display name, e.g. "۳-الف" style "3-الف".
func (c Class) Name() string {
	return fmt.Sprintf("%d-%s", c.Grade, c.Section)
}

// NewClass contains information needed to open a new Class.
type NewClass struct {
	Grade     int    `json:"grade" validate:"required,min=1,max=6"`
	Section   string `json:"section" validate:"required"`
	TeacherID int    `json:"teacher_id" validate:"required"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
}

// UpdateClass defines the mutable fields of an existing Class. Grade and
// section are identity and cannot be patched; open a new class instead.
type UpdateClass struct {
	TeacherID int `json:"teacher_id" validate:"omitempty"`
	Capacity  int `json:"capacity" validate:"omitempty,min=1"`
}

type QueryFilter struct {
	Grade     int
	Section   string
	TeacherID int
	IsActive  *bool
}
