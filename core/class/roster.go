package class

import (
	"context"

	"github.com/maktab-io/maktab/core/student"
)

// NewPointerRoster adapts the student store into a RosterSource backed by the
// denormalized class pointers.
func NewPointerRoster(students student.Repository) RosterSource {
	return pointerRoster{students: students}
}

type pointerRoster struct {
	students student.Repository
}

func (r pointerRoster) StudentsInClass(ctx context.Context, classID int) ([]student.Student, error) {
	active := true
	return r.students.FilterStudents(ctx, student.QueryFilter{ClassID: classID, IsActive: &active})
}
