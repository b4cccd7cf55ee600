package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/validation"
)

type assignmentRepository struct {
	exec core.DBExecutor
}

var (
	_ assignment.Repository  = (*assignmentRepository)(nil) // interface compliance check
	_ validation.LedgerStore = (*assignmentRepository)(nil)
)

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{exec: exec}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	const q = `
		INSERT INTO student_class_assignments (student_id, class_id, start_date, end_date, reason, is_current, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		a.StudentID, a.ClassID, a.StartDate, a.EndDate, a.Reason, a.IsCurrent, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryOpenAssignments(ctx context.Context, studentID int, asOf time.Time, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	const q = `
		SELECT * FROM student_class_assignments
		WHERE student_id = $1 AND is_current AND (end_date IS NULL OR end_date >= $2)
		ORDER BY created_at DESC`
	var rows []assignment.Assignment
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, studentID, core.Midnight(asOf)); err != nil {
		return nil, errors.Wrap(err, "querying open assignments")
	}
	return rows, nil
}

func (repo *assignmentRepository) CloseAssignment(ctx context.Context, id int, endDate time.Time, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE student_class_assignments SET end_date = $2, is_current = false WHERE id = $1`,
		id, core.Midnight(endDate))
	if err != nil {
		return errors.Wrap(err, "closing assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewNotFoundError("assignment not found")
	}
	return nil
}

func (repo *assignmentRepository) QueryStudentAssignments(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	const q = `
		SELECT * FROM student_class_assignments
		WHERE student_id = $1
		ORDER BY start_date DESC, created_at DESC`
	var rows []assignment.Assignment
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student assignments")
	}
	return rows, nil
}

func (repo *assignmentRepository) AssignmentsAsOf(ctx context.Context, studentID int, day time.Time, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	// half-open intervals: [start_date, end_date)
	const q = `
		SELECT * FROM student_class_assignments
		WHERE student_id = $1 AND start_date <= $2 AND (end_date IS NULL OR end_date > $2)
		ORDER BY created_at DESC`
	var rows []assignment.Assignment
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, studentID, core.Midnight(day)); err != nil {
		return nil, errors.Wrap(err, "querying assignments as of date")
	}
	return rows, nil
}

func (repo *assignmentRepository) CountCurrentForClass(ctx context.Context, classID int, asOf time.Time, exec ...core.DBExecutor) (int, error) {
	const q = `
		SELECT COUNT(*) FROM student_class_assignments
		WHERE class_id = $1 AND is_current AND (end_date IS NULL OR end_date >= $2)`
	var count int
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, classID, core.Midnight(asOf)); err != nil {
		return 0, errors.Wrap(err, "counting current assignments")
	}
	return count, nil
}

func (repo *assignmentRepository) StudentIDsInClassAsOf(ctx context.Context, classID int, day time.Time, exec ...core.DBExecutor) ([]int, error) {
	const q = `
		SELECT student_id FROM student_class_assignments
		WHERE class_id = $1 AND start_date <= $2 AND (end_date IS NULL OR end_date > $2)
		ORDER BY student_id`
	var ids []int
	if err := getExec(repo.exec, exec).SelectContext(ctx, &ids, q, classID, core.Midnight(day)); err != nil {
		return nil, errors.Wrap(err, "querying class student IDs as of date")
	}
	return ids, nil
}

func (repo *assignmentRepository) DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`DELETE FROM student_class_assignments WHERE student_id = $1`, studentID)
	return rowsAffected(res, err, "deleting student assignments")
}
