package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/attendance"
)

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	const q = `
		INSERT INTO attendance (student_id, class_id, date, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, date) DO UPDATE
		SET class_id = EXCLUDED.class_id, status = EXCLUDED.status,
		    notes = EXCLUDED.notes, created_at = EXCLUDED.created_at
		RETURNING *`
	var saved attendance.Attendance
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		att.StudentID, att.ClassID, att.Date, att.Status, att.Notes, att.CreatedAt,
	).StructScan(&saved)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "upserting attendance")
	}
	return saved, nil
}

func (repo *attendanceRepository) RecordPresent(ctx context.Context, studentID, classID int, day time.Time, note string, overwrite bool, exec ...core.DBExecutor) error {
	if overwrite {
		_, err := repo.UpsertAttendance(ctx, attendance.Attendance{
			StudentID: studentID,
			ClassID:   classID,
			Date:      core.Midnight(day),
			Status:    attendance.StatusPresent,
			Notes:     null.NewString(note, note != ""),
			CreatedAt: time.Now().UTC(),
		}, exec...)
		return err
	}

	const q = `
		INSERT INTO attendance (student_id, class_id, date, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (student_id, date) DO NOTHING`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		studentID, classID, core.Midnight(day), attendance.StatusPresent, null.NewString(note, note != ""))
	return errors.Wrap(err, "recording present")
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, studentID int, day time.Time, exec ...core.DBExecutor) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := getExec(repo.exec, exec).GetContext(ctx, &att,
		`SELECT * FROM attendance WHERE student_id = $1 AND date = $2`, studentID, core.Midnight(day))
	if err != nil {
		return attendance.Attendance{}, trapNoRowsErr(err, attendance.ErrNotRecorded, "finding attendance")
	}
	return att, nil
}

func (repo *attendanceRepository) QueryRange(ctx context.Context, studentID int, from, to time.Time, exec ...core.DBExecutor) ([]attendance.Attendance, error) {
	const q = `
		SELECT * FROM attendance
		WHERE student_id = $1 AND date >= $2 AND date < $3
		ORDER BY date`
	var rows []attendance.Attendance
	err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, studentID, core.Midnight(from), core.Midnight(to))
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance range")
	}
	return rows, nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, studentID int, day time.Time, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`DELETE FROM attendance WHERE student_id = $1 AND date = $2`, studentID, core.Midnight(day))
	return rowsAffected(res, err, "deleting attendance")
}

func (repo *attendanceRepository) DeleteForStudentsOnDay(ctx context.Context, studentIDs []int, day time.Time, exec ...core.DBExecutor) (int, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`DELETE FROM attendance WHERE student_id IN (?) AND date = ?`, studentIDs, core.Midnight(day))
	if err != nil {
		return 0, errors.Wrap(err, "binding student IDs")
	}
	e := getExec(repo.exec, exec)
	res, err := e.ExecContext(ctx, e.Rebind(q), args...)
	return rowsAffected(res, err, "deleting attendance for students")
}

func (repo *attendanceRepository) CountForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	var count int
	err := getExec(repo.exec, exec).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM attendance WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting student attendance")
	}
	return count, nil
}

func (repo *attendanceRepository) DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`DELETE FROM attendance WHERE student_id = $1`, studentID)
	return rowsAffected(res, err, "deleting student attendance")
}
