package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) find(studentID int, day time.Time) *attendance.Attendance {
	d := core.Midnight(day)
	for _, att := range repo.db.table {
		if att.StudentID == studentID && att.Date.Equal(d) {
			return att
		}
	}
	return nil
}

func (repo *attendanceRepository) UpsertAttendance(_ context.Context, att attendance.Attendance, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	att.Date = core.Midnight(att.Date)
	if existing := repo.find(att.StudentID, att.Date); existing != nil {
		existing.ClassID = att.ClassID
		existing.Status = att.Status
		existing.Notes = att.Notes
		existing.CreatedAt = att.CreatedAt
		return *existing, nil
	}

	repo.db.seq++
	att.ID = repo.db.seq
	repo.db.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) RecordPresent(ctx context.Context, studentID, classID int, day time.Time, note string, overwrite bool, exec ...core.DBExecutor) error {
	if !overwrite {
		repo.db.RLock()
		existing := repo.find(studentID, day)
		repo.db.RUnlock()
		if existing != nil {
			return nil
		}
	}
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

func (repo *attendanceRepository) GetAttendance(_ context.Context, studentID int, day time.Time, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if att := repo.find(studentID, day); att != nil {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrNotRecorded
}

func (repo *attendanceRepository) QueryRange(_ context.Context, studentID int, from, to time.Time, _ ...core.DBExecutor) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fromD, toD := core.Midnight(from), core.Midnight(to)
	var rows []attendance.Attendance
	for _, att := range repo.db.table {
		if att.StudentID == studentID && !att.Date.Before(fromD) && att.Date.Before(toD) {
			rows = append(rows, *att)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

func (repo *attendanceRepository) DeleteAttendance(_ context.Context, studentID int, day time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if att := repo.find(studentID, day); att != nil {
		delete(repo.db.table, att.ID)
		return 1, nil
	}
	return 0, nil
}

func (repo *attendanceRepository) DeleteForStudentsOnDay(_ context.Context, studentIDs []int, day time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	d := core.Midnight(day)
	wanted := make(map[int]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = struct{}{}
	}
	var count int
	for id, att := range repo.db.table {
		if _, ok := wanted[att.StudentID]; ok && att.Date.Equal(d) {
			delete(repo.db.table, id)
			count++
		}
	}
	return count, nil
}

func (repo *attendanceRepository) CountForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, att := range repo.db.table {
		if att.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (repo *attendanceRepository) DeleteForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var count int
	for id, att := range repo.db.table {
		if att.StudentID == studentID {
			delete(repo.db.table, id)
			count++
		}
	}
	return count, nil
}
