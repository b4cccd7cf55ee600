package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/validation"
)

type assignmentRepository struct {
	db *assignmentTable
}

var (
	_ assignment.Repository  = (*assignmentRepository)(nil) // interface compliance check
	_ validation.LedgerStore = (*assignmentRepository)(nil)
)

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) query() []assignment.Assignment {
	rows := make([]assignment.Assignment, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		rows = append(rows, *a)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment, _ ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	a.ID = repo.db.seq
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryOpenAssignments(_ context.Context, studentID int, asOf time.Time, _ ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []assignment.Assignment
	for _, a := range repo.query() {
		if a.StudentID == studentID && a.CurrentAsOf(asOf) {
			rows = append(rows, a)
		}
	}
	return rows, nil
}

func (repo *assignmentRepository) CloseAssignment(_ context.Context, id int, endDate time.Time, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return core.NewNotFoundError("assignment not found")
	}
	a.EndDate.SetValid(core.Midnight(endDate))
	a.IsCurrent = false
	return nil
}

func (repo *assignmentRepository) QueryStudentAssignments(_ context.Context, studentID int, _ ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []assignment.Assignment
	for _, a := range repo.query() {
		if a.StudentID == studentID {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartDate.Equal(rows[j].StartDate) {
			return rows[i].StartDate.After(rows[j].StartDate)
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (repo *assignmentRepository) AssignmentsAsOf(_ context.Context, studentID int, day time.Time, _ ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []assignment.Assignment
	for _, a := range repo.query() {
		if a.StudentID == studentID && a.ContainsDay(day) {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (repo *assignmentRepository) CountCurrentForClass(_ context.Context, classID int, asOf time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, a := range repo.db.table {
		if a.ClassID == classID && a.CurrentAsOf(asOf) {
			count++
		}
	}
	return count, nil
}

func (repo *assignmentRepository) StudentIDsInClassAsOf(_ context.Context, classID int, day time.Time, _ ...core.DBExecutor) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for _, a := range repo.query() {
		if a.ClassID == classID && a.ContainsDay(day) {
			ids = append(ids, a.StudentID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *assignmentRepository) DeleteForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var count int
	for id, a := range repo.db.table {
		if a.StudentID == studentID {
			delete(repo.db.table, id)
			count++
		}
	}
	return count, nil
}
