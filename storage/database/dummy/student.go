package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/validation"
)

type studentRepository struct {
	db *studentTable
}

var (
	_ student.Repository      = (*studentRepository)(nil) // interface compliance check
	_ validation.StudentStore = (*studentRepository)(nil)
)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, stu := range repo.db.table {
		students = append(students, *stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, stu student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	stu.ID = repo.db.seq
	repo.db.table[stu.ID] = &stu
	return stu, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stu, ok := repo.db.table[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentsByIDs(_ context.Context, ids []int, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		if stu, ok := repo.db.table[id]; ok {
			students = append(students, *stu)
		}
	}
	return students, nil
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.QueryFilter, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var students []student.Student
	search := strings.ToLower(filter.Search)
	for _, stu := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(stu.FirstName), search) &&
			!strings.Contains(strings.ToLower(stu.LastName), search) &&
			!strings.Contains(strings.ToLower(stu.Code), search) &&
			!strings.Contains(stu.NationalID, search) {
			continue
		}
		if filter.ClassID != 0 && int(stu.ClassID.Int) != filter.ClassID {
			continue
		}
		if filter.Grade != 0 && int(stu.Grade.Int) != filter.Grade {
			continue
		}
		if filter.Section != "" && stu.Section.String != filter.Section {
			continue
		}
		if filter.IsActive != nil && stu.IsActive != *filter.IsActive {
			continue
		}
		students = append(students, stu)
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, stu student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[stu.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.Code = stu.Code
	orig.FirstName = stu.FirstName
	orig.LastName = stu.LastName
	orig.NationalID = stu.NationalID
	orig.Phone = stu.Phone
	orig.EnrollmentDate = stu.EnrollmentDate
	orig.UpdatedAt = stu.UpdatedAt
	return *orig, nil
}

func (repo *studentRepository) SetStudentActive(_ context.Context, id int, active bool, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stu, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	stu.IsActive = active
	return *stu, nil
}

func (repo *studentRepository) SyncClassPointer(_ context.Context, studentID int, classID, grade null.Int, section null.String, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	stu, ok := repo.db.table[studentID]
	if !ok {
		return student.ErrNotFound
	}
	stu.ClassID = classID
	stu.Grade = grade
	stu.Section = section
	return nil
}

func (repo *studentRepository) CountActiveInClass(_ context.Context, classID int, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, stu := range repo.db.table {
		if int(stu.ClassID.Int) == classID && stu.IsActive {
			count++
		}
	}
	return count, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// validation.StudentStore

func (repo *studentRepository) StudentFieldExists(_ context.Context, field validation.UniqueField, values []string, excludeID int, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, stu := range repo.db.table {
		if stu.ID == excludeID {
			continue
		}
		var v string
		switch field {
		case validation.FieldNationalID:
			v = stu.NationalID
		case validation.FieldCode:
			v = stu.Code
		case validation.FieldPhone:
			v = stu.Phone.String
		}
		if v == "" {
			continue
		}
		for _, val := range values {
			if v == val {
				return true, nil
			}
		}
	}
	return false, nil
}

func (repo *studentRepository) StudentNamesInClass(_ context.Context, classID int, _ ...core.DBExecutor) ([]validation.ClassmateName, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var names []validation.ClassmateName
	for _, stu := range repo.query() {
		if int(stu.ClassID.Int) == classID && stu.IsActive {
			names = append(names, validation.ClassmateName{
				StudentID: stu.ID,
				FirstName: stu.FirstName,
				LastName:  stu.LastName,
			})
		}
	}
	return names, nil
}

func (repo *studentRepository) CountActiveStudentsInClass(ctx context.Context, classID int, exec ...core.DBExecutor) (int, error) {
	return repo.CountActiveInClass(ctx, classID, exec...)
}
