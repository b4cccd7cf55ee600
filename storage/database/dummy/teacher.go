package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/validation"
)

type teacherRepository struct {
	db *teacherTable
}

var (
	_ teacher.Repository      = (*teacherRepository)(nil) // interface compliance check
	_ validation.TeacherStore = (*teacherRepository)(nil)
)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db.teacher}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, tch := range repo.db.table {
		teachers = append(teachers, *tch)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, tch teacher.Teacher, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	tch.ID = repo.db.seq
	repo.db.table[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id int, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tch, ok := repo.db.table[id]; ok {
		return *tch, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) FilterTeachers(_ context.Context, filter teacher.QueryFilter, _ ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var teachers []teacher.Teacher
	search := strings.ToLower(filter.Search)
	for _, tch := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(tch.FirstName), search) &&
			!strings.Contains(strings.ToLower(tch.LastName), search) &&
			!strings.Contains(strings.ToLower(tch.Code), search) &&
			!strings.Contains(tch.NationalID, search) {
			continue
		}
		if filter.IsActive != nil && tch.IsActive != *filter.IsActive {
			continue
		}
		teachers = append(teachers, tch)
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, tch teacher.Teacher, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[tch.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	orig.Code = tch.Code
	orig.FirstName = tch.FirstName
	orig.LastName = tch.LastName
	orig.NationalID = tch.NationalID
	orig.Phone = tch.Phone
	orig.Email = tch.Email
	orig.HireDate = tch.HireDate
	orig.UpdatedAt = tch.UpdatedAt
	return *orig, nil
}

func (repo *teacherRepository) SetTeacherActive(_ context.Context, id int, active bool, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tch, ok := repo.db.table[id]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	tch.IsActive = active
	return *tch, nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

func (repo *teacherRepository) ListActiveEmails(_ context.Context, _ ...core.DBExecutor) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var emails []string
	for _, tch := range repo.query() {
		if tch.IsActive && tch.Email.String != "" {
			emails = append(emails, tch.Email.String)
		}
	}
	return emails, nil
}

// validation.TeacherStore

func (repo *teacherRepository) TeacherFieldExists(_ context.Context, field validation.UniqueField, values []string, excludeID int, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, tch := range repo.db.table {
		if tch.ID == excludeID {
			continue
		}
		var v string
		switch field {
		case validation.FieldNationalID:
			v = tch.NationalID
		case validation.FieldCode:
			v = tch.Code
		case validation.FieldPhone:
			v = tch.Phone.String
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
