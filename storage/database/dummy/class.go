package dummydb

import (
	"context"
	"sort"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/validation"
)

type classRepository struct {
	db *classTable
}

var (
	_ class.Repository      = (*classRepository)(nil) // interface compliance check
	_ validation.ClassStore = (*classRepository)(nil)
)

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.table))
	for _, cls := range repo.db.table {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	cls.ID = repo.db.seq
	repo.db.table[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id int, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetActiveClassByGradeSection(_ context.Context, grade int, section string, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cls := range repo.query() {
		if cls.Grade == grade && cls.Section == section && cls.IsActive {
			return cls, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) FilterClasses(_ context.Context, filter class.QueryFilter, _ ...core.DBExecutor) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var classes []class.Class
	for _, cls := range repo.query() {
		if filter.Grade != 0 && cls.Grade != filter.Grade {
			continue
		}
		if filter.Section != "" && cls.Section != filter.Section {
			continue
		}
		if filter.TeacherID != 0 && cls.TeacherID != filter.TeacherID {
			continue
		}
		if filter.IsActive != nil && cls.IsActive != *filter.IsActive {
			continue
		}
		classes = append(classes, cls)
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[cls.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	orig.TeacherID = cls.TeacherID
	orig.Capacity = cls.Capacity
	orig.UpdatedAt = cls.UpdatedAt
	return *orig, nil
}

func (repo *classRepository) SetClassActive(_ context.Context, id int, active bool, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[id]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	cls.IsActive = active
	return *cls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// validation.ClassStore

func (repo *classRepository) GetClassMeta(ctx context.Context, classID int, exec ...core.DBExecutor) (validation.ClassMeta, error) {
	cls, err := repo.GetClassByID(ctx, classID, exec...)
	if err != nil {
		return validation.ClassMeta{}, err
	}
	return validation.ClassMeta{
		ID:       cls.ID,
		Name:     cls.Name(),
		Capacity: cls.Capacity,
		IsActive: cls.IsActive,
	}, nil
}

func (repo *classRepository) CountActiveClassesByTeacher(_ context.Context, teacherID int, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, cls := range repo.db.table {
		if cls.TeacherID == teacherID && cls.IsActive {
			count++
		}
	}
	return count, nil
}
