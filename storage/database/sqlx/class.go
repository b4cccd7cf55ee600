package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/validation"
)

type classRepository struct {
	exec core.DBExecutor
}

var (
	_ class.Repository      = (*classRepository)(nil) // interface compliance check
	_ validation.ClassStore = (*classRepository)(nil)
)

func NewClassRepository(exec core.DBExecutor) *classRepository {
	return &classRepository{exec: exec}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	const q = `
		INSERT INTO classes (grade, section, teacher_id, capacity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		cls.Grade, cls.Section, cls.TeacherID, cls.Capacity, cls.IsActive, cls.CreatedAt, cls.UpdatedAt,
	).Scan(&cls.ID)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int, exec ...core.DBExecutor) (class.Class, error) {
	var cls class.Class
	err := getExec(repo.exec, exec).GetContext(ctx, &cls, `SELECT * FROM classes WHERE id = $1`, id)
	if err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "finding class by ID")
	}
	return cls, nil
}

func (repo *classRepository) GetActiveClassByGradeSection(ctx context.Context, grade int, section string, exec ...core.DBExecutor) (class.Class, error) {
	var cls class.Class
	err := getExec(repo.exec, exec).GetContext(ctx, &cls,
		`SELECT * FROM classes WHERE grade = $1 AND section = $2 AND is_active`, grade, section)
	if err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "finding class by grade and section")
	}
	return cls, nil
}

func (repo *classRepository) FilterClasses(ctx context.Context, filter class.QueryFilter, exec ...core.DBExecutor) ([]class.Class, error) {
	q := `SELECT * FROM classes WHERE true`
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Grade != 0 {
		q += " AND grade = " + arg(filter.Grade)
	}
	if filter.Section != "" {
		q += " AND section = " + arg(filter.Section)
	}
	if filter.TeacherID != 0 {
		q += " AND teacher_id = " + arg(filter.TeacherID)
	}
	if filter.IsActive != nil {
		q += " AND is_active = " + arg(*filter.IsActive)
	}
	q += " ORDER BY grade, section, id"

	var classes []class.Class
	if err := getExec(repo.exec, exec).SelectContext(ctx, &classes, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering classes")
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	const q = `
		UPDATE classes
		SET teacher_id = $2, capacity = $3, updated_at = $4
		WHERE id = $1
		RETURNING *`
	var updated class.Class
	err := getExec(repo.exec, exec).GetContext(ctx, &updated, q, cls.ID, cls.TeacherID, cls.Capacity, cls.UpdatedAt)
	if err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "updating class")
	}
	return updated, nil
}

func (repo *classRepository) SetClassActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) (class.Class, error) {
	var cls class.Class
	err := getExec(repo.exec, exec).GetContext(ctx, &cls,
		`UPDATE classes SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING *`, id, active)
	if err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "setting class active")
	}
	return cls, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
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

func (repo *classRepository) CountActiveClassesByTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) (int, error) {
	var count int
	err := getExec(repo.exec, exec).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM classes WHERE teacher_id = $1 AND is_active`, teacherID)
	if err != nil {
		return 0, errors.Wrap(err, "counting active classes by teacher")
	}
	return count, nil
}
