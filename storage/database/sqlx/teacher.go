package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/validation"
)

type teacherRepository struct {
	exec core.DBExecutor
}

var (
	_ teacher.Repository      = (*teacherRepository)(nil) // interface compliance check
	_ validation.TeacherStore = (*teacherRepository)(nil)
)

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{exec: exec}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	const q = `
		INSERT INTO teachers (code, first_name, last_name, national_id, phone, email, is_active, hire_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		tch.Code, tch.FirstName, tch.LastName, tch.NationalID, tch.Phone, tch.Email,
		tch.IsActive, tch.HireDate, tch.CreatedAt, tch.UpdatedAt,
	).Scan(&tch.ID)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var tch teacher.Teacher
	err := getExec(repo.exec, exec).GetContext(ctx, &tch, `SELECT * FROM teachers WHERE id = $1`, id)
	if err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "finding teacher by ID")
	}
	return tch, nil
}

func (repo *teacherRepository) FilterTeachers(ctx context.Context, filter teacher.QueryFilter, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	q := `SELECT * FROM teachers WHERE true`
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		q += fmt.Sprintf(" AND (first_name ILIKE %s OR last_name ILIKE %s OR code ILIKE %s OR national_id ILIKE %s)", p, p, p, p)
	}
	if filter.IsActive != nil {
		q += " AND is_active = " + arg(*filter.IsActive)
	}
	q += " ORDER BY last_name, first_name, id"

	var teachers []teacher.Teacher
	if err := getExec(repo.exec, exec).SelectContext(ctx, &teachers, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering teachers")
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	const q = `
		UPDATE teachers
		SET code = $2, first_name = $3, last_name = $4, national_id = $5, phone = $6,
		    email = $7, hire_date = $8, updated_at = $9
		WHERE id = $1
		RETURNING *`
	var updated teacher.Teacher
	err := getExec(repo.exec, exec).GetContext(ctx, &updated, q,
		tch.ID, tch.Code, tch.FirstName, tch.LastName, tch.NationalID, tch.Phone,
		tch.Email, tch.HireDate, tch.UpdatedAt)
	if err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "updating teacher")
	}
	return updated, nil
}

func (repo *teacherRepository) SetTeacherActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var tch teacher.Teacher
	err := getExec(repo.exec, exec).GetContext(ctx, &tch,
		`UPDATE teachers SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING *`, id, active)
	if err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "setting teacher active")
	}
	return tch, nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return nil
}

func (repo *teacherRepository) ListActiveEmails(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	var emails []string
	err := getExec(repo.exec, exec).SelectContext(ctx, &emails,
		`SELECT email FROM teachers WHERE is_active AND email IS NOT NULL AND email <> ''`)
	if err != nil {
		return nil, errors.Wrap(err, "listing teacher emails")
	}
	return emails, nil
}

// validation.TeacherStore

func (repo *teacherRepository) TeacherFieldExists(ctx context.Context, field validation.UniqueField, values []string, excludeID int, exec ...core.DBExecutor) (bool, error) {
	return fieldExists(ctx, getExec(repo.exec, exec), "teachers", field, values, excludeID)
}
