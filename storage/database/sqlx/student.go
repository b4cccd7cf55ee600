package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/validation"
)

type studentRepository struct {
	exec core.DBExecutor
}

var (
	_ student.Repository      = (*studentRepository)(nil) // interface compliance check
	_ validation.StudentStore = (*studentRepository)(nil)
)

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student, exec ...core.DBExecutor) (student.Student, error) {
	const q = `
		INSERT INTO students (code, first_name, last_name, national_id, phone, is_active, enrollment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		stu.Code, stu.FirstName, stu.LastName, stu.NationalID, stu.Phone,
		stu.IsActive, stu.EnrollmentDate, stu.CreatedAt, stu.UpdatedAt,
	).Scan(&stu.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var stu student.Student
	err := getExec(repo.exec, exec).GetContext(ctx, &stu, `SELECT * FROM students WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return stu, nil
}

func (repo *studentRepository) GetStudentsByIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]student.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT * FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "binding student IDs")
	}
	e := getExec(repo.exec, exec)
	students := make([]student.Student, 0, len(ids))
	if err = e.SelectContext(ctx, &students, e.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "finding students by IDs")
	}
	return students, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	q := `SELECT * FROM students WHERE true`
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		p := arg(val)
		q += fmt.Sprintf(" AND (first_name ILIKE %s OR last_name ILIKE %s OR code ILIKE %s OR national_id ILIKE %s)", p, p, p, p)
	}
	if filter.ClassID != 0 {
		q += " AND class_id = " + arg(filter.ClassID)
	}
	if filter.Grade != 0 {
		q += " AND grade = " + arg(filter.Grade)
	}
	if filter.Section != "" {
		q += " AND section = " + arg(filter.Section)
	}
	if filter.IsActive != nil {
		q += " AND is_active = " + arg(*filter.IsActive)
	}
	q += " ORDER BY last_name, first_name, id"

	var students []student.Student
	if err := getExec(repo.exec, exec).SelectContext(ctx, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student, exec ...core.DBExecutor) (student.Student, error) {
	const q = `
		UPDATE students
		SET code = $2, first_name = $3, last_name = $4, national_id = $5, phone = $6,
		    enrollment_date = $7, updated_at = $8
		WHERE id = $1
		RETURNING *`
	var updated student.Student
	err := getExec(repo.exec, exec).GetContext(ctx, &updated, q,
		stu.ID, stu.Code, stu.FirstName, stu.LastName, stu.NationalID, stu.Phone,
		stu.EnrollmentDate, stu.UpdatedAt)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "updating student")
	}
	return updated, nil
}

func (repo *studentRepository) SetStudentActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) (student.Student, error) {
	var stu student.Student
	err := getExec(repo.exec, exec).GetContext(ctx, &stu,
		`UPDATE students SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING *`, id, active)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "setting student active")
	}
	return stu, nil
}

func (repo *studentRepository) SyncClassPointer(ctx context.Context, studentID int, classID, grade null.Int, section null.String, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE students SET class_id = $2, grade = $3, section = $4, updated_at = now() WHERE id = $1`,
		studentID, classID, grade, section)
	if err != nil {
		return errors.Wrap(err, "syncing class pointer")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) CountActiveInClass(ctx context.Context, classID int, exec ...core.DBExecutor) (int, error) {
	var count int
	err := getExec(repo.exec, exec).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM students WHERE class_id = $1 AND is_active`, classID)
	if err != nil {
		return 0, errors.Wrap(err, "counting active students in class")
	}
	return count, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

// validation.StudentStore

func (repo *studentRepository) StudentFieldExists(ctx context.Context, field validation.UniqueField, values []string, excludeID int, exec ...core.DBExecutor) (bool, error) {
	return fieldExists(ctx, getExec(repo.exec, exec), "students", field, values, excludeID)
}

func (repo *studentRepository) StudentNamesInClass(ctx context.Context, classID int, exec ...core.DBExecutor) ([]validation.ClassmateName, error) {
	var rows []struct {
		StudentID int    `db:"id"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
	}
	err := getExec(repo.exec, exec).SelectContext(ctx, &rows,
		`SELECT id, first_name, last_name FROM students WHERE class_id = $1 AND is_active`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classmate names")
	}
	names := make([]validation.ClassmateName, 0, len(rows))
	for _, r := range rows {
		names = append(names, validation.ClassmateName{StudentID: r.StudentID, FirstName: r.FirstName, LastName: r.LastName})
	}
	return names, nil
}

func (repo *studentRepository) CountActiveStudentsInClass(ctx context.Context, classID int, exec ...core.DBExecutor) (int, error) {
	return repo.CountActiveInClass(ctx, classID, exec...)
}

// fieldExists reports whether any row of the table holds one of the values in
// the given unique column, excluding one row. The column name comes off a
// closed enum, never user input.
func fieldExists(ctx context.Context, e core.DBExecutor, table string, field validation.UniqueField, values []string, excludeID int) (bool, error) {
	var col string
	switch field {
	case validation.FieldNationalID:
		col = "national_id"
	case validation.FieldCode:
		col = "code"
	case validation.FieldPhone:
		col = "phone"
	default:
		return false, errors.Errorf("unknown unique field %q", field)
	}

	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return false, nil
	}

	q, args, err := sqlx.In(
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s IN (?) AND id <> ?)`, table, col),
		nonEmpty, excludeID)
	if err != nil {
		return false, errors.Wrap(err, "binding uniqueness values")
	}
	var exists bool
	if err = e.GetContext(ctx, &exists, e.Rebind(q), args...); err != nil {
		return false, errors.Wrapf(err, "checking %s uniqueness", col)
	}
	return exists, nil
}
