package class_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/validation"
	"github.com/maktab-io/maktab/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixture struct {
	repo    class.Repository
	stuRepo student.Repository
	svc     class.Service
	teacher teacher.Teacher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	core.InitValidators()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		repo:    dummydb.NewClassRepository(db),
		stuRepo: dummydb.NewStudentRepository(db),
	}
	tchRepo := dummydb.NewTeacherRepository(db)
	check := validation.NewService(
		dummydb.NewStudentRepository(db),
		tchRepo,
		dummydb.NewClassRepository(db),
		dummydb.NewAssignmentRepository(db),
		dummydb.NewAttendanceRepository(db),
		dummydb.NewPaymentRepository(db),
		nopLogger{},
	)
	f.svc = class.NewService(f.repo, tchRepo, class.NewPointerRoster(f.stuRepo), check)

	f.teacher, err = tchRepo.CreateTeacher(context.Background(), teacher.Teacher{
		Code: "T-100", FirstName: "نرگس", LastName: "قاسمی", NationalID: "0099887766", IsActive: true,
	})
	require.NoError(t, err)
	return f
}

func Test_service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cls, err := f.svc.Create(ctx, class.NewClass{
		Grade: 2, Section: "الف", TeacherID: f.teacher.ID, Capacity: 25,
	})
	require.NoError(t, err)
	assert.NotZero(t, cls.ID)
	assert.True(t, cls.IsActive)
	assert.Equal(t, "2-الف", cls.Name())

	t.Run("duplicate active grade and section", func(t *testing.T) {
		_, err := f.svc.Create(ctx, class.NewClass{
			Grade: 2, Section: "الف", TeacherID: f.teacher.ID, Capacity: 30,
		})
		require.Error(t, err)
		cerr, ok := err.(*core.ConflictError)
		require.True(t, ok, "want ConflictError, got %T", err)
		assert.Contains(t, cerr.Error(), "2-الف")
	})

	t.Run("archived class frees the pair", func(t *testing.T) {
		_, err := f.svc.Archive(ctx, cls.ID)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, class.NewClass{
			Grade: 2, Section: "الف", TeacherID: f.teacher.ID, Capacity: 30,
		})
		assert.NoError(t, err)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		_, err := f.svc.Create(ctx, class.NewClass{
			Grade: 3, Section: "الف", TeacherID: 999, Capacity: 25,
		})
		assert.Equal(t, teacher.ErrNotFound, err)
	})

	t.Run("grade out of range", func(t *testing.T) {
		_, err := f.svc.Create(ctx, class.NewClass{
			Grade: 7, Section: "الف", TeacherID: f.teacher.ID, Capacity: 25,
		})
		assert.Error(t, err)
	})
}

func Test_service_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cls, err := f.svc.Create(ctx, class.NewClass{
		Grade: 4, Section: "ب", TeacherID: f.teacher.ID, Capacity: 25,
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, cls.ID, class.UpdateClass{Capacity: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.Capacity)
	assert.Equal(t, f.teacher.ID, updated.TeacherID, "unset fields keep their value")

	t.Run("unknown replacement teacher", func(t *testing.T) {
		_, err := f.svc.Update(ctx, cls.ID, class.UpdateClass{TeacherID: 999})
		assert.Equal(t, teacher.ErrNotFound, err)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, class.UpdateClass{Capacity: 30})
		assert.Equal(t, class.ErrNotFound, err)
	})
}

func Test_service_Roster(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cls, err := f.svc.Create(ctx, class.NewClass{
		Grade: 5, Section: "الف", TeacherID: f.teacher.ID, Capacity: 25,
	})
	require.NoError(t, err)

	seed := []student.Student{
		{Code: "S-100", FirstName: "علی", LastName: "کریمی", NationalID: "0010000001",
			ClassID: null.IntFrom(cls.ID), IsActive: true},
		{Code: "S-101", FirstName: "زهرا", LastName: "احمدی", NationalID: "0010000002",
			ClassID: null.IntFrom(cls.ID), IsActive: false}, // archived: off the roster
		{Code: "S-102", FirstName: "رضا", LastName: "صادقی", NationalID: "0010000003", IsActive: true},
	}
	for _, stu := range seed {
		_, err := f.stuRepo.CreateStudent(ctx, stu)
		require.NoError(t, err)
	}

	roster, err := f.svc.Roster(ctx, cls.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "S-100", roster[0].Code)

	t.Run("unknown class", func(t *testing.T) {
		_, err := f.svc.Roster(ctx, 999)
		assert.Equal(t, class.ErrNotFound, err)
	})
}

func Test_service_HardDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cls, err := f.svc.Create(ctx, class.NewClass{
		Grade: 6, Section: "ب", TeacherID: f.teacher.ID, Capacity: 25,
	})
	require.NoError(t, err)
	stu, err := f.stuRepo.CreateStudent(ctx, student.Student{
		Code: "S-110", FirstName: "حسن", LastName: "نوری", NationalID: "0020000001",
		ClassID: null.IntFrom(cls.ID), IsActive: true,
	})
	require.NoError(t, err)

	err = f.svc.HardDelete(ctx, cls.ID)
	require.Error(t, err)
	cerr, ok := err.(*core.ConflictError)
	require.True(t, ok, "want ConflictError, got %T", err)
	assert.Contains(t, cerr.Error(), "active student")

	// archiving the student clears the guard
	_, err = f.stuRepo.SetStudentActive(ctx, stu.ID, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.HardDelete(ctx, cls.ID))
	_, err = f.svc.GetByID(ctx, cls.ID)
	assert.Equal(t, class.ErrNotFound, err)
}
