package teacher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/class"
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
	repo    teacher.Repository
	clsRepo class.Repository
	svc     teacher.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	core.InitValidators()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		repo:    dummydb.NewTeacherRepository(db),
		clsRepo: dummydb.NewClassRepository(db),
	}
	check := validation.NewService(
		dummydb.NewStudentRepository(db),
		dummydb.NewTeacherRepository(db),
		dummydb.NewClassRepository(db),
		dummydb.NewAssignmentRepository(db),
		dummydb.NewAttendanceRepository(db),
		dummydb.NewPaymentRepository(db),
		nopLogger{},
	)
	f.svc = teacher.NewService(f.repo, check)
	return f
}

func Test_service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tch, err := f.svc.Create(ctx, teacher.NewTeacher{
		Code: "T-100", FirstName: "نرگس", LastName: "قاسمی",
		NationalID: "0099887766", Phone: "09351112233", Email: "narges@school.test",
	})
	require.NoError(t, err)
	assert.NotZero(t, tch.ID)
	assert.True(t, tch.IsActive)
	assert.False(t, tch.HireDate.IsZero(), "zero hire date defaults to today")

	t.Run("duplicate employee id", func(t *testing.T) {
		_, err := f.svc.Create(ctx, teacher.NewTeacher{
			Code: "T-100", FirstName: "مینا", LastName: "رضایی", NationalID: "0011223344",
		})
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want ValidationError, got %T", err)
		assert.Contains(t, verr.Error(), "employee id")
	})

	t.Run("duplicate phone in another format", func(t *testing.T) {
		_, err := f.svc.Create(ctx, teacher.NewTeacher{
			Code: "T-101", FirstName: "مینا", LastName: "رضایی",
			NationalID: "0011223344", Phone: "+98 935 111 2233",
		})
		require.Error(t, err)
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "want ValidationError, got %T", err)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := f.svc.Create(ctx, teacher.NewTeacher{Code: "T-102"})
		assert.Error(t, err)
	})
}

func Test_service_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tch, err := f.svc.Create(ctx, teacher.NewTeacher{
		Code: "T-110", FirstName: "مینا", LastName: "رضایی", NationalID: "0020000001",
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, tch.ID, teacher.UpdateTeacher{Email: "mina@school.test"})
	require.NoError(t, err)
	assert.Equal(t, "mina@school.test", updated.Email.String)
	assert.Equal(t, "مینا", updated.FirstName, "unset fields keep their value")

	t.Run("own national id passes the duplicate checks", func(t *testing.T) {
		_, err := f.svc.Update(ctx, tch.ID, teacher.UpdateTeacher{NationalID: tch.NationalID})
		assert.NoError(t, err)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, teacher.UpdateTeacher{Email: "x@school.test"})
		assert.Equal(t, teacher.ErrNotFound, err)
	})
}

func Test_service_Archive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tch, err := f.svc.Create(ctx, teacher.NewTeacher{
		Code: "T-120", FirstName: "سارا", LastName: "مرادی", NationalID: "0030000001",
	})
	require.NoError(t, err)

	archived, err := f.svc.Archive(ctx, tch.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	// archiving twice is a no-op, not an error
	archived, err = f.svc.Archive(ctx, tch.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)
}

func Test_service_HardDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tch, err := f.svc.Create(ctx, teacher.NewTeacher{
		Code: "T-130", FirstName: "لیلا", LastName: "شریفی", NationalID: "0040000001",
	})
	require.NoError(t, err)
	cls, err := f.clsRepo.CreateClass(ctx, class.Class{
		Grade: 2, Section: "الف", TeacherID: tch.ID, Capacity: 25, IsActive: true,
	})
	require.NoError(t, err)

	err = f.svc.HardDelete(ctx, tch.ID)
	require.Error(t, err)
	cerr, ok := err.(*core.ConflictError)
	require.True(t, ok, "want ConflictError, got %T", err)
	assert.Contains(t, cerr.Error(), "active class")

	// archiving the class clears the guard
	_, err = f.clsRepo.SetClassActive(ctx, cls.ID, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.HardDelete(ctx, tch.ID))
	_, err = f.svc.GetByID(ctx, tch.ID)
	assert.Equal(t, teacher.ErrNotFound, err)
}
