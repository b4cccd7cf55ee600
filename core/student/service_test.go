package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/attendance"
	"github.com/maktab-io/maktab/core/payment"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/validation"
	"github.com/maktab-io/maktab/storage/database/dummy"
)

var wednesday = time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixture struct {
	db      *dummydb.DB
	repo    student.Repository
	attRepo attendance.Repository
	payRepo payment.Repository
	asgRepo assignment.Repository
	svc     student.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	core.InitValidators()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		db:      db,
		repo:    dummydb.NewStudentRepository(db),
		attRepo: dummydb.NewAttendanceRepository(db),
		payRepo: dummydb.NewPaymentRepository(db),
		asgRepo: dummydb.NewAssignmentRepository(db),
	}
	check := validation.NewService(
		dummydb.NewStudentRepository(db),
		dummydb.NewTeacherRepository(db),
		dummydb.NewClassRepository(db),
		f.asgRepo,
		f.attRepo,
		f.payRepo,
		nopLogger{},
	)
	f.svc = student.NewService(db, f.repo, check, f.attRepo, f.payRepo, f.asgRepo)
	return f
}

func Test_service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	defer student.SetNowFunc(func() time.Time { return wednesday })()

	stu, err := f.svc.Create(ctx, student.NewStudent{
		Code:       " S-100 ",
		FirstName:  "علی",
		LastName:   "کریمی",
		NationalID: "0012345678",
		Phone:      "09123456789",
	})
	require.NoError(t, err)
	assert.NotZero(t, stu.ID)
	assert.Equal(t, "S-100", stu.Code, "input is cleaned before storage")
	assert.True(t, stu.IsActive)
	assert.False(t, stu.ClassID.Valid, "enrollment starts without a class")
	assert.Equal(t, core.Midnight(wednesday), stu.EnrollmentDate, "zero enrollment date defaults to today")
	assert.Equal(t, wednesday, stu.CreatedAt)

	t.Run("explicit enrollment date is kept", func(t *testing.T) {
		enrolled := time.Date(2024, 9, 23, 0, 0, 0, 0, time.UTC)
		stu, err := f.svc.Create(ctx, student.NewStudent{
			Code: "S-101", FirstName: "زهرا", LastName: "احمدی",
			NationalID: "0012345679", EnrollmentDate: enrolled,
		})
		require.NoError(t, err)
		assert.Equal(t, enrolled, stu.EnrollmentDate)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := f.svc.Create(ctx, student.NewStudent{Code: "S-102"})
		assert.Error(t, err)
	})

	t.Run("bad phone", func(t *testing.T) {
		_, err := f.svc.Create(ctx, student.NewStudent{
			Code: "S-103", FirstName: "رضا", LastName: "صادقی",
			NationalID: "0012345680", Phone: "not-a-phone",
		})
		assert.Error(t, err)
	})

	t.Run("duplicate national id is rejected", func(t *testing.T) {
		_, err := f.svc.Create(ctx, student.NewStudent{
			Code: "S-104", FirstName: "امیر", LastName: "جعفری", NationalID: "0012345678",
		})
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want ValidationError, got %T", err)
		assert.Contains(t, verr.Error(), "national id")
	})
}

func Test_service_Filter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seed := []student.Student{
		{Code: "S-110", FirstName: "علی", LastName: "کریمی", NationalID: "0020000001",
			ClassID: null.IntFrom(1), Grade: null.IntFrom(2), Section: null.StringFrom("الف"), IsActive: true},
		{Code: "S-111", FirstName: "زهرا", LastName: "احمدی", NationalID: "0020000002",
			ClassID: null.IntFrom(2), Grade: null.IntFrom(2), Section: null.StringFrom("ب"), IsActive: true},
		{Code: "S-112", FirstName: "رضا", LastName: "کریمی", NationalID: "0020000003", IsActive: false},
	}
	for _, stu := range seed {
		_, err := f.repo.CreateStudent(ctx, stu)
		require.NoError(t, err)
	}

	active := true
	tests := []struct {
		name   string
		filter student.QueryFilter
		want   []string // codes
	}{
		{name: "no filter", filter: student.QueryFilter{}, want: []string{"S-110", "S-111", "S-112"}},
		{name: "by search", filter: student.QueryFilter{Search: "کریمی"}, want: []string{"S-110", "S-112"}},
		{name: "by national id", filter: student.QueryFilter{Search: "0020000002"}, want: []string{"S-111"}},
		{name: "by class", filter: student.QueryFilter{ClassID: 2}, want: []string{"S-111"}},
		{name: "by grade and section", filter: student.QueryFilter{Grade: 2, Section: "الف"}, want: []string{"S-110"}},
		{name: "active only", filter: student.QueryFilter{IsActive: &active}, want: []string{"S-110", "S-111"}},
		{name: "no match", filter: student.QueryFilter{Search: "nobody"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := f.svc.Filter(ctx, tt.filter)
			require.NoError(t, err)

			codes := make([]string, 0, len(students))
			for _, stu := range students {
				codes = append(codes, stu.Code)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func Test_service_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stu, err := f.svc.Create(ctx, student.NewStudent{
		Code: "S-120", FirstName: "حسن", LastName: "نوری", NationalID: "0030000001",
	})
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, student.NewStudent{
		Code: "S-121", FirstName: "لیلا", LastName: "شریفی", NationalID: "0030000002",
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, stu.ID, student.UpdateStudent{
		LastName: "نوری‌زاده", Phone: "09120000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "حسن", updated.FirstName, "unset fields keep their value")
	assert.Equal(t, "نوری‌زاده", updated.LastName)
	assert.Equal(t, "09120000001", updated.Phone.String)

	t.Run("own values pass the duplicate checks", func(t *testing.T) {
		_, err := f.svc.Update(ctx, stu.ID, student.UpdateStudent{NationalID: stu.NationalID})
		assert.NoError(t, err)
	})

	t.Run("taking another student's national id fails", func(t *testing.T) {
		_, err := f.svc.Update(ctx, stu.ID, student.UpdateStudent{NationalID: other.NationalID})
		require.Error(t, err)
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "want ValidationError, got %T", err)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, student.UpdateStudent{FirstName: "x"})
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func Test_service_ArchiveRestore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stu, err := f.svc.Create(ctx, student.NewStudent{
		Code: "S-130", FirstName: "مینا", LastName: "رضایی", NationalID: "0040000001",
	})
	require.NoError(t, err)

	archived, err := f.svc.Archive(ctx, stu.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	// archiving twice is a no-op, not an error
	archived, err = f.svc.Archive(ctx, stu.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	restored, err := f.svc.Restore(ctx, stu.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	restored, err = f.svc.Restore(ctx, stu.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Archive(ctx, 999)
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func Test_service_HardDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stu, err := f.svc.Create(ctx, student.NewStudent{
		Code: "S-140", FirstName: "سارا", LastName: "مرادی", NationalID: "0050000001",
	})
	require.NoError(t, err)

	// dependent rows across all three cascading tables
	_, err = f.attRepo.UpsertAttendance(ctx, attendance.Attendance{
		StudentID: stu.ID, ClassID: 1,
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status: attendance.StatusPresent,
	})
	require.NoError(t, err)
	_, err = f.payRepo.CreatePayment(ctx, payment.Payment{
		StudentID: stu.ID, Amount: 250000,
		DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = f.asgRepo.CreateAssignment(ctx, assignment.Assignment{
		StudentID: stu.ID, ClassID: 1,
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		IsCurrent: true, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.HardDelete(ctx, stu.ID))

	_, err = f.svc.GetByID(ctx, stu.ID)
	assert.Equal(t, student.ErrNotFound, err)

	n, err := f.attRepo.CountForStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "attendance rows cascade")

	n, err = f.payRepo.CountForStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "payment rows cascade")

	history, err := f.asgRepo.QueryStudentAssignments(ctx, stu.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "ledger rows cascade")

	t.Run("unknown student", func(t *testing.T) {
		assert.Equal(t, student.ErrNotFound, f.svc.HardDelete(ctx, 999))
	})
}
