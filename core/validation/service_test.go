package validation_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/attendance"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/payment"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/validation"
	"github.com/maktab-io/maktab/storage/database/dummy"
)

type capturingLogger struct{ errors []string }

func (l *capturingLogger) Enable(bool)                        {}
func (l *capturingLogger) Debug(string, ...interface{})       {}
func (l *capturingLogger) Info(string, ...interface{})        {}
func (l *capturingLogger) Warn(string, ...interface{})        {}
func (l *capturingLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
func (l *capturingLogger) Fatal(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }

type fixture struct {
	db     *dummydb.DB
	logger *capturingLogger
	svc    validation.Service

	students interface {
		student.Repository
		validation.StudentStore
	}
	teachers interface {
		teacher.Repository
		validation.TeacherStore
	}
	classes interface {
		class.Repository
		validation.ClassStore
	}
	ledger assignment.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		logger:   &capturingLogger{},
		students: dummydb.NewStudentRepository(db),
		teachers: dummydb.NewTeacherRepository(db),
		classes:  dummydb.NewClassRepository(db),
		ledger:   dummydb.NewAssignmentRepository(db),
	}
	attRepo := dummydb.NewAttendanceRepository(db)
	payRepo := dummydb.NewPaymentRepository(db)
	f.svc = validation.NewService(f.students, f.teachers, f.classes, f.ledger, attRepo, payRepo, f.logger)
	return f
}

func (f *fixture) addStudent(t *testing.T, stu student.Student) student.Student {
	t.Helper()
	stu.IsActive = true
	created, err := f.students.CreateStudent(context.Background(), stu)
	require.NoError(t, err)
	return created
}

func Test_service_CheckStudent_duplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	existing := f.addStudent(t, student.Student{
		Code: "S-100", FirstName: "ali", LastName: "karimi",
		NationalID: "0012345678", Phone: null.StringFrom("09123456789"),
	})

	t.Run("clean candidate", func(t *testing.T) {
		res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
			Code: "S-101", FirstName: "omid", LastName: "rahimi", NationalID: "0087654321",
		}, 0)
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Warnings)
	})

	t.Run("duplicate national id and code", func(t *testing.T) {
		res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
			Code: "S-100", FirstName: "omid", LastName: "rahimi", NationalID: "0012345678",
		}, 0)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors, "a student with this national id already exists")
		assert.Contains(t, res.Errors, "a student with this student id already exists")
	})

	t.Run("phone collides across formats", func(t *testing.T) {
		for _, phone := range []string{"0912 345 6789", "+989123456789", "00989123456789", "9123456789"} {
			res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
				Code: "S-102", FirstName: "omid", LastName: "rahimi", NationalID: "0011111111", Phone: phone,
			}, 0)
			assert.Contains(t, res.Errors, "a student with this phone number already exists", "phone %q", phone)
		}
	})

	t.Run("excluding self silences duplicates", func(t *testing.T) {
		res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
			Code: "S-100", FirstName: "ali", LastName: "karimi",
			NationalID: "0012345678", Phone: "09123456789",
		}, existing.ID)
		assert.True(t, res.IsValid)
	})
}

func Test_service_CheckStudent_nameCollisions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cls, err := f.classes.CreateClass(ctx, class.Class{
		Grade: 3, Section: "الف", TeacherID: 1, Capacity: 30, IsActive: true,
	})
	require.NoError(t, err)
	f.addStudent(t, student.Student{
		Code: "S-110", FirstName: "maryam", LastName: "hosseini",
		NationalID: "0020000001", ClassID: null.IntFrom(cls.ID),
	})

	tests := []struct {
		name         string
		first, last  string
		wantErrors   int
		wantWarnings int
	}{
		{name: "exact name match is an error", first: "maryam", last: "hosseini", wantErrors: 1},
		{name: "shared first name is a warning", first: "maryam", last: "akbari", wantWarnings: 1},
		{name: "shared last name is a warning", first: "zahra", last: "hosseini", wantWarnings: 1},
		{name: "close full name is a warning", first: "maryan", last: "hosseiny", wantWarnings: 1},
		{name: "unrelated name passes", first: "omid", last: "rahimi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
				Code: "S-111", FirstName: tt.first, LastName: tt.last,
				NationalID: "0020000002", ClassID: cls.ID,
			}, 0)
			assert.Len(t, res.Errors, tt.wantErrors)
			assert.Len(t, res.Warnings, tt.wantWarnings)
		})
	}
}

func Test_service_CheckStudent_capacity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cls, err := f.classes.CreateClass(ctx, class.Class{
		Grade: 4, Section: "ب", TeacherID: 1, Capacity: 1, IsActive: true,
	})
	require.NoError(t, err)
	stu := f.addStudent(t, student.Student{
		Code: "S-120", FirstName: "hasan", LastName: "noori", NationalID: "0030000001",
	})
	_, err = f.ledger.CreateAssignment(ctx, assignment.Assignment{
		StudentID: stu.ID, ClassID: cls.ID,
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		IsCurrent: true, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
		Code: "S-121", FirstName: "reza", LastName: "sadeghi",
		NationalID: "0030000002", ClassID: cls.ID,
	}, 0)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "class 4-ب is at capacity (1)")

	t.Run("unknown class", func(t *testing.T) {
		res := f.svc.CheckStudent(ctx, validation.StudentCandidate{
			Code: "S-122", FirstName: "reza", LastName: "sadeghi",
			NationalID: "0030000003", ClassID: 999,
		}, 0)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors, "class does not exist")
	})
}

func Test_service_CheckTeacher(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	existing, err := f.teachers.CreateTeacher(ctx, teacher.Teacher{
		Code: "T-100", FirstName: "نرگس", LastName: "قاسمی",
		NationalID: "0040000001", Phone: null.StringFrom("09351112233"), IsActive: true,
	})
	require.NoError(t, err)

	res := f.svc.CheckTeacher(ctx, validation.TeacherCandidate{
		Code: "T-100", NationalID: "0040000001", Phone: "+98 935 111 2233",
	}, 0)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "a teacher with this national id already exists")
	assert.Contains(t, res.Errors, "a teacher with this employee id already exists")
	assert.Contains(t, res.Errors, "a teacher with this phone number already exists")

	t.Run("excluding self", func(t *testing.T) {
		res := f.svc.CheckTeacher(ctx, validation.TeacherCandidate{
			Code: "T-100", NationalID: "0040000001", Phone: "09351112233",
		}, existing.ID)
		assert.True(t, res.IsValid)
	})
}

func Test_service_ValidateDeletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("student with history warns about cascades", func(t *testing.T) {
		stu := f.addStudent(t, student.Student{
			Code: "S-130", FirstName: "لیلا", LastName: "شریفی", NationalID: "0050000001",
		})
		attRepo := dummydb.NewAttendanceRepository(f.db)
		for day := 10; day <= 11; day++ {
			_, err := attRepo.UpsertAttendance(ctx, attendance.Attendance{
				StudentID: stu.ID, ClassID: 1,
				Date:   time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
				Status: attendance.StatusPresent,
			})
			require.NoError(t, err)
		}
		payRepo := dummydb.NewPaymentRepository(f.db)
		_, err := payRepo.CreatePayment(ctx, payment.Payment{
			StudentID: stu.ID, Amount: 500000,
			DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		res := f.svc.ValidateDeletion(ctx, validation.EntityStudent, stu.ID)
		assert.True(t, res.IsValid, "cascade impact is a warning, never a blocker")
		assert.Empty(t, res.Errors)
		assert.Contains(t, res.Warnings, "2 attendance record(s) will be permanently deleted")
		assert.Contains(t, res.Warnings, "1 payment record(s) will be permanently deleted")
	})

	t.Run("student with no history passes clean", func(t *testing.T) {
		stu := f.addStudent(t, student.Student{
			Code: "S-132", FirstName: "نیما", LastName: "کاظمی", NationalID: "0050000005",
		})
		res := f.svc.ValidateDeletion(ctx, validation.EntityStudent, stu.ID)
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Warnings)
	})

	t.Run("teacher with active classes is blocked", func(t *testing.T) {
		tch, err := f.teachers.CreateTeacher(ctx, teacher.Teacher{
			Code: "T-130", FirstName: "مینا", LastName: "رضایی", NationalID: "0050000002", IsActive: true,
		})
		require.NoError(t, err)
		_, err = f.classes.CreateClass(ctx, class.Class{
			Grade: 5, Section: "الف", TeacherID: tch.ID, Capacity: 30, IsActive: true,
		})
		require.NoError(t, err)

		res := f.svc.ValidateDeletion(ctx, validation.EntityTeacher, tch.ID)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors, "teacher still has 1 active class(es)")
	})

	t.Run("teacher without classes passes", func(t *testing.T) {
		tch, err := f.teachers.CreateTeacher(ctx, teacher.Teacher{
			Code: "T-131", FirstName: "سارا", LastName: "مرادی", NationalID: "0050000003", IsActive: true,
		})
		require.NoError(t, err)

		res := f.svc.ValidateDeletion(ctx, validation.EntityTeacher, tch.ID)
		assert.True(t, res.IsValid)
	})

	t.Run("class with active students is blocked", func(t *testing.T) {
		cls, err := f.classes.CreateClass(ctx, class.Class{
			Grade: 6, Section: "ب", TeacherID: 1, Capacity: 30, IsActive: true,
		})
		require.NoError(t, err)
		f.addStudent(t, student.Student{
			Code: "S-131", FirstName: "امیر", LastName: "جعفری",
			NationalID: "0050000004", ClassID: null.IntFrom(cls.ID),
		})

		res := f.svc.ValidateDeletion(ctx, validation.EntityClass, cls.ID)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors, "class still has 1 active student(s)")
	})

	t.Run("unknown entity", func(t *testing.T) {
		res := f.svc.ValidateDeletion(ctx, validation.Entity("invoice"), 1)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors, `unknown entity type "invoice"`)
	})
}

// failing stores make the service report a generic failure instead of raising.

type failingStudentStore struct{}

func (failingStudentStore) StudentFieldExists(context.Context, validation.UniqueField, []string, int, ...core.DBExecutor) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingStudentStore) StudentNamesInClass(context.Context, int, ...core.DBExecutor) ([]validation.ClassmateName, error) {
	return nil, errors.New("connection refused")
}
func (failingStudentStore) CountActiveStudentsInClass(context.Context, int, ...core.DBExecutor) (int, error) {
	return 0, errors.New("connection refused")
}

func Test_service_storeFailure(t *testing.T) {
	logger := &capturingLogger{}
	svc := validation.NewService(failingStudentStore{}, nil, nil, nil, nil, nil, logger)

	res := svc.CheckStudent(context.Background(), validation.StudentCandidate{
		Code: "S-1", FirstName: "ali", LastName: "karimi", NationalID: "0012345678",
	}, 0)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"validation checks could not be completed"}, res.Errors)
	assert.NotEmpty(t, logger.errors)
}
