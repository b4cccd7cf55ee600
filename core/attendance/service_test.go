package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/attendance"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/storage/database/dummy"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixture struct {
	repo      attendance.Repository
	stuRepo   student.Repository
	ledgerSvc assignment.Service
	svc       attendance.Service

	class    class.Class
	student  student.Student
	student2 student.Student
}

func setup(t *testing.T) *fixture {
	t.Helper()
	core.InitValidators()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		repo:    dummydb.NewAttendanceRepository(db),
		stuRepo: dummydb.NewStudentRepository(db),
	}
	clsRepo := dummydb.NewClassRepository(db)
	tchRepo := dummydb.NewTeacherRepository(db)
	asgRepo := dummydb.NewAssignmentRepository(db)

	f.ledgerSvc = assignment.NewService(db, asgRepo, f.stuRepo, clsRepo, tchRepo, f.repo, nopLogger{}, core.TestConfig())
	f.svc = attendance.NewService(db, f.repo, f.stuRepo, clsRepo, f.ledgerSvc)

	ctx := context.Background()
	tch, err := tchRepo.CreateTeacher(ctx, teacher.Teacher{
		Code: "T-200", FirstName: "نرگس", LastName: "قاسمی", NationalID: "0099887766", IsActive: true,
	})
	require.NoError(t, err)
	f.class, err = clsRepo.CreateClass(ctx, class.Class{
		Grade: 1, Section: "الف", TeacherID: tch.ID, Capacity: 30, IsActive: true,
	})
	require.NoError(t, err)
	f.student, err = f.stuRepo.CreateStudent(ctx, student.Student{
		Code: "S-200", FirstName: "حسن", LastName: "نوری", NationalID: "1111111111", IsActive: true,
	})
	require.NoError(t, err)
	f.student2, err = f.stuRepo.CreateStudent(ctx, student.Student{
		Code: "S-201", FirstName: "لیلا", LastName: "شریفی", NationalID: "2222222222", IsActive: true,
	})
	require.NoError(t, err)

	for _, id := range []int{f.student.ID, f.student2.ID} {
		_, err := f.ledgerSvc.Assign(ctx, assignment.NewAssignment{
			StudentID: id, ClassID: f.class.ID, StartDate: monday.AddDate(0, -1, 0),
		})
		require.NoError(t, err)
	}
	return f
}

func Test_service_Mark_upsert(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rec, err := f.svc.Mark(ctx, attendance.Mark{
		StudentID: f.student.ID, ClassID: f.class.ID, Date: monday, Status: attendance.StatusAbsent,
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Equal(t, f.student.FullName(), rec.StudentName)

	// marking the same day again overwrites instead of duplicating
	rec2, err := f.svc.Mark(ctx, attendance.Mark{
		StudentID: f.student.ID, ClassID: f.class.ID, Date: monday, Status: attendance.StatusLate, Notes: "ترافیک",
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, rec2.ID)
	assert.Equal(t, attendance.StatusLate, rec2.Status)
	assert.Equal(t, "ترافیک", rec2.Notes.String)

	rows, err := f.repo.QueryRange(ctx, f.student.ID, monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func Test_service_Mark_validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, attendance.Mark{
			StudentID: f.student.ID, ClassID: f.class.ID, Date: monday, Status: "SLEEPING",
		})
		assert.Error(t, err)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, attendance.Mark{
			StudentID: 999, ClassID: f.class.ID, Date: monday, Status: attendance.StatusPresent,
		})
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("inactive student", func(t *testing.T) {
		_, err := f.stuRepo.SetStudentActive(ctx, f.student2.ID, false)
		require.NoError(t, err)
		defer func() { _, _ = f.stuRepo.SetStudentActive(ctx, f.student2.ID, true) }()

		_, err = f.svc.Mark(ctx, attendance.Mark{
			StudentID: f.student2.ID, ClassID: f.class.ID, Date: monday, Status: attendance.StatusPresent,
		})
		require.Error(t, err)
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "want ValidationError, got %T", err)
	})
}

func Test_service_BulkMark(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.BulkMark(ctx, attendance.BulkMark{
		Date:    monday,
		ClassID: f.class.ID,
		Entries: []attendance.BulkEntry{
			{StudentID: f.student.ID, Status: attendance.StatusPresent},
			{StudentID: f.student2.ID, Status: attendance.StatusAbsent, Notes: "بیماری"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Marked)
	assert.Equal(t, map[attendance.Status]int{
		attendance.StatusPresent: 1,
		attendance.StatusAbsent:  1,
	}, res.ByStatus)
}

func Test_service_BulkMark_classFromLedger(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// no class id in the batch: each student's class resolves from the ledger
	res, err := f.svc.BulkMark(ctx, attendance.BulkMark{
		Date: monday,
		Entries: []attendance.BulkEntry{
			{StudentID: f.student.ID, Status: attendance.StatusPresent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Marked)

	att, err := f.repo.GetAttendance(ctx, f.student.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, f.class.ID, att.ClassID)
}

func Test_service_BulkMark_allOrNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		b    attendance.BulkMark
	}{
		{
			name: "invalid status in batch",
			b: attendance.BulkMark{
				Date:    monday,
				ClassID: f.class.ID,
				Entries: []attendance.BulkEntry{
					{StudentID: f.student.ID, Status: attendance.StatusPresent},
					{StudentID: f.student2.ID, Status: "NAPPING"},
				},
			},
		},
		{
			name: "missing student id in batch",
			b: attendance.BulkMark{
				Date:    monday,
				ClassID: f.class.ID,
				Entries: []attendance.BulkEntry{
					{StudentID: f.student.ID, Status: attendance.StatusPresent},
					{Status: attendance.StatusAbsent},
				},
			},
		},
		{
			name: "unknown student in batch",
			b: attendance.BulkMark{
				Date:    monday,
				ClassID: f.class.ID,
				Entries: []attendance.BulkEntry{
					{StudentID: f.student.ID, Status: attendance.StatusPresent},
					{StudentID: 999, Status: attendance.StatusAbsent},
				},
			},
		},
		{name: "empty batch", b: attendance.BulkMark{Date: monday, ClassID: f.class.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.BulkMark(ctx, tt.b)
			require.Error(t, err)

			// nothing was written
			_, err = f.repo.GetAttendance(ctx, f.student.ID, monday)
			assert.Equal(t, attendance.ErrNotRecorded, err)
		})
	}
}

func Test_service_ClearClassDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.BulkMark(ctx, attendance.BulkMark{
		Date:    monday,
		ClassID: f.class.ID,
		Entries: []attendance.BulkEntry{
			{StudentID: f.student.ID, Status: attendance.StatusPresent},
			{StudentID: f.student2.ID, Status: attendance.StatusPresent},
		},
	})
	require.NoError(t, err)

	cleared, err := f.svc.ClearClassDay(ctx, f.class.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	_, err = f.repo.GetAttendance(ctx, f.student.ID, monday)
	assert.Equal(t, attendance.ErrNotRecorded, err)

	t.Run("empty roster clears nothing", func(t *testing.T) {
		cleared, err := f.svc.ClearClassDay(ctx, f.class.ID, monday.AddDate(-1, 0, 0))
		require.NoError(t, err)
		assert.Zero(t, cleared)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := f.svc.ClearClassDay(ctx, 999, monday)
		assert.Equal(t, class.ErrNotFound, err)
	})
}

func Test_service_ClearStudentDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Mark(ctx, attendance.Mark{
		StudentID: f.student.ID, ClassID: f.class.ID, Date: monday, Status: attendance.StatusLate,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearStudentDay(ctx, f.student.ID, monday))
	_, err = f.repo.GetAttendance(ctx, f.student.ID, monday)
	assert.Equal(t, attendance.ErrNotRecorded, err)

	t.Run("nothing recorded for the day", func(t *testing.T) {
		err := f.svc.ClearStudentDay(ctx, f.student.ID, monday)
		assert.Equal(t, attendance.ErrNotRecorded, err)
	})
}

func Test_service_StudentDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// unrecorded day: a valid state, not an error and not ABSENT
	rec, err := f.svc.StudentDay(ctx, f.student.ID, monday)
	require.NoError(t, err)
	assert.False(t, rec.Recorded)
	assert.Nil(t, rec.Record)

	_, err = f.svc.Mark(ctx, attendance.Mark{
		StudentID: f.student.ID, ClassID: f.class.ID, Date: monday, Status: attendance.StatusExcused,
	})
	require.NoError(t, err)

	rec, err = f.svc.StudentDay(ctx, f.student.ID, monday)
	require.NoError(t, err)
	assert.True(t, rec.Recorded)
	require.NotNil(t, rec.Record)
	assert.Equal(t, attendance.StatusExcused, rec.Record.Status)
}

func Test_service_StudentMonth(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	days := []struct {
		day    int
		status attendance.Status
	}{
		{10, attendance.StatusPresent},
		{11, attendance.StatusPresent},
		{12, attendance.StatusLate},
		{13, attendance.StatusAbsent},
	}
	for _, d := range days {
		_, err := f.svc.Mark(ctx, attendance.Mark{
			StudentID: f.student.ID,
			ClassID:   f.class.ID,
			Date:      time.Date(2025, 3, d.day, 0, 0, 0, 0, time.UTC),
			Status:    d.status,
		})
		require.NoError(t, err)
	}
	// a row in the next month stays out of March's stats
	_, err := f.svc.Mark(ctx, attendance.Mark{
		StudentID: f.student.ID, ClassID: f.class.ID,
		Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	stats, err := f.svc.StudentMonth(ctx, f.student.ID, 2025, time.March)
	require.NoError(t, err)
	assert.Len(t, stats.Records, 4)
	assert.Equal(t, 2, stats.PresentDays)
	assert.Equal(t, 4, stats.TotalDays)
	assert.Equal(t, 50, stats.Rate)
	assert.Equal(t, 1, stats.Counts[attendance.StatusLate])

	t.Run("no records: rate stays zero", func(t *testing.T) {
		stats, err := f.svc.StudentMonth(ctx, f.student.ID, 2024, time.March)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalDays)
		assert.Zero(t, stats.Rate)
	})
}
