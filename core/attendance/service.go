package attendance

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/student"
)

var (
	// errors
	ErrNotRecorded = core.NewNotFoundError("no attendance recorded for this date")
)

type (
	Repository interface {
		// UpsertAttendance inserts or, when a row exists for (student, date),
		// overwrites status/notes/class and refreshes created_at.
		UpsertAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		// RecordPresent writes a PRESENT row for the day; without overwrite an
		// existing row is left untouched. Satisfies the ledger's transfer-day
		// attendance hook.
		RecordPresent(ctx context.Context, studentID, classID int, day time.Time, note string, overwrite bool, exec ...core.DBExecutor) error
		GetAttendance(ctx context.Context, studentID int, day time.Time, exec ...core.DBExecutor) (Attendance, error)
		// QueryRange returns rows with day in [from, to), oldest first.
		QueryRange(ctx context.Context, studentID int, from, to time.Time, exec ...core.DBExecutor) ([]Attendance, error)
		// DeleteAttendance removes the (student, day) row and reports how many
		// rows that was, so callers can tell a clear from a no-op.
		DeleteAttendance(ctx context.Context, studentID int, day time.Time, exec ...core.DBExecutor) (int, error)
		DeleteForStudentsOnDay(ctx context.Context, studentIDs []int, day time.Time, exec ...core.DBExecutor) (int, error)
		CountForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
		DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
	}

	StudentDirectory interface {
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
		GetStudentsByIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]student.Student, error)
	}

	ClassDirectory interface {
		GetClassByID(ctx context.Context, id int, exec ...core.DBExecutor) (class.Class, error)
	}

	// RosterSource answers ledger questions at day granularity: which class was
	// a student in, and who was in a class, on a given day. Clearing a class
	// day goes through it rather than the denormalized pointers.
	RosterSource interface {
		ClassAsOf(ctx context.Context, studentID int, day time.Time) (int, error)
		StudentIDsInClassAsOf(ctx context.Context, classID int, day time.Time) ([]int, error)
	}

	Service interface {
		Mark(ctx context.Context, m Mark) (Record, error)
		// BulkMark validates and applies a whole batch or none of it.
		BulkMark(ctx context.Context, b BulkMark) (BulkResult, error)
		ClearClassDay(ctx context.Context, classID int, day time.Time) (int, error)
		ClearStudentDay(ctx context.Context, studentID int, day time.Time) error
		StudentDay(ctx context.Context, studentID int, day time.Time) (DayRecord, error)
		StudentMonth(ctx context.Context, studentID int, year int, month time.Month) (MonthStats, error)
	}

	service struct {
		db       core.DB
		repo     Repository
		students StudentDirectory
		classes  ClassDirectory
		roster   RosterSource
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(db core.DB, repo Repository, students StudentDirectory, classes ClassDirectory, roster RosterSource) Service {
	return &service{db: db, repo: repo, students: students, classes: classes, roster: roster}
}

func (svc *service) Mark(ctx context.Context, m Mark) (Record, error) {
	if err := core.Validate.Struct(&m); err != nil {
		return Record{}, err
	}
	if !m.Status.Valid() {
		return Record{}, core.NewValidationError(
			errors.Errorf("invalid attendance status %q", m.Status),
			core.FieldError{Field: "status", Error: fmt.Sprintf("invalid status %q", m.Status)},
		)
	}

	stu, err := svc.students.GetStudentByID(ctx, m.StudentID)
	if err != nil {
		return Record{}, err
	}
	if !stu.IsActive {
		return Record{}, core.NewValidationError(
			errors.New("student is not active"),
			core.FieldError{Field: "student_id", Error: "student is not active"},
		)
	}
	cls, err := svc.classes.GetClassByID(ctx, m.ClassID)
	if err != nil {
		return Record{}, err
	}
	if !cls.IsActive {
		return Record{}, core.NewValidationError(
			errors.New("class is not active"),
			core.FieldError{Field: "class_id", Error: "class is not active"},
		)
	}

	att, err := svc.repo.UpsertAttendance(ctx, Attendance{
		StudentID: m.StudentID,
		ClassID:   m.ClassID,
		Date:      core.Midnight(m.Date),
		Status:    m.Status,
		Notes:     null.NewString(m.Notes, m.Notes != ""),
		CreatedAt: nowFunc().UTC(),
	})
	if err != nil {
		return Record{}, errors.Wrap(err, "upserting attendance")
	}
	return Record{Attendance: att, StudentName: stu.FullName()}, nil
}

func (svc *service) BulkMark(ctx context.Context, b BulkMark) (BulkResult, error) {
	if err := core.Validate.Struct(&b); err != nil {
		return BulkResult{}, err
	}

	// reject the whole batch before any write on the first pass of problems
	var flds []core.FieldError
	ids := make([]int, 0, len(b.Entries))
	for i, e := range b.Entries {
		if e.StudentID == 0 {
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("updates[%d].student_id", i), Error: "this field is required"})
		} else {
			ids = append(ids, e.StudentID)
		}
		if !e.Status.Valid() {
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("updates[%d].status", i), Error: fmt.Sprintf("invalid status %q", e.Status)})
		}
	}
	if len(flds) > 0 {
		return BulkResult{}, core.NewValidationError(errors.New("invalid attendance batch"), flds...)
	}

	if b.ClassID != 0 {
		if _, err := svc.classes.GetClassByID(ctx, b.ClassID); err != nil {
			return BulkResult{}, err
		}
	}

	// every referenced student must exist and be active
	found, err := svc.students.GetStudentsByIDs(ctx, ids)
	if err != nil {
		return BulkResult{}, errors.Wrap(err, "resolving batch students")
	}
	byID := make(map[int]student.Student, len(found))
	for _, stu := range found {
		byID[stu.ID] = stu
	}
	var missing, inactive []int
	for _, id := range ids {
		stu, ok := byID[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case !stu.IsActive:
			inactive = append(inactive, id)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return BulkResult{}, core.NewNotFoundError(fmt.Sprintf("students not found: %v", missing))
	}
	if len(inactive) > 0 {
		sort.Ints(inactive)
		return BulkResult{}, core.NewValidationError(errors.Errorf("students not active: %v", inactive))
	}

	day := core.Midnight(b.Date)
	now := nowFunc().UTC()

	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return BulkResult{}, errors.Wrap(err, "beginning bulk attendance tx")
	}
	defer func() { _ = tx.Rollback() }()

	res := BulkResult{ByStatus: make(map[Status]int, 4)}
	for _, e := range b.Entries {
		classID := b.ClassID
		if classID == 0 {
			classID, err = svc.roster.ClassAsOf(ctx, e.StudentID, day)
			if err != nil {
				return BulkResult{}, errors.Wrapf(err, "resolving class for student %d", e.StudentID)
			}
		}
		_, err := svc.repo.UpsertAttendance(ctx, Attendance{
			StudentID: e.StudentID,
			ClassID:   classID,
			Date:      day,
			Status:    e.Status,
			Notes:     null.NewString(e.Notes, e.Notes != ""),
			CreatedAt: now,
		}, tx)
		if err != nil {
			return BulkResult{}, errors.Wrapf(err, "upserting attendance for student %d", e.StudentID)
		}
		res.Marked++
		res.ByStatus[e.Status]++
	}

	if err := tx.Commit(); err != nil {
		return BulkResult{}, errors.Wrap(err, "committing bulk attendance tx")
	}
	return res, nil
}

// ClearClassDay deletes the day's rows for the students assigned to the class
// on that day per the ledger, not per the denormalized pointers.
func (svc *service) ClearClassDay(ctx context.Context, classID int, day time.Time) (int, error) {
	if _, err := svc.classes.GetClassByID(ctx, classID); err != nil {
		return 0, err
	}
	d := core.Midnight(day)
	ids, err := svc.roster.StudentIDsInClassAsOf(ctx, classID, d)
	if err != nil {
		return 0, errors.Wrap(err, "resolving class roster as of date")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return svc.repo.DeleteForStudentsOnDay(ctx, ids, d)
}

func (svc *service) ClearStudentDay(ctx context.Context, studentID int, day time.Time) error {
	n, err := svc.repo.DeleteAttendance(ctx, studentID, core.Midnight(day))
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if n == 0 {
		return ErrNotRecorded
	}
	return nil
}

func (svc *service) StudentDay(ctx context.Context, studentID int, day time.Time) (DayRecord, error) {
	stu, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return DayRecord{}, err
	}
	att, err := svc.repo.GetAttendance(ctx, studentID, core.Midnight(day))
	if err != nil {
		if _, ok := errors.Cause(err).(*core.NotFoundError); ok {
			return DayRecord{}, nil // not recorded: a valid state, not an error
		}
		return DayRecord{}, errors.Wrap(err, "getting attendance")
	}
	return DayRecord{
		Recorded: true,
		Record:   &Record{Attendance: att, StudentName: stu.FullName()},
	}, nil
}

func (svc *service) StudentMonth(ctx context.Context, studentID int, year int, month time.Month) (MonthStats, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return MonthStats{}, err
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows, err := svc.repo.QueryRange(ctx, studentID, from, to)
	if err != nil {
		return MonthStats{}, errors.Wrap(err, "querying attendance range")
	}

	stats := MonthStats{Records: rows, Counts: make(map[Status]int, 4)}
	for _, row := range rows {
		stats.Counts[row.Status]++
	}
	stats.PresentDays = stats.Counts[StatusPresent]
	stats.TotalDays = len(rows)
	if stats.TotalDays > 0 {
		stats.Rate = int(math.Round(float64(stats.PresentDays) / float64(stats.TotalDays) * 100))
	}
	return stats, nil
}
