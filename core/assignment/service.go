package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
)

var (
	// errors
	ErrNotAssigned = core.NewNotFoundError("student has no class assignment for this date")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		// QueryOpenAssignments returns the rows still counting as current as of
		// the given day. The single-current invariant makes more than one row a
		// data anomaly, not an impossibility, so a slice comes back.
		QueryOpenAssignments(ctx context.Context, studentID int, asOf time.Time, exec ...core.DBExecutor) ([]Assignment, error)
		CloseAssignment(ctx context.Context, id int, endDate time.Time, exec ...core.DBExecutor) error
		// QueryStudentAssignments orders by start date, then creation, newest first.
		QueryStudentAssignments(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Assignment, error)
		// AssignmentsAsOf returns rows whose [start, end) interval contains the
		// day, newest created first.
		AssignmentsAsOf(ctx context.Context, studentID int, day time.Time, exec ...core.DBExecutor) ([]Assignment, error)
		CountCurrentForClass(ctx context.Context, classID int, asOf time.Time, exec ...core.DBExecutor) (int, error)
		StudentIDsInClassAsOf(ctx context.Context, classID int, day time.Time, exec ...core.DBExecutor) ([]int, error)
		DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
	}

	StudentDirectory interface {
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
		SyncClassPointer(ctx context.Context, studentID int, classID, grade null.Int, section null.String, exec ...core.DBExecutor) error
	}

	ClassDirectory interface {
		GetClassByID(ctx context.Context, id int, exec ...core.DBExecutor) (class.Class, error)
	}

	TeacherDirectory interface {
		GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error)
	}

	// AttendanceLog records the transfer-day PRESENT row. With overwrite false
	// an existing row for the day is left untouched; with true it is re-pointed
	// at the new class (see core.AssignmentConfig.TransferDayPolicy).
	AttendanceLog interface {
		RecordPresent(ctx context.Context, studentID, classID int, day time.Time, note string, overwrite bool, exec ...core.DBExecutor) error
	}

	Service interface {
		// Assign moves a student into a class: closes the previous open interval,
		// opens the new one, syncs the student's denormalized pointer and, for a
		// transfer landing on the current school day, records the student present.
		// All of it commits or rolls back together.
		Assign(ctx context.Context, na NewAssignment) (Detail, error)
		ClassHistory(ctx context.Context, studentID int) (History, error)
		// AsOf answers "which class was this student in on date D".
		AsOf(ctx context.Context, studentID int, day time.Time) (Assignment, error)
		// ClassAsOf is AsOf reduced to the class id; together with
		// StudentIDsInClassAsOf it serves the attendance roster queries.
		ClassAsOf(ctx context.Context, studentID int, day time.Time) (int, error)
		StudentIDsInClassAsOf(ctx context.Context, classID int, day time.Time) ([]int, error)
	}

	service struct {
		db         core.DB
		repo       Repository
		students   StudentDirectory
		classes    ClassDirectory
		teachers   TeacherDirectory
		attendance AttendanceLog
		logger     core.Logger
		conf       *core.Config
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(
	db core.DB,
	repo Repository,
	students StudentDirectory,
	classes ClassDirectory,
	teachers TeacherDirectory,
	attendance AttendanceLog,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		students:   students,
		classes:    classes,
		teachers:   teachers,
		attendance: attendance,
		logger:     logger,
		conf:       conf,
	}
}

func (svc *service) Assign(ctx context.Context, na NewAssignment) (Detail, error) {
	if err := na.Validate(); err != nil {
		return Detail{}, err
	}
	start := core.Midnight(na.StartDate)
	if na.EndDate.Valid {
		na.EndDate.Time = core.Midnight(na.EndDate.Time)
		if !na.EndDate.Time.After(start) {
			return Detail{}, core.NewValidationError(
				errors.New("end date must be after start date"),
				core.FieldError{Field: "end_date", Error: "must be after start_date"},
			)
		}
	}
	now := nowFunc().UTC()

	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return Detail{}, errors.Wrap(err, "beginning assign tx")
	}
	defer func() { _ = tx.Rollback() }()

	stu, err := svc.students.GetStudentByID(ctx, na.StudentID, tx)
	if err != nil {
		return Detail{}, err
	}
	cls, err := svc.classes.GetClassByID(ctx, na.ClassID, tx)
	if err != nil {
		return Detail{}, err
	}

	// capacity counts currently-active assignments, not lifetime history
	count, err := svc.repo.CountCurrentForClass(ctx, na.ClassID, now, tx)
	if err != nil {
		return Detail{}, errors.Wrap(err, "counting current assignments")
	}
	if count >= cls.Capacity {
		return Detail{}, core.NewConflictError(
			fmt.Sprintf("class %s is at capacity (%d/%d)", cls.Name(), count, cls.Capacity))
	}

	// close any prior open interval exactly where the new one begins
	open, err := svc.repo.QueryOpenAssignments(ctx, na.StudentID, now, tx)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying open assignments")
	}
	if len(open) > 1 {
		svc.logger.Error(
			fmt.Sprintf("integrity: student %d has %d simultaneous current assignments; closing all", stu.ID, len(open)),
			core.NewIntegrityError(errors.Errorf("student %d: %d current assignments", stu.ID, len(open))),
		)
	}
	for _, prev := range open {
		if err := svc.repo.CloseAssignment(ctx, prev.ID, start, tx); err != nil {
			return Detail{}, errors.Wrap(err, "closing previous assignment")
		}
	}

	created, err := svc.repo.CreateAssignment(ctx, Assignment{
		StudentID: na.StudentID,
		ClassID:   na.ClassID,
		StartDate: start,
		EndDate:   na.EndDate,
		Reason:    core.CleanString(na.Reason),
		IsCurrent: true,
		CreatedAt: now,
	}, tx)
	if err != nil {
		return Detail{}, errors.Wrap(err, "creating assignment")
	}

	// pointer sync: the student's denormalized snapshot follows the ledger
	// inside the very same transaction
	err = svc.students.SyncClassPointer(ctx, stu.ID,
		null.IntFrom(cls.ID), null.IntFrom(cls.Grade), null.StringFrom(cls.Section), tx)
	if err != nil {
		return Detail{}, errors.Wrap(err, "syncing class pointer")
	}

	// a student transferred today on a school day is assumed present today
	// unless later marked otherwise
	if core.SameDay(start, now) && core.IsSchoolDay(now) {
		overwrite := svc.conf.Assignment.TransferDayPolicy == core.TransferDayRepoint
		note := fmt.Sprintf("انتقال به کلاس %s", cls.Name())
		if err := svc.attendance.RecordPresent(ctx, stu.ID, cls.ID, core.Midnight(now), note, overwrite, tx); err != nil {
			return Detail{}, errors.Wrap(err, "recording transfer-day attendance")
		}
	}

	if err := tx.Commit(); err != nil {
		return Detail{}, errors.Wrap(err, "committing assign tx")
	}
	return svc.enrich(ctx, created, &cls), nil
}

func (svc *service) ClassHistory(ctx context.Context, studentID int) (History, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return History{}, err
	}
	rows, err := svc.repo.QueryStudentAssignments(ctx, studentID)
	if err != nil {
		return History{}, errors.Wrap(err, "querying student assignments")
	}

	hist := History{Past: make([]Detail, 0, len(rows))}
	for _, row := range rows {
		det := svc.enrich(ctx, row, nil)
		if row.IsCurrent && hist.Current == nil {
			cur := det
			hist.Current = &cur
			continue
		}
		if row.IsCurrent {
			// second row flagged current: demote to past, shout
			svc.logger.Error(
				fmt.Sprintf("integrity: student %d has multiple assignments flagged current", studentID),
				core.NewIntegrityError(errors.Errorf("student %d: duplicate current flag on assignment %d", studentID, row.ID)),
			)
		}
		hist.Past = append(hist.Past, det)
	}
	return hist, nil
}

func (svc *service) AsOf(ctx context.Context, studentID int, day time.Time) (Assignment, error) {
	rows, err := svc.repo.AssignmentsAsOf(ctx, studentID, core.Midnight(day))
	if err != nil {
		return Assignment{}, errors.Wrap(err, "querying assignments as of date")
	}
	switch len(rows) {
	case 0:
		return Assignment{}, ErrNotAssigned
	case 1:
	default:
		// overlapping intervals should not exist; pick the newest-created row
		// deterministically and flag the corruption
		svc.logger.Error(
			fmt.Sprintf("integrity: student %d has %d overlapping assignments on %s", studentID, len(rows), core.FormatDay(day)),
			core.NewIntegrityError(errors.Errorf("student %d: overlapping assignments on %s", studentID, core.FormatDay(day))),
		)
	}
	return rows[0], nil
}

func (svc *service) ClassAsOf(ctx context.Context, studentID int, day time.Time) (int, error) {
	a, err := svc.AsOf(ctx, studentID, day)
	if err != nil {
		return 0, err
	}
	return a.ClassID, nil
}

func (svc *service) StudentIDsInClassAsOf(ctx context.Context, classID int, day time.Time) ([]int, error) {
	return svc.repo.StudentIDsInClassAsOf(ctx, classID, core.Midnight(day))
}

// enrich attaches class and teacher display names; enrichment failures leave
// the names blank rather than failing the read.
func (svc *service) enrich(ctx context.Context, a Assignment, cls *class.Class) Detail {
	det := Detail{Assignment: a, Interval: a.Duration()}
	if cls == nil {
		if c, err := svc.classes.GetClassByID(ctx, a.ClassID); err == nil {
			cls = &c
		}
	}
	if cls != nil {
		det.ClassName = cls.Name()
		if tch, err := svc.teachers.GetTeacherByID(ctx, cls.TeacherID); err == nil {
			det.TeacherName = tch.FullName()
		}
	}
	return det
}
