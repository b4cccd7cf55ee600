package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/maktab-io/maktab/core"
)

const (
	genericCheckErr = "validation checks could not be completed"

	// full-name similarity above this ratio is worth a warning even when
	// neither name part matches exactly
	nameSimThreshold = .85
)

type (
	// StudentStore is the slice of student storage the checks need.
	StudentStore interface {
		StudentFieldExists(ctx context.Context, field UniqueField, values []string, excludeID int, exec ...core.DBExecutor) (bool, error)
		StudentNamesInClass(ctx context.Context, classID int, exec ...core.DBExecutor) ([]ClassmateName, error)
		CountActiveStudentsInClass(ctx context.Context, classID int, exec ...core.DBExecutor) (int, error)
	}

	TeacherStore interface {
		TeacherFieldExists(ctx context.Context, field UniqueField, values []string, excludeID int, exec ...core.DBExecutor) (bool, error)
	}

	ClassStore interface {
		GetClassMeta(ctx context.Context, classID int, exec ...core.DBExecutor) (ClassMeta, error)
		CountActiveClassesByTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) (int, error)
	}

	// LedgerStore counts assignments that are current as of a date; capacity is
	// measured against currently-active assignments, not lifetime history.
	LedgerStore interface {
		CountCurrentForClass(ctx context.Context, classID int, asOf time.Time, exec ...core.DBExecutor) (int, error)
	}

	// CascadeCounter counts a student's dependent rows for deletion warnings.
	CascadeCounter interface {
		CountForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckStudent(ctx context.Context, cand StudentCandidate, excludeID int) Result
		CheckTeacher(ctx context.Context, cand TeacherCandidate, excludeID int) Result
		ValidateDeletion(ctx context.Context, entity Entity, id int) Result
	}

	service struct {
		students   StudentStore
		teachers   TeacherStore
		classes    ClassStore
		ledger     LedgerStore
		attendance CascadeCounter
		payments   CascadeCounter
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(
	students StudentStore,
	teachers TeacherStore,
	classes ClassStore,
	ledger LedgerStore,
	attendance CascadeCounter,
	payments CascadeCounter,
	logger core.Logger,
) Service {
	return &service{
		students:   students,
		teachers:   teachers,
		classes:    classes,
		ledger:     ledger,
		attendance: attendance,
		payments:   payments,
		logger:     logger,
	}
}

// failedResult is returned when the checks themselves fail (backing store
// unreachable): invalid with one generic error, never a raised error.
func (svc *service) failedResult(op string, err error) Result {
	svc.logger.Error(fmt.Sprintf("validation: %s failed", op), err)
	return Result{IsValid: false, Errors: []string{genericCheckErr}}
}

func (svc *service) CheckStudent(ctx context.Context, cand StudentCandidate, excludeID int) Result {
	res := okResult()

	if exists, err := svc.students.StudentFieldExists(ctx, FieldNationalID, []string{cand.NationalID}, excludeID); err != nil {
		return svc.failedResult("student national id check", err)
	} else if exists {
		res.addError("a student with this national id already exists")
	}

	if exists, err := svc.students.StudentFieldExists(ctx, FieldCode, []string{cand.Code}, excludeID); err != nil {
		return svc.failedResult("student code check", err)
	} else if exists {
		res.addError("a student with this student id already exists")
	}

	if variants := PhoneVariants(cand.Phone); len(variants) > 0 {
		if exists, err := svc.students.StudentFieldExists(ctx, FieldPhone, variants, excludeID); err != nil {
			return svc.failedResult("student phone check", err)
		} else if exists {
			res.addError("a student with this phone number already exists")
		}
	}

	if cand.ClassID != 0 {
		if err := svc.checkClassmates(ctx, cand, excludeID, &res); err != nil {
			return svc.failedResult("student name collision check", err)
		}
		if err := svc.checkCapacity(ctx, cand.ClassID, &res); err != nil {
			return svc.failedResult("class capacity check", err)
		}
	}

	return res
}

// checkClassmates flags name collisions within the same class: an exact
// (first, last) match is an error, a partial or close match only a warning.
func (svc *service) checkClassmates(ctx context.Context, cand StudentCandidate, excludeID int, res *Result) error {
	names, err := svc.students.StudentNamesInClass(ctx, cand.ClassID)
	if err != nil {
		return err
	}

	first := core.CleanString(cand.FirstName, true /* lower */)
	last := core.CleanString(cand.LastName, true /* lower */)
	full := first + " " + last

	for _, n := range names {
		if n.StudentID == excludeID {
			continue
		}
		nFirst := core.CleanString(n.FirstName, true /* lower */)
		nLast := core.CleanString(n.LastName, true /* lower */)

		switch {
		case nFirst == first && nLast == last:
			res.addError("a student with this name already exists in this class")
		case nFirst == first || nLast == last:
			res.addWarning(fmt.Sprintf("a student with a similar name (%s %s) is in this class", n.FirstName, n.LastName))
		default:
			matcher := difflib.NewMatcher(strings.Split(full, ""), strings.Split(nFirst+" "+nLast, ""))
			if matcher.Ratio() >= nameSimThreshold {
				res.addWarning(fmt.Sprintf("a student with a similar name (%s %s) is in this class", n.FirstName, n.LastName))
			}
		}
	}
	return nil
}

func (svc *service) checkCapacity(ctx context.Context, classID int, res *Result) error {
	meta, err := svc.classes.GetClassMeta(ctx, classID)
	if err != nil {
		if _, ok := err.(*core.NotFoundError); ok {
			res.addError("class does not exist")
			return nil
		}
		return err
	}
	count, err := svc.ledger.CountCurrentForClass(ctx, classID, nowFunc())
	if err != nil {
		return err
	}
	if count >= meta.Capacity {
		res.addError(fmt.Sprintf("class %s is at capacity (%d)", meta.Name, meta.Capacity))
	}
	return nil
}

func (svc *service) CheckTeacher(ctx context.Context, cand TeacherCandidate, excludeID int) Result {
	res := okResult()

	if exists, err := svc.teachers.TeacherFieldExists(ctx, FieldNationalID, []string{cand.NationalID}, excludeID); err != nil {
		return svc.failedResult("teacher national id check", err)
	} else if exists {
		res.addError("a teacher with this national id already exists")
	}

	if exists, err := svc.teachers.TeacherFieldExists(ctx, FieldCode, []string{cand.Code}, excludeID); err != nil {
		return svc.failedResult("teacher employee id check", err)
	} else if exists {
		res.addError("a teacher with this employee id already exists")
	}

	if variants := PhoneVariants(cand.Phone); len(variants) > 0 {
		if exists, err := svc.teachers.TeacherFieldExists(ctx, FieldPhone, variants, excludeID); err != nil {
			return svc.failedResult("teacher phone check", err)
		} else if exists {
			res.addError("a teacher with this phone number already exists")
		}
	}

	return res
}

// ValidateDeletion gates hard deletes. Soft deletes (archiving) bypass it.
func (svc *service) ValidateDeletion(ctx context.Context, entity Entity, id int) Result {
	res := okResult()

	switch entity {
	case EntityStudent:
		// soft constraints only: report cascade impact so the caller can confirm
		if n, err := svc.attendance.CountForStudent(ctx, id); err != nil {
			return svc.failedResult("student attendance cascade count", err)
		} else if n > 0 {
			res.addWarning(fmt.Sprintf("%d attendance record(s) will be permanently deleted", n))
		}
		if n, err := svc.payments.CountForStudent(ctx, id); err != nil {
			return svc.failedResult("student payment cascade count", err)
		} else if n > 0 {
			res.addWarning(fmt.Sprintf("%d payment record(s) will be permanently deleted", n))
		}

	case EntityTeacher:
		n, err := svc.classes.CountActiveClassesByTeacher(ctx, id)
		if err != nil {
			return svc.failedResult("teacher active class count", err)
		}
		if n > 0 {
			res.addError(fmt.Sprintf("teacher still has %d active class(es)", n))
		}

	case EntityClass:
		n, err := svc.students.CountActiveStudentsInClass(ctx, id)
		if err != nil {
			return svc.failedResult("class active student count", err)
		}
		if n > 0 {
			res.addError(fmt.Sprintf("class still has %d active student(s)", n))
		}

	default:
		res.addError(fmt.Sprintf("unknown entity type %q", entity))
	}

	return res
}
