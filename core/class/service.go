package class

import (
	"context"
	"fmt"
	"time"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/validation"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("class not found")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		GetClassByID(ctx context.Context, id int, exec ...core.DBExecutor) (Class, error)
		// GetActiveClassByGradeSection returns ErrNotFound when the pair is free.
		GetActiveClassByGradeSection(ctx context.Context, grade int, section string, exec ...core.DBExecutor) (Class, error)
		FilterClasses(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		SetClassActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) (Class, error)
		DeleteClass(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	// TeacherDirectory resolves the homeroom teacher.
	TeacherDirectory interface {
		GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error)
	}

	// RosterSource lists the students currently pointing at a class.
	RosterSource interface {
		StudentsInClass(ctx context.Context, classID int) ([]student.Student, error)
	}

	Checker interface {
		ValidateDeletion(ctx context.Context, entity validation.Entity, id int) validation.Result
	}

	Service interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		GetByID(ctx context.Context, id int) (Class, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Class, error)
		Update(ctx context.Context, id int, uc UpdateClass) (Class, error)
		Roster(ctx context.Context, id int) ([]student.Student, error)
		Archive(ctx context.Context, id int) (Class, error)
		HardDelete(ctx context.Context, id int) error
	}

	service struct {
		repo     Repository
		teachers TeacherDirectory
		roster   RosterSource
		check    Checker
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, teachers TeacherDirectory, roster RosterSource, check Checker) Service {
	return &service{repo: repo, teachers: teachers, roster: roster, check: check}
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}
	if _, err := svc.teachers.GetTeacherByID(ctx, nc.TeacherID); err != nil {
		return Class{}, err
	}
	if taken, err := svc.repo.GetActiveClassByGradeSection(ctx, nc.Grade, nc.Section); err == nil {
		return Class{}, core.NewConflictError(fmt.Sprintf("an active class %s already exists", taken.Name()))
	} else if _, ok := err.(*core.NotFoundError); !ok {
		return Class{}, err
	}

	now := nowFunc().UTC()
	cls := Class{
		Grade:     nc.Grade,
		Section:   nc.Section,
		TeacherID: nc.TeacherID,
		Capacity:  nc.Capacity,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *service) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Class, error) {
	return svc.repo.FilterClasses(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	if err := uc.Validate(); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.TeacherID != 0 {
		if _, err := svc.teachers.GetTeacherByID(ctx, uc.TeacherID); err != nil {
			return Class{}, err
		}
		cls.TeacherID = uc.TeacherID
	}
	if uc.Capacity != 0 {
		cls.Capacity = uc.Capacity
	}
	cls.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

// Roster reads the denormalized pointers; that is what they are for.
func (svc *service) Roster(ctx context.Context, id int) ([]student.Student, error) {
	if _, err := svc.repo.GetClassByID(ctx, id); err != nil {
		return nil, err
	}
	return svc.roster.StudentsInClass(ctx, id)
}

func (svc *service) Archive(ctx context.Context, id int) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if !cls.IsActive {
		return cls, nil
	}
	return svc.repo.SetClassActive(ctx, id, false)
}

func (svc *service) HardDelete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetClassByID(ctx, id); err != nil {
		return err
	}
	if res := svc.check.ValidateDeletion(ctx, validation.EntityClass, id); !res.IsValid {
		return res.AsConflict()
	}
	return svc.repo.DeleteClass(ctx, id)
}
