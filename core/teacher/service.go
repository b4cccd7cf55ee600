package teacher

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/validation"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("teacher not found")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (Teacher, error)
		FilterTeachers(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		SetTeacherActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error
		ListActiveEmails(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
	}

	Checker interface {
		CheckTeacher(ctx context.Context, cand validation.TeacherCandidate, excludeID int) validation.Result
		ValidateDeletion(ctx context.Context, entity validation.Entity, id int) validation.Result
	}

	Service interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		GetByID(ctx context.Context, id int) (Teacher, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Teacher, error)
		Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error)
		Archive(ctx context.Context, id int) (Teacher, error)
		HardDelete(ctx context.Context, id int) error
	}

	service struct {
		repo  Repository
		check Checker
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, check Checker) Service {
	return &service{repo: repo, check: check}
}

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(); err != nil {
		return Teacher{}, err
	}

	res := svc.check.CheckTeacher(ctx, validation.TeacherCandidate{
		Code:       nt.Code,
		FirstName:  nt.FirstName,
		LastName:   nt.LastName,
		NationalID: nt.NationalID,
		Phone:      nt.Phone,
	}, 0)
	if !res.IsValid {
		return Teacher{}, res.AsError()
	}

	now := nowFunc().UTC()
	hired := nt.HireDate
	if hired.IsZero() {
		hired = core.Midnight(now)
	}
	tch := Teacher{
		Code:       nt.Code,
		FirstName:  nt.FirstName,
		LastName:   nt.LastName,
		NationalID: nt.NationalID,
		Phone:      null.NewString(nt.Phone, nt.Phone != ""),
		Email:      null.NewString(nt.Email, nt.Email != ""),
		IsActive:   true,
		HireDate:   core.Midnight(hired),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Teacher, error) {
	return svc.repo.FilterTeachers(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	if err := ut.Validate(); err != nil {
		return Teacher{}, err
	}
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}

	if ut.FirstName != "" {
		tch.FirstName = ut.FirstName
	}
	if ut.LastName != "" {
		tch.LastName = ut.LastName
	}
	if ut.NationalID != "" {
		tch.NationalID = ut.NationalID
	}
	if ut.Phone != "" {
		tch.Phone = null.StringFrom(ut.Phone)
	}
	if ut.Email != "" {
		tch.Email = null.StringFrom(ut.Email)
	}

	res := svc.check.CheckTeacher(ctx, validation.TeacherCandidate{
		Code:       tch.Code,
		FirstName:  tch.FirstName,
		LastName:   tch.LastName,
		NationalID: tch.NationalID,
		Phone:      tch.Phone.String,
	}, id)
	if !res.IsValid {
		return Teacher{}, res.AsError()
	}

	tch.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateTeacher(ctx, tch)
}

func (svc *service) Archive(ctx context.Context, id int) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if !tch.IsActive {
		return tch, nil
	}
	return svc.repo.SetTeacherActive(ctx, id, false)
}

// HardDelete refuses while any active class still points at the teacher.
func (svc *service) HardDelete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetTeacherByID(ctx, id); err != nil {
		return err
	}
	if res := svc.check.ValidateDeletion(ctx, validation.EntityTeacher, id); !res.IsValid {
		return res.AsConflict()
	}
	return svc.repo.DeleteTeacher(ctx, id)
}
