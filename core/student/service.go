package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/validation"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("student not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, stu Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		GetStudentsByIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]Student, error)
		FilterStudents(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudent(ctx context.Context, stu Student, exec ...core.DBExecutor) (Student, error)
		SetStudentActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) (Student, error)
		// SyncClassPointer updates the denormalized class snapshot. Reserved for
		// the assignment service's transfer transaction.
		SyncClassPointer(ctx context.Context, studentID int, classID, grade null.Int, section null.String, exec ...core.DBExecutor) error
		CountActiveInClass(ctx context.Context, classID int, exec ...core.DBExecutor) (int, error)
		DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	// Checker runs the pre-write validation checks and the deletion guard.
	Checker interface {
		CheckStudent(ctx context.Context, cand validation.StudentCandidate, excludeID int) validation.Result
		ValidateDeletion(ctx context.Context, entity validation.Entity, id int) validation.Result
	}

	// CascadeDeleter removes a student's dependent rows on hard delete.
	CascadeDeleter interface {
		DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id int) (Student, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Student, error)
		Update(ctx context.Context, id int, up UpdateStudent) (Student, error)
		Archive(ctx context.Context, id int) (Student, error)
		Restore(ctx context.Context, id int) (Student, error)
		HardDelete(ctx context.Context, id int) error
	}

	service struct {
		db       core.DB
		repo     Repository
		check    Checker
		cascades []CascadeDeleter
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(db core.DB, repo Repository, check Checker, cascades ...CascadeDeleter) Service {
	return &service{db: db, repo: repo, check: check, cascades: cascades}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}

	res := svc.check.CheckStudent(ctx, validation.StudentCandidate{
		Code:       ns.Code,
		FirstName:  ns.FirstName,
		LastName:   ns.LastName,
		NationalID: ns.NationalID,
		Phone:      ns.Phone,
	}, 0)
	if !res.IsValid {
		return Student{}, res.AsError()
	}

	now := nowFunc().UTC()
	enrolled := ns.EnrollmentDate
	if enrolled.IsZero() {
		enrolled = core.Midnight(now)
	}
	stu := Student{
		Code:           ns.Code,
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		NationalID:     ns.NationalID,
		Phone:          null.NewString(ns.Phone, ns.Phone != ""),
		IsActive:       true,
		EnrollmentDate: core.Midnight(enrolled),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateStudent(ctx, stu)
}

func (svc *service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id int, up UpdateStudent) (Student, error) {
	if err := up.Validate(); err != nil {
		return Student{}, err
	}
	stu, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if up.FirstName != "" {
		stu.FirstName = up.FirstName
	}
	if up.LastName != "" {
		stu.LastName = up.LastName
	}
	if up.NationalID != "" {
		stu.NationalID = up.NationalID
	}
	if up.Phone != "" {
		stu.Phone = null.StringFrom(up.Phone)
	}

	res := svc.check.CheckStudent(ctx, validation.StudentCandidate{
		Code:       stu.Code,
		FirstName:  stu.FirstName,
		LastName:   stu.LastName,
		NationalID: stu.NationalID,
		Phone:      stu.Phone.String,
		ClassID:    int(stu.ClassID.Int),
	}, id)
	if !res.IsValid {
		return Student{}, res.AsError()
	}

	stu.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, stu)
}

// Archive soft-deletes a student; archiving an already-inactive student is a
// no-op that still succeeds.
func (svc *service) Archive(ctx context.Context, id int) (Student, error) {
	stu, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if !stu.IsActive {
		return stu, nil
	}
	return svc.repo.SetStudentActive(ctx, id, false)
}

func (svc *service) Restore(ctx context.Context, id int) (Student, error) {
	stu, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if stu.IsActive {
		return stu, nil
	}
	return svc.repo.SetStudentActive(ctx, id, true)
}

// HardDelete permanently removes the student and cascades to attendance,
// payment and assignment rows in one transaction. The deletion guard runs
// first; for students it only produces warnings, which the API surfaces
// through the separate validate-deletion endpoint.
func (svc *service) HardDelete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return err
	}
	if res := svc.check.ValidateDeletion(ctx, validation.EntityStudent, id); !res.IsValid {
		return res.AsConflict()
	}

	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning student delete tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, cascade := range svc.cascades {
		if _, err := cascade.DeleteForStudent(ctx, id, tx); err != nil {
			return errors.Wrap(err, "cascading student delete")
		}
	}
	if err := svc.repo.DeleteStudent(ctx, id, tx); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return errors.Wrap(tx.Commit(), "committing student delete tx")
}
