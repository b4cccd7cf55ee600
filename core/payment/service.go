package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/student"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("payment not found")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		GetPaymentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Payment, error)
		QueryStudentPayments(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		// MarkOverdueBefore flips PENDING rows with a due date before the cutoff
		// to OVERDUE and returns how many changed.
		MarkOverdueBefore(ctx context.Context, cutoff time.Time, exec ...core.DBExecutor) (int, error)
		CountForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
		DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
	}

	StudentDirectory interface {
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
	}

	Service interface {
		Create(ctx context.Context, np NewPayment) (Payment, error)
		GetByID(ctx context.Context, id int) (Payment, error)
		MarkPaid(ctx context.Context, id int, when time.Time) (Payment, error)
		// SweepOverdue flips pending payments past their due date to OVERDUE.
		SweepOverdue(ctx context.Context) (int, error)
		StudentSummary(ctx context.Context, studentID int) (Summary, error)
	}

	service struct {
		repo     Repository
		students StudentDirectory
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, students StudentDirectory) Service {
	return &service{repo: repo, students: students}
}

func (svc *service) Create(ctx context.Context, np NewPayment) (Payment, error) {
	if err := core.Validate.Struct(&np); err != nil {
		return Payment{}, err
	}
	if !np.Type.Valid() {
		return Payment{}, core.NewValidationError(
			errors.Errorf("invalid payment type %q", np.Type),
			core.FieldError{Field: "type", Error: fmt.Sprintf("invalid type %q", np.Type)},
		)
	}
	if _, err := svc.students.GetStudentByID(ctx, np.StudentID); err != nil {
		return Payment{}, err
	}

	return svc.repo.CreatePayment(ctx, Payment{
		Reference:   uuid.New().String(),
		StudentID:   np.StudentID,
		Amount:      np.Amount,
		Type:        np.Type,
		Description: null.NewString(np.Description, np.Description != ""),
		DueDate:     core.Midnight(np.DueDate),
		Status:      StatusPending,
		CreatedAt:   nowFunc().UTC(),
	})
}

func (svc *service) GetByID(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) MarkPaid(ctx context.Context, id int, when time.Time) (Payment, error) {
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if p.Status == StatusPaid {
		return Payment{}, core.NewConflictError("payment is already paid")
	}
	if when.IsZero() {
		when = nowFunc()
	}
	p.Status = StatusPaid
	p.PaidDate = null.TimeFrom(core.Midnight(when))
	return svc.repo.UpdatePayment(ctx, p)
}

func (svc *service) SweepOverdue(ctx context.Context) (int, error) {
	return svc.repo.MarkOverdueBefore(ctx, core.Midnight(nowFunc()))
}

func (svc *service) StudentSummary(ctx context.Context, studentID int) (Summary, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return Summary{}, err
	}
	rows, err := svc.repo.QueryStudentPayments(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying student payments")
	}
	sum := Summary{Payments: rows}
	for _, p := range rows {
		switch p.Status {
		case StatusPaid:
			sum.TotalPaid += p.Amount
		case StatusOverdue:
			sum.TotalOverdue += p.Amount
			sum.TotalDue += p.Amount
		default:
			sum.TotalDue += p.Amount
		}
	}
	return sum, nil
}
