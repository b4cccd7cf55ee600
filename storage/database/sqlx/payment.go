package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/payment"
)

type paymentRepository struct {
	exec core.DBExecutor
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(exec core.DBExecutor) *paymentRepository {
	return &paymentRepository{exec: exec}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	const q = `
		INSERT INTO payments (reference, student_id, amount, type, description, due_date, paid_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, q,
		p.Reference, p.StudentID, p.Amount, p.Type, p.Description, p.DueDate, p.PaidDate, p.Status, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int, exec ...core.DBExecutor) (payment.Payment, error) {
	var p payment.Payment
	err := getExec(repo.exec, exec).GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, id)
	if err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound, "finding payment by ID")
	}
	return p, nil
}

func (repo *paymentRepository) QueryStudentPayments(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]payment.Payment, error) {
	const q = `SELECT * FROM payments WHERE student_id = $1 ORDER BY due_date DESC, id DESC`
	var rows []payment.Payment
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student payments")
	}
	return rows, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	const q = `
		UPDATE payments
		SET amount = $2, type = $3, description = $4, due_date = $5, paid_date = $6, status = $7
		WHERE id = $1
		RETURNING *`
	var updated payment.Payment
	err := getExec(repo.exec, exec).GetContext(ctx, &updated, q,
		p.ID, p.Amount, p.Type, p.Description, p.DueDate, p.PaidDate, p.Status)
	if err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound, "updating payment")
	}
	return updated, nil
}

func (repo *paymentRepository) MarkOverdueBefore(ctx context.Context, cutoff time.Time, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE payments SET status = $1 WHERE status = $2 AND due_date < $3`,
		payment.StatusOverdue, payment.StatusPending, core.Midnight(cutoff))
	return rowsAffected(res, err, "marking overdue payments")
}

func (repo *paymentRepository) CountForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	var count int
	err := getExec(repo.exec, exec).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM payments WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting student payments")
	}
	return count, nil
}

func (repo *paymentRepository) DeleteForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`DELETE FROM payments WHERE student_id = $1`, studentID)
	return rowsAffected(res, err, "deleting student payments")
}
