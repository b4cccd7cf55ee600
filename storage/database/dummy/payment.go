package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	p.ID = repo.db.seq
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(_ context.Context, id int, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryStudentPayments(_ context.Context, studentID int, _ ...core.DBExecutor) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []payment.Payment
	for _, p := range repo.db.table {
		if p.StudentID == studentID {
			rows = append(rows, *p)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].DueDate.Equal(rows[j].DueDate) {
			return rows[i].DueDate.After(rows[j].DueDate)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	orig.Amount = p.Amount
	orig.Type = p.Type
	orig.Description = p.Description
	orig.DueDate = p.DueDate
	orig.PaidDate = p.PaidDate
	orig.Status = p.Status
	return *orig, nil
}

func (repo *paymentRepository) MarkOverdueBefore(_ context.Context, cutoff time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	d := core.Midnight(cutoff)
	var count int
	for _, p := range repo.db.table {
		if p.Status == payment.StatusPending && p.DueDate.Before(d) {
			p.Status = payment.StatusOverdue
			count++
		}
	}
	return count, nil
}

func (repo *paymentRepository) CountForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, p := range repo.db.table {
		if p.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (repo *paymentRepository) DeleteForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var count int
	for id, p := range repo.db.table {
		if p.StudentID == studentID {
			delete(repo.db.table, id)
			count++
		}
	}
	return count, nil
}
