package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/payment"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/storage/database/dummy"
)

var wednesday = time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)

type fixture struct {
	repo    payment.Repository
	svc     payment.Service
	student student.Student
}

func setup(t *testing.T) *fixture {
	t.Helper()
	core.InitValidators()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{repo: dummydb.NewPaymentRepository(db)}
	stuRepo := dummydb.NewStudentRepository(db)
	f.svc = payment.NewService(f.repo, stuRepo)

	f.student, err = stuRepo.CreateStudent(context.Background(), student.Student{
		Code: "S-100", FirstName: "علی", LastName: "کریمی", NationalID: "0012345678", IsActive: true,
	})
	require.NoError(t, err)
	return f
}

func Test_service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	defer payment.SetNowFunc(func() time.Time { return wednesday })()

	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	p, err := f.svc.Create(ctx, payment.NewPayment{
		StudentID: f.student.ID, Amount: 1500000, Type: payment.TypeTuition, DueDate: due,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.NotEmpty(t, p.Reference)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, due, p.DueDate)
	assert.False(t, p.PaidDate.Valid)

	t.Run("invalid type", func(t *testing.T) {
		_, err := f.svc.Create(ctx, payment.NewPayment{
			StudentID: f.student.ID, Amount: 1000, Type: "BRIBE", DueDate: due,
		})
		require.Error(t, err)
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "want ValidationError, got %T", err)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Create(ctx, payment.NewPayment{
			StudentID: 999, Amount: 1000, Type: payment.TypeMeal, DueDate: due,
		})
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := f.svc.Create(ctx, payment.NewPayment{
			StudentID: f.student.ID, Type: payment.TypeMeal, DueDate: due,
		})
		assert.Error(t, err)
	})
}

func Test_service_MarkPaid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	defer payment.SetNowFunc(func() time.Time { return wednesday })()

	p, err := f.svc.Create(ctx, payment.NewPayment{
		StudentID: f.student.ID, Amount: 500000, Type: payment.TypeTransport,
		DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	paidOn := time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC)
	paid, err := f.svc.MarkPaid(ctx, p.ID, paidOn)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, paid.Status)
	assert.Equal(t, core.Midnight(paidOn), paid.PaidDate.Time)

	t.Run("paying twice conflicts", func(t *testing.T) {
		_, err := f.svc.MarkPaid(ctx, p.ID, paidOn)
		require.Error(t, err)
		_, ok := err.(*core.ConflictError)
		assert.True(t, ok, "want ConflictError, got %T", err)
	})

	t.Run("zero time defaults to today", func(t *testing.T) {
		p, err := f.svc.Create(ctx, payment.NewPayment{
			StudentID: f.student.ID, Amount: 1000, Type: payment.TypeOther,
			DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		paid, err := f.svc.MarkPaid(ctx, p.ID, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, core.Midnight(wednesday), paid.PaidDate.Time)
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, err := f.svc.MarkPaid(ctx, 999, paidOn)
		assert.Equal(t, payment.ErrNotFound, err)
	})
}

func Test_service_SweepOverdue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	defer payment.SetNowFunc(func() time.Time { return wednesday })()

	mkPayment := func(due time.Time) payment.Payment {
		p, err := f.svc.Create(ctx, payment.NewPayment{
			StudentID: f.student.ID, Amount: 100000, Type: payment.TypeTuition, DueDate: due,
		})
		require.NoError(t, err)
		return p
	}
	pastDue := mkPayment(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	dueToday := mkPayment(core.Midnight(wednesday))
	future := mkPayment(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	// a past-due but already paid payment is left alone
	paid := mkPayment(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err := f.svc.MarkPaid(ctx, paid.ID, wednesday)
	require.NoError(t, err)

	n, err := f.svc.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for _, tc := range []struct {
		id   int
		want payment.Status
	}{
		{pastDue.ID, payment.StatusOverdue},
		{dueToday.ID, payment.StatusPending}, // due today is not yet overdue
		{future.ID, payment.StatusPending},
		{paid.ID, payment.StatusPaid},
	} {
		p, err := f.svc.GetByID(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.Status, "payment %d", tc.id)
	}

	t.Run("second sweep finds nothing", func(t *testing.T) {
		n, err := f.svc.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func Test_service_StudentSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	defer payment.SetNowFunc(func() time.Time { return wednesday })()

	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	mkPayment := func(amount int64, due time.Time) payment.Payment {
		p, err := f.svc.Create(ctx, payment.NewPayment{
			StudentID: f.student.ID, Amount: amount, Type: payment.TypeTuition, DueDate: due,
		})
		require.NoError(t, err)
		return p
	}

	paid := mkPayment(1000000, due)
	_, err := f.svc.MarkPaid(ctx, paid.ID, wednesday)
	require.NoError(t, err)

	// one pending, one that will go overdue
	mkPayment(300000, due)
	mkPayment(200000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err = f.svc.SweepOverdue(ctx)
	require.NoError(t, err)

	sum, err := f.svc.StudentSummary(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, sum.Payments, 3)
	assert.Equal(t, int64(1000000), sum.TotalPaid)
	assert.Equal(t, int64(500000), sum.TotalDue, "overdue amounts stay part of the balance due")
	assert.Equal(t, int64(200000), sum.TotalOverdue)

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.StudentSummary(ctx, 999)
		assert.Equal(t, student.ErrNotFound, err)
	})
}
