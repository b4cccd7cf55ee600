package payment

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusOverdue Status = "OVERDUE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

type Type string

const (
	TypeTuition   Type = "TUITION"
	TypeMeal      Type = "MEAL"
	TypeTransport Type = "TRANSPORT"
	TypeOther     Type = "OTHER"
)

func (t Type) Valid() bool {
	switch t {
	case TypeTuition, TypeMeal, TypeTransport, TypeOther:
		return true
	}
	return false
}

// Payment is a financial obligation linked to a student. Amounts are in rials.
type Payment struct {
	ID          int         `db:"id" json:"id"`
	Reference   string      `db:"reference" json:"reference"` // external receipt number
	StudentID   int         `db:"student_id" json:"student_id"`
	Amount      int64       `db:"amount" json:"amount"`
	Type        Type        `db:"type" json:"type"`
	Description null.String `db:"description" json:"description"`
	DueDate     time.Time   `db:"due_date" json:"due_date"`
	PaidDate    null.Time   `db:"paid_date" json:"paid_date"`
	Status      Status      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"` // UTC
}

type NewPayment struct {
	StudentID   int       `json:"student_id" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,min=1"`
	Type        Type      `json:"type" validate:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// Summary totals a student's payments.
type Summary struct {
	Payments     []Payment `json:"payments"`
	TotalDue     int64     `json:"total_due"`
	TotalPaid    int64     `json:"total_paid"`
	TotalOverdue int64     `json:"total_overdue"`
}
