package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a tuition payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // generated, not yet paid
	PaymentStatusPaid    PaymentStatus = "paid"    // settled by the student
	PaymentStatusOverdue PaymentStatus = "overdue" // due date passed unpaid
	PaymentStatusWaived  PaymentStatus = "waived"  // written off by an admin
)

// Payment represents one billing cycle's tuition charge for a student.
// PeriodStart/PeriodEnd bound the half-open cycle [PeriodStart, PeriodEnd).
// At most one payment may exist per (student, course, period_start); this
// is the de-duplication contract the billing generator upholds.
type Payment struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StudentID   uint            `gorm:"column:student_id;not null;index:idx_payments_cycle,unique"`
	Student     Student         `gorm:"foreignKey:StudentID"`
	CourseID    uint            `gorm:"column:course_id;not null;index:idx_payments_cycle,unique"`
	Course      Course          `gorm:"foreignKey:CourseID"`
	PeriodStart time.Time       `gorm:"column:period_start;type:date;not null;index:idx_payments_cycle,unique"`
	PeriodEnd   time.Time       `gorm:"column:period_end;type:date;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	DueDate     time.Time       `gorm:"column:due_date;type:date;not null"`
	Status      PaymentStatus   `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	PaidDate    *time.Time      `gorm:"column:paid_date;type:date"`
	ReceiptRef  string          `gorm:"column:receipt_ref;size:64"`
	ReceiptSig  string          `gorm:"column:receipt_sig;size:64"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
