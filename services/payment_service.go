package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorhub/models"
	"tutorhub/utils"
)

// MarkPaidDTO represents the data to settle a payment
type MarkPaidDTO struct {
	PaidDate string `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
}

// PaymentService provides the payment status lifecycle.
// The billing generator only ever creates pending records; every later
// transition (paid, waived, overdue) goes through this service or the
// scheduler.
type PaymentService struct {
	db      *gorm.DB
	email   *EmailService
	hmacKey string
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(db *gorm.DB, email *EmailService, hmacKey string) *PaymentService {
	return &PaymentService{
		db:      db,
		email:   email,
		hmacKey: hmacKey,
	}
}

// MarkPaid settles a pending or overdue payment and issues a signed receipt
func (s *PaymentService) MarkPaid(paymentID uuid.UUID, dto MarkPaidDTO) (*PaymentDTO, error) {
	paidDate := time.Now()
	if dto.PaidDate != "" {
		parsed, err := time.Parse(dateLayout, dto.PaidDate)
		if err != nil {
			return nil, errors.New("paid_date must be a date in format " + dateLayout)
		}
		paidDate = parsed
	}

	// Begin the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Load the payment
	var payment models.Payment
	if err := tx.Preload("Student").Preload("Course").
		First(&payment, "id = ?", paymentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment not found")
		}
		return nil, errors.New("failed to look up payment")
	}

	// Only pending and overdue payments can be settled
	if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusOverdue {
		tx.Rollback()
		return nil, fmt.Errorf("payment is %s and cannot be settled", payment.Status)
	}

	// Settle and sign the receipt
	payment.Status = models.PaymentStatusPaid
	payment.PaidDate = &paidDate
	payment.ReceiptRef = uuid.NewString()
	payment.ReceiptSig = utils.HMACSign(s.hmacKey, s.receiptPayload(&payment))

	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to update payment")
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordPaymentStatus("paid")

	// Send the receipt, but never fail the settlement over email
	if err := s.email.SendPaymentReceipt(payment.Student.Email, payment.Course.Name, payment.Amount, payment.ReceiptRef); err != nil {
		log.Printf("failed to send payment receipt: %v", err)
	}

	dtoOut := toPaymentDTO(payment)
	return &dtoOut, nil
}

// Waive writes off a pending or overdue payment
func (s *PaymentService) Waive(paymentID uuid.UUID) (*PaymentDTO, error) {
	// Begin the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Load the payment
	var payment models.Payment
	if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment not found")
		}
		return nil, errors.New("failed to look up payment")
	}

	if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusOverdue {
		tx.Rollback()
		return nil, fmt.Errorf("payment is %s and cannot be waived", payment.Status)
	}

	payment.Status = models.PaymentStatusWaived
	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to update payment")
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordPaymentStatus("waived")

	dtoOut := toPaymentDTO(payment)
	return &dtoOut, nil
}

// ListByStudent returns a student's payments, optionally filtered by status
func (s *PaymentService) ListByStudent(studentID uint, status string) ([]PaymentDTO, error) {
	query := s.db.Where("student_id = ?", studentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Order("period_start ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return s.toDTOs(payments), nil
}

// ListByCourse returns a course's payments, optionally filtered by status
func (s *PaymentService) ListByCourse(courseID uint, status string) ([]PaymentDTO, error) {
	query := s.db.Where("course_id = ?", courseID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Order("period_start ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return s.toDTOs(payments), nil
}

// EmailStatement builds a plain-text statement of every payment on record
// for the student and emails it
func (s *PaymentService) EmailStatement(studentID uint) error {
	var student models.Student
	if err := s.db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("student not found")
		}
		return errors.New("failed to look up student")
	}

	var payments []models.Payment
	if err := s.db.Where("student_id = ?", studentID).
		Preload("Course").
		Order("period_start ASC").
		Find(&payments).Error; err != nil {
		return errors.New("failed to load payments")
	}
	if len(payments) == 0 {
		return errors.New("student has no payments")
	}

	statement := fmt.Sprintf("Billing statement for %s %s\nGenerated: %s\n\n",
		student.FirstName, student.LastName, time.Now().Format(dateLayout))
	for _, payment := range payments {
		statement += fmt.Sprintf("%s  %s - %s  %s  %s\n",
			payment.Course.Name,
			payment.PeriodStart.Format(dateLayout),
			payment.PeriodEnd.Format(dateLayout),
			payment.Amount.StringFixed(2),
			payment.Status,
		)
	}

	return s.email.SendStatement(student.Email, statement)
}

// receiptPayload builds the canonical string covered by the receipt signature
func (s *PaymentService) receiptPayload(payment *models.Payment) string {
	return fmt.Sprintf("%s|%d|%d|%s|%s",
		payment.ReceiptRef,
		payment.StudentID,
		payment.CourseID,
		payment.PeriodStart.Format(dateLayout),
		payment.Amount.StringFixed(2),
	)
}

// toDTOs converts payment models to DTOs
func (s *PaymentService) toDTOs(payments []models.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, payment := range payments {
		dtos[i] = toPaymentDTO(payment)
	}
	return dtos
}
