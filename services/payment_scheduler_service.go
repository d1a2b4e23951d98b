package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"tutorhub/models"
	"tutorhub/utils"
)

// PaymentSchedulerService runs the background billing maintenance loops
type PaymentSchedulerService struct {
	db      *gorm.DB
	billing *BillingService
	email   *EmailService
}

// NewPaymentSchedulerService creates a new PaymentSchedulerService instance
func NewPaymentSchedulerService(db *gorm.DB, billing *BillingService, email *EmailService) *PaymentSchedulerService {
	return &PaymentSchedulerService{
		db:      db,
		billing: billing,
		email:   email,
	}
}

// Start launches the scheduler loops
func (s *PaymentSchedulerService) Start() {
	// Mark overdue payments every hour
	overdueTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-overdueTicker.C:
				if err := s.processOverduePayments(); err != nil {
					log.Printf("failed to process overdue payments: %v", err)
				}
			}
		}
	}()

	// Extend billing coverage for active enrollments every 24 hours
	coverageTicker := time.NewTicker(24 * time.Hour)
	go func() {
		for {
			select {
			case <-coverageTicker.C:
				if err := s.extendBillingCoverage(); err != nil {
					log.Printf("failed to extend billing coverage: %v", err)
				}
			}
		}
	}()
}

// processOverduePayments marks pending payments past their due date as
// overdue and sends a reminder to the student
func (s *PaymentSchedulerService) processOverduePayments() (err error) {
	start := time.Now()
	defer func() { utils.LogOperation("process_overdue_payments", start, err) }()

	// Begin the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("failed to begin transaction")
	}

	// Fetch pending payments whose due date has passed
	var payments []models.Payment
	if err := tx.Where("due_date < ? AND status = ?", time.Now(), models.PaymentStatusPending).
		Preload("Student").
		Preload("Course").
		Find(&payments).Error; err != nil {
		tx.Rollback()
		return errors.New("failed to load due payments")
	}

	for i := range payments {
		payments[i].Status = models.PaymentStatusOverdue
		if err := tx.Save(&payments[i]).Error; err != nil {
			tx.Rollback()
			return errors.New("failed to update overdue payment")
		}
		utils.GetMetrics().RecordPaymentStatus("overdue")
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return errors.New("failed to commit transaction")
	}

	// Reminders go out after the commit; a mail failure must not roll
	// back the status change
	for i := range payments {
		if err := s.email.SendPaymentReminder(
			payments[i].Student.Email,
			payments[i].Course.Name,
			payments[i].Amount,
			payments[i].DueDate,
		); err != nil {
			log.Printf("failed to send payment reminder: %v", err)
		}
	}

	return nil
}

// extendBillingCoverage re-runs the billing generator for every active
// enrollment. The generator skips cycles that already have a record, so
// this only appends the cycles that rolled into the look-ahead horizon
// since the last run.
func (s *PaymentSchedulerService) extendBillingCoverage() (err error) {
	start := time.Now()
	defer func() { utils.LogOperation("extend_billing_coverage", start, err) }()

	// Begin the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("failed to begin transaction")
	}

	// Fetch all active enrollments with their courses
	var enrollments []models.Enrollment
	if err := tx.Where("status = ?", models.EnrollmentStatusActive).
		Preload("Course").
		Find(&enrollments).Error; err != nil {
		tx.Rollback()
		return errors.New("failed to load active enrollments")
	}

	generated := 0
	for _, enrollment := range enrollments {
		var existing []models.Payment
		if err := tx.Where("student_id = ? AND course_id = ?",
			enrollment.StudentID, enrollment.CourseID).
			Find(&existing).Error; err != nil {
			tx.Rollback()
			return errors.New("failed to load existing payments")
		}

		// Anchor at the cycle containing today so the window rolls
		// forward; the anchor stays on a cycle boundary, which keeps
		// the duplicate check aligned with already-generated records
		anchor := enrollment.JoinDate
		if aligned, err := s.billing.CurrentCycleStart(enrollment.Course, time.Now()); err == nil && aligned.After(anchor) {
			anchor = aligned
		}

		newPayments, err := s.billing.GenerateSchedule(enrollment.StudentID, enrollment.Course, anchor, existing)
		if err != nil {
			// A misconfigured course must not stall the whole batch
			log.Printf("skipping enrollment %d: %v", enrollment.ID, err)
			continue
		}

		for i := range newPayments {
			if err := tx.Create(&newPayments[i]).Error; err != nil {
				tx.Rollback()
				return errors.New("failed to create payment")
			}
		}
		generated += len(newPayments)
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordBillingRun(generated)
	if generated > 0 {
		log.Printf("billing coverage extended: %d new payments", generated)
	}

	return nil
}
