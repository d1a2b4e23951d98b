package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tutorhub/models"
	"tutorhub/utils"
)

// dateLayout is the wire format for calendar dates
const dateLayout = "2006-01-02"

// EnrollStudentDTO represents the data to enroll a student in a course
type EnrollStudentDTO struct {
	StudentID uint   `json:"student_id" validate:"required"`
	CourseID  uint   `json:"course_id" validate:"required"`
	JoinDate  string `json:"join_date" validate:"required,datetime=2006-01-02"`
}

// TransferStudentDTO represents the data to move an enrollment to another course
type TransferStudentDTO struct {
	EnrollmentID   uint   `json:"-" validate:"required"`
	TargetCourseID uint   `json:"target_course_id" validate:"required"`
	JoinDate       string `json:"join_date" validate:"required,datetime=2006-01-02"`
}

// PaymentDTO represents payment data returned to the client
type PaymentDTO struct {
	ID          string          `json:"id"`
	StudentID   uint            `json:"student_id"`
	CourseID    uint            `json:"course_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      string          `json:"status"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	ReceiptRef  string          `json:"receipt_ref,omitempty"`
}

// EnrollmentResponseDTO represents the response after an enroll or transfer
type EnrollmentResponseDTO struct {
	ID          uint         `json:"id"`
	StudentID   uint         `json:"student_id"`
	CourseID    uint         `json:"course_id"`
	JoinDate    time.Time    `json:"join_date"`
	Status      string       `json:"status"`
	NewPayments []PaymentDTO `json:"new_payments"`
}

// EnrollmentService provides enroll and transfer operations.
// Both are retry-safe: the billing generator skips cycles that already
// have a payment record, so re-running an operation never duplicates
// charges.
type EnrollmentService struct {
	db        *gorm.DB
	validator *validator.Validate
	billing   *BillingService
	email     *EmailService
}

// NewEnrollmentService creates a new EnrollmentService instance
func NewEnrollmentService(db *gorm.DB, billing *BillingService, email *EmailService) *EnrollmentService {
	return &EnrollmentService{
		db:        db,
		validator: validator.New(),
		billing:   billing,
		email:     email,
	}
}

// validateDTO validates a DTO and collects readable messages
func (s *EnrollmentService) validateDTO(dto interface{}) error {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "field "+e.Field()+" is required")
			case "datetime":
				errorMessages = append(errorMessages, "field "+e.Field()+" must be a date in format "+dateLayout)
			default:
				errorMessages = append(errorMessages, "field "+e.Field()+" is invalid")
			}
		}
		return errors.New(strings.Join(errorMessages, "; "))
	}
	return nil
}

// Enroll enrolls a student in a course and generates the tuition schedule
func (s *EnrollmentService) Enroll(dto EnrollStudentDTO) (*EnrollmentResponseDTO, error) {
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	joinDate, err := time.Parse(dateLayout, dto.JoinDate)
	if err != nil {
		return nil, ErrInvalidJoinDate
	}

	// Begin the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Check the student exists
	var student models.Student
	if err := tx.First(&student, dto.StudentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("student not found")
		}
		return nil, errors.New("failed to look up student")
	}

	// Check the course exists
	var course models.Course
	if err := tx.First(&course, dto.CourseID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("course not found")
		}
		return nil, errors.New("failed to look up course")
	}

	// Reject a second active enrollment for the same pair
	var existingEnrollment models.Enrollment
	if err := tx.Where("student_id = ? AND course_id = ? AND status = ?",
		dto.StudentID, dto.CourseID, models.EnrollmentStatusActive).
		First(&existingEnrollment).Error; err == nil {
		tx.Rollback()
		return nil, errors.New("student is already enrolled in this course")
	}

	// Create the enrollment
	enrollment := &models.Enrollment{
		StudentID: dto.StudentID,
		CourseID:  dto.CourseID,
		JoinDate:  joinDate,
		Status:    models.EnrollmentStatusActive,
	}
	if err := tx.Create(enrollment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to create enrollment")
	}

	// Generate and persist the missing billing cycles
	newPayments, err := s.generateAndStore(tx, dto.StudentID, course, joinDate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordEnrollment("enroll")
	utils.GetMetrics().RecordBillingRun(len(newPayments))

	// Send the confirmation, but never fail the enrollment over email
	if err := s.email.SendEnrollmentConfirmation(student.Email, student.FirstName, course.Name, joinDate); err != nil {
		log.Printf("failed to send enrollment confirmation: %v", err)
	}

	return s.toResponseDTO(enrollment, newPayments), nil
}

// Transfer moves an active enrollment to another course.
// The source enrollment is closed, a new enrollment is created in the
// target course, and the billing schedule for the target pair is
// generated idempotently.
func (s *EnrollmentService) Transfer(dto TransferStudentDTO) (*EnrollmentResponseDTO, error) {
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	joinDate, err := time.Parse(dateLayout, dto.JoinDate)
	if err != nil {
		return nil, ErrInvalidJoinDate
	}

	// Begin the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Load the source enrollment
	var enrollment models.Enrollment
	if err := tx.Preload("Student").First(&enrollment, dto.EnrollmentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("enrollment not found")
		}
		return nil, errors.New("failed to look up enrollment")
	}

	if enrollment.Status != models.EnrollmentStatusActive {
		tx.Rollback()
		return nil, errors.New("enrollment is not active")
	}
	if enrollment.CourseID == dto.TargetCourseID {
		tx.Rollback()
		return nil, errors.New("target course matches the current course")
	}

	// Check the target course exists
	var course models.Course
	if err := tx.First(&course, dto.TargetCourseID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("target course not found")
		}
		return nil, errors.New("failed to look up target course")
	}

	// Close the source enrollment
	leftDate := joinDate
	enrollment.Status = models.EnrollmentStatusTransferred
	enrollment.LeftDate = &leftDate
	if err := tx.Save(&enrollment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to close source enrollment")
	}

	// Open the target enrollment
	target := &models.Enrollment{
		StudentID: enrollment.StudentID,
		CourseID:  dto.TargetCourseID,
		JoinDate:  joinDate,
		Status:    models.EnrollmentStatusActive,
	}
	if err := tx.Create(target).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to create target enrollment")
	}

	// Generate the target schedule; existing records suppress duplicates
	newPayments, err := s.generateAndStore(tx, enrollment.StudentID, course, joinDate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordEnrollment("transfer")
	utils.GetMetrics().RecordBillingRun(len(newPayments))

	return s.toResponseDTO(target, newPayments), nil
}

// generateAndStore runs the billing generator against the payments already
// recorded for the pair and inserts the surviving candidates
func (s *EnrollmentService) generateAndStore(tx *gorm.DB, studentID uint, course models.Course, joinDate time.Time) ([]models.Payment, error) {
	var existing []models.Payment
	if err := tx.Where("student_id = ? AND course_id = ?", studentID, course.ID).
		Find(&existing).Error; err != nil {
		return nil, errors.New("failed to load existing payments")
	}

	newPayments, err := s.billing.GenerateSchedule(studentID, course, joinDate, existing)
	if err != nil {
		return nil, err
	}

	for i := range newPayments {
		if err := tx.Create(&newPayments[i]).Error; err != nil {
			return nil, errors.New("failed to create payment")
		}
	}
	return newPayments, nil
}

// GetByStudent returns all enrollments of a student
func (s *EnrollmentService) GetByStudent(studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db.Where("student_id = ?", studentID).
		Preload("Course").
		Order("join_date ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// GetByCourse returns all enrollments of a course
func (s *EnrollmentService) GetByCourse(courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db.Where("course_id = ?", courseID).
		Preload("Student").
		Order("join_date ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// toPaymentDTO converts a Payment model to a DTO
func toPaymentDTO(payment models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          payment.ID.String(),
		StudentID:   payment.StudentID,
		CourseID:    payment.CourseID,
		PeriodStart: payment.PeriodStart,
		PeriodEnd:   payment.PeriodEnd,
		Amount:      payment.Amount,
		DueDate:     payment.DueDate,
		Status:      string(payment.Status),
		PaidDate:    payment.PaidDate,
		ReceiptRef:  payment.ReceiptRef,
	}
}

// toResponseDTO builds the enroll/transfer response
func (s *EnrollmentService) toResponseDTO(enrollment *models.Enrollment, payments []models.Payment) *EnrollmentResponseDTO {
	paymentDTOs := make([]PaymentDTO, len(payments))
	for i, payment := range payments {
		paymentDTOs[i] = toPaymentDTO(payment)
	}
	return &EnrollmentResponseDTO{
		ID:          enrollment.ID,
		StudentID:   enrollment.StudentID,
		CourseID:    enrollment.CourseID,
		JoinDate:    enrollment.JoinDate,
		Status:      string(enrollment.Status),
		NewPayments: paymentDTOs,
	}
}
