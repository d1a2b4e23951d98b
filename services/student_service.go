package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"tutorhub/models"
)

// CreateStudentDTO represents the data to register a student
type CreateStudentDTO struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Notes     string `json:"notes"`
}

// UpdateStudentDTO represents the data to update a student
type UpdateStudentDTO struct {
	FirstName string `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,min=2,max=50"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Notes     string `json:"notes"`
}

// StudentDTO represents student data returned to the client
type StudentDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// StudentService provides methods to manage students
type StudentService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewStudentService creates a new StudentService instance
func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{
		db:        db,
		validator: validator.New(),
	}
}

// Create registers a new student
func (s *StudentService) Create(dto CreateStudentDTO) (*StudentDTO, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	// Reject a duplicate email
	var existing models.Student
	if err := s.db.Where("LOWER(email) = LOWER(?)", dto.Email).First(&existing).Error; err == nil {
		return nil, errors.New("student with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := &models.Student{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Phone:     dto.Phone,
		Notes:     dto.Notes,
	}
	if err := s.db.Create(student).Error; err != nil {
		return nil, errors.New("failed to create student")
	}

	return s.toDTO(student), nil
}

// GetByID returns a student by ID
func (s *StudentService) GetByID(id uint) (*StudentDTO, error) {
	var student models.Student
	if err := s.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("student not found")
		}
		return nil, err
	}
	return s.toDTO(&student), nil
}

// List returns all students ordered by last name
func (s *StudentService) List() ([]StudentDTO, error) {
	var students []models.Student
	if err := s.db.Order("last_name ASC, first_name ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	dtos := make([]StudentDTO, len(students))
	for i := range students {
		dtos[i] = *s.toDTO(&students[i])
	}
	return dtos, nil
}

// Update applies the non-empty fields of the DTO to a student
func (s *StudentService) Update(id uint, dto UpdateStudentDTO) (*StudentDTO, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	var student models.Student
	if err := s.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("student not found")
		}
		return nil, err
	}

	if dto.FirstName != "" {
		student.FirstName = dto.FirstName
	}
	if dto.LastName != "" {
		student.LastName = dto.LastName
	}
	if dto.Email != "" {
		student.Email = dto.Email
	}
	if dto.Phone != "" {
		student.Phone = dto.Phone
	}
	if dto.Notes != "" {
		student.Notes = dto.Notes
	}

	if err := s.db.Save(&student).Error; err != nil {
		return nil, errors.New("failed to update student")
	}
	return s.toDTO(&student), nil
}

// Delete removes a student without active enrollments
func (s *StudentService) Delete(id uint) error {
	var count int64
	if err := s.db.Model(&models.Enrollment{}).
		Where("student_id = ? AND status = ?", id, models.EnrollmentStatusActive).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("student has active enrollments")
	}
	return s.db.Delete(&models.Student{}, id).Error
}

// toDTO converts a Student model to a DTO
func (s *StudentService) toDTO(student *models.Student) *StudentDTO {
	return &StudentDTO{
		ID:        student.ID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Email:     student.Email,
		Phone:     student.Phone,
		Notes:     student.Notes,
	}
}

// validationError collects validator messages into a single error
func validationError(err error) error {
	validationErrors := err.(validator.ValidationErrors)
	var errorMessages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMessages = append(errorMessages, "field "+e.Field()+" is required")
		case "email":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be a valid email")
		case "min", "max":
			errorMessages = append(errorMessages, "field "+e.Field()+" has invalid length")
		case "gt":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be greater than 0")
		case "oneof":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be one of: "+e.Param())
		case "datetime":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be a date in format "+dateLayout)
		default:
			errorMessages = append(errorMessages, "field "+e.Field()+" is invalid")
		}
	}
	return errors.New(strings.Join(errorMessages, "; "))
}
