package services

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tutorhub/models"
)

// CreateCourseDTO represents the data to create a course
type CreateCourseDTO struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Fee       float64 `json:"fee" validate:"required,gt=0"`
	Period    string  `json:"period" validate:"required,oneof=weekly monthly yearly"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	Capacity  int     `json:"capacity" validate:"omitempty,gte=0"`
}

// UpdateCourseDTO represents the data to update a course.
// Fee and capacity are pointers so an absent field can be told apart
// from an explicit zero. Period and start date anchor every generated
// billing cycle, so they are locked once the course has payments.
type UpdateCourseDTO struct {
	Name      string   `json:"name" validate:"omitempty,min=2,max=100"`
	Fee       *float64 `json:"fee" validate:"omitempty,gt=0"`
	Period    string   `json:"period" validate:"omitempty,oneof=weekly monthly yearly"`
	StartDate string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Capacity  *int     `json:"capacity" validate:"omitempty,gte=0"`
}

// CourseDTO represents course data returned to the client
type CourseDTO struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Fee       decimal.Decimal `json:"fee"`
	Period    string          `json:"period"`
	StartDate time.Time       `json:"start_date"`
	Capacity  int             `json:"capacity"`
}

// CourseService provides methods to manage courses
type CourseService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewCourseService creates a new CourseService instance
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{
		db:        db,
		validator: validator.New(),
	}
}

// Create creates a new course
func (s *CourseService) Create(dto CreateCourseDTO) (*CourseDTO, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	startDate, err := time.Parse(dateLayout, dto.StartDate)
	if err != nil {
		return nil, errors.New("start_date must be a date in format " + dateLayout)
	}

	course := &models.Course{
		Name:      dto.Name,
		Fee:       decimal.NewFromFloat(dto.Fee),
		Period:    models.CoursePeriod(dto.Period),
		StartDate: startDate,
		Capacity:  dto.Capacity,
	}
	if err := s.db.Create(course).Error; err != nil {
		return nil, errors.New("failed to create course")
	}

	return s.toDTO(course), nil
}

// GetByID returns a course by ID
func (s *CourseService) GetByID(id uint) (*CourseDTO, error) {
	var course models.Course
	if err := s.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("course not found")
		}
		return nil, err
	}
	return s.toDTO(&course), nil
}

// List returns all courses ordered by start date
func (s *CourseService) List() ([]CourseDTO, error) {
	var courses []models.Course
	if err := s.db.Order("start_date ASC").Find(&courses).Error; err != nil {
		return nil, err
	}

	dtos := make([]CourseDTO, len(courses))
	for i := range courses {
		dtos[i] = *s.toDTO(&courses[i])
	}
	return dtos, nil
}

// Update applies the non-empty fields of the DTO to a course
func (s *CourseService) Update(id uint, dto UpdateCourseDTO) (*CourseDTO, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	var course models.Course
	if err := s.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("course not found")
		}
		return nil, err
	}

	// The billing anchor cannot move once cycles have been charged
	if dto.Period != "" || dto.StartDate != "" {
		var count int64
		if err := s.db.Model(&models.Payment{}).Where("course_id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("period and start date cannot change after payments exist")
		}
	}

	if err := applyCourseUpdate(&course, dto); err != nil {
		return nil, err
	}

	if err := s.db.Save(&course).Error; err != nil {
		return nil, errors.New("failed to update course")
	}
	return s.toDTO(&course), nil
}

// applyCourseUpdate copies the fields present in the DTO onto the course.
// Nil pointers and empty strings mean the field was not sent; an explicit
// zero capacity is applied.
func applyCourseUpdate(course *models.Course, dto UpdateCourseDTO) error {
	if dto.Name != "" {
		course.Name = dto.Name
	}
	if dto.Fee != nil {
		course.Fee = decimal.NewFromFloat(*dto.Fee)
	}
	if dto.Period != "" {
		course.Period = models.CoursePeriod(dto.Period)
	}
	if dto.StartDate != "" {
		startDate, err := time.Parse(dateLayout, dto.StartDate)
		if err != nil {
			return errors.New("start_date must be a date in format " + dateLayout)
		}
		course.StartDate = startDate
	}
	if dto.Capacity != nil {
		course.Capacity = *dto.Capacity
	}
	return nil
}

// Delete removes a course without active enrollments
func (s *CourseService) Delete(id uint) error {
	var count int64
	if err := s.db.Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", id, models.EnrollmentStatusActive).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("course has active enrollments")
	}
	return s.db.Delete(&models.Course{}, id).Error
}

// toDTO converts a Course model to a DTO
func (s *CourseService) toDTO(course *models.Course) *CourseDTO {
	return &CourseDTO{
		ID:        course.ID,
		Name:      course.Name,
		Fee:       course.Fee,
		Period:    string(course.Period),
		StartDate: course.StartDate,
		Capacity:  course.Capacity,
	}
}
