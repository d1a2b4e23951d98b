package models

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus represents the lifecycle of an enrollment
type EnrollmentStatus string

const (
	EnrollmentStatusActive      EnrollmentStatus = "active"      // student currently owes tuition
	EnrollmentStatusTransferred EnrollmentStatus = "transferred" // moved to another course
	EnrollmentStatusLeft        EnrollmentStatus = "left"        // student left the course
)

// Enrollment ties a student to a course from a join date onward.
// JoinDate is the first day the student owes tuition for the course.
type Enrollment struct {
	gorm.Model
	StudentID uint             `gorm:"column:student_id;not null;index"`
	Student   Student          `gorm:"foreignKey:StudentID"`
	CourseID  uint             `gorm:"column:course_id;not null;index"`
	Course    Course           `gorm:"foreignKey:CourseID"`
	JoinDate  time.Time        `gorm:"column:join_date;type:date;not null"`
	LeftDate  *time.Time       `gorm:"column:left_date;type:date"`
	Status    EnrollmentStatus `gorm:"column:status;type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for the Enrollment model
func (Enrollment) TableName() string {
	return "enrollments"
}
