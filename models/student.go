package models

import (
	"errors"

	"gorm.io/gorm"
)

// Student represents a person enrolled with the tutoring business
type Student struct {
	gorm.Model
	FirstName string `gorm:"column:first_name;not null;size:50"`
	LastName  string `gorm:"column:last_name;not null;size:50"`
	Email     string `gorm:"column:email;unique;not null;size:100;index"`
	Phone     string `gorm:"column:phone;size:20"`
	Notes     string `gorm:"column:notes;type:text"`
}

// TableName returns the table name for the Student model
func (Student) TableName() string {
	return "students"
}

// BeforeCreate validates the student before it is persisted
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if len(s.FirstName) < 2 || len(s.FirstName) > 50 {
		return errors.New("first name must be between 2 and 50 characters")
	}
	if len(s.LastName) < 2 || len(s.LastName) > 50 {
		return errors.New("last name must be between 2 and 50 characters")
	}
	if len(s.Email) < 3 || len(s.Email) > 100 {
		return errors.New("email must be between 3 and 100 characters")
	}
	return nil
}
