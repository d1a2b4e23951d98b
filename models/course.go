package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CoursePeriod represents the length of one billing cycle
type CoursePeriod string

const (
	CoursePeriodWeekly  CoursePeriod = "weekly"  // billed every 7 days
	CoursePeriodMonthly CoursePeriod = "monthly" // billed every calendar month
	CoursePeriodYearly  CoursePeriod = "yearly"  // billed every calendar year
)

// Valid reports whether the period is one of the recognized values.
// Unknown periods are rejected outright, never defaulted.
func (p CoursePeriod) Valid() bool {
	switch p {
	case CoursePeriodWeekly, CoursePeriodMonthly, CoursePeriodYearly:
		return true
	}
	return false
}

// Course represents a recurring course with a fee schedule.
// StartDate anchors every billing cycle: cycle boundaries are always
// StartDate plus a whole number of periods, regardless of join dates.
type Course struct {
	gorm.Model
	Name      string          `gorm:"column:name;not null;size:100"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(10,2);not null"`
	Period    CoursePeriod    `gorm:"column:period;type:varchar(10);not null"`
	StartDate time.Time       `gorm:"column:start_date;type:date;not null"`
	Capacity  int             `gorm:"column:capacity;not null;default:0"`
}

// TableName returns the table name for the Course model
func (Course) TableName() string {
	return "courses"
}
